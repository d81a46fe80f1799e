package jwttoken

import (
	authmw "carelink/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.ActorClaims {
	return &authmw.ActorClaims{
		ActorID: claims.ActorID,
		Role:    claims.Role,
		JTI:     claims.ID,
	}
}

// JWTServiceAdapter satisfies authmw.ActorValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.ActorClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
