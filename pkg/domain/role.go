package domain

import dErrors "carelink/pkg/domain-errors"

// Role identifies which kind of account owns a profile.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries; direct casting bypasses
// validation.
type Role string

const (
	RoleProvider           Role = "provider"
	RoleSeekerOrganization Role = "seeker_organization"
	RoleSeekerRelative     Role = "seeker_relative"
	RoleOperator           Role = "operator"
)

var validRoles = map[Role]bool{
	RoleProvider:           true,
	RoleSeekerOrganization: true,
	RoleSeekerRelative:     true,
	RoleOperator:           true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsSeeker reports whether the role searches for providers.
func (r Role) IsSeeker() bool {
	return r == RoleSeekerOrganization || r == RoleSeekerRelative
}

func (r Role) String() string {
	return string(r)
}
