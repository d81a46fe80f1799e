package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"carelink/internal/profile/handler/mocks"
	"carelink/internal/profile/models"
	"carelink/internal/score"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/profile-mocks.go -package=mocks Service
type ProfileHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	handler *Handler
	actor   id.ProfileID
}

func TestProfileHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProfileHandlerSuite))
}

func (s *ProfileHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	s.handler = New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.actor = id.NewProfileID()
}

func (s *ProfileHandlerSuite) serve(req *http.Request) map[string]any {
	rr := testutil.Serve(s.handler.Register, testutil.WithActor(req, s.actor))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	return testutil.Decode[map[string]any](s.T(), rr)
}

func (s *ProfileHandlerSuite) provider() *models.Profile {
	p, err := models.NewProfile(s.actor, id.RoleProvider, "Anna Berg", "Munich", nil,
		&models.ProviderAttributes{ExperienceYears: 4, CareScore: 32},
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	p.Email = "anna@example.com"
	return p
}

func (s *ProfileHandlerSuite) TestGet() {
	s.Run("hidden fields are masked", func() {
		p := s.provider()
		p.Visibility = models.Visibility{ShowName: false, ShowEmail: false}
		s.service.EXPECT().Get(gomock.Any(), s.actor).Return(p, nil)

		body := s.serve(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/profiles/"+s.actor.String(), nil))

		s.Equal(models.AnonymousName, body["display_name"])
		s.NotContains(body, "email")
		s.Equal("provider", body["role"])
		attrs, ok := body["attributes"].(map[string]any)
		s.Require().True(ok)
		s.InDelta(32, attrs["care_score"], 0)
	})

	s.Run("unknown profile", func() {
		s.service.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "profile not found"))
		rr := testutil.Serve(s.handler.Register,
			testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/profiles/"+id.NewProfileID().String(), nil))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id", func() {
		rr := testutil.Serve(s.handler.Register,
			testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/profiles/not-a-uuid", nil))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *ProfileHandlerSuite) TestScore() {
	result := score.ComputeScore(models.ProviderAttributes{ExperienceYears: 4}, score.ProfileBasics{DisplayName: "Anna"})
	s.service.EXPECT().ScoreBreakdown(gomock.Any(), s.actor).Return(result, nil)

	body := s.serve(testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/providers/"+s.actor.String()+"/score", nil))

	s.InDelta(float64(result.Total), body["total"], 0)
	breakdown, ok := body["breakdown"].([]any)
	s.Require().True(ok)
	s.Len(breakdown, len(result.Breakdown))
}

func (s *ProfileHandlerSuite) TestUpdateAttributes() {
	s.Run("decoded payload reaches the service and the score is returned", func() {
		p := s.provider()
		result := score.Result{Total: 47}
		s.service.EXPECT().
			UpdateProviderAttributes(gomock.Any(), s.actor, s.actor, gomock.Any()).
			DoAndReturn(func(_ any, _, _ id.ProfileID, attrs models.ProviderAttributes) (*models.Profile, score.Result, error) {
				s.Equal(6, attrs.ExperienceYears)
				s.Equal(models.LanguageLevelB2, attrs.LanguageLevel)
				s.Equal(99, attrs.CareScore)
				return p, result, nil
			})

		body := s.serve(testutil.NewRawRequest(http.MethodPut, "/v1/providers/"+s.actor.String()+"/attributes",
			`{"experience_years": 6, "language_level": "B2", "care_score": 99}`))

		scoreBody, ok := body["score"].(map[string]any)
		s.Require().True(ok)
		s.InDelta(47, scoreBody["total"], 0)
	})

	s.Run("someone else's profile", func() {
		other := id.NewProfileID()
		s.service.EXPECT().
			UpdateProviderAttributes(gomock.Any(), s.actor, other, gomock.Any()).
			Return(nil, score.Result{}, dErrors.New(dErrors.CodeForbidden, "only the owner can edit this profile"))

		req := testutil.NewRawRequest(http.MethodPut, "/v1/providers/"+other.String()+"/attributes", `{}`)
		rr := testutil.Serve(s.handler.Register, testutil.WithActor(req, s.actor))
		testutil.AssertError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("unknown field", func() {
		req := testutil.NewRawRequest(http.MethodPut, "/v1/providers/"+s.actor.String()+"/attributes", `{"score": 100}`)
		rr := testutil.Serve(s.handler.Register, testutil.WithActor(req, s.actor))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *ProfileHandlerSuite) TestUpdateTier() {
	org := id.NewProfileID()

	s.Run("tier change returns 204", func() {
		s.service.EXPECT().UpdateSubscriptionTier(gomock.Any(), s.actor, org, models.TierPremium).Return(nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/organizations/"+org.String()+"/tier",
			map[string]string{"tier": "premium"})
		rr := testutil.Serve(s.handler.Register, testutil.WithActor(req, s.actor))
		s.Equal(http.StatusNoContent, rr.Code)
	})

	s.Run("unknown tier is rejected before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/organizations/"+org.String()+"/tier",
			map[string]string{"tier": "gold"})
		rr := testutil.Serve(s.handler.Register, testutil.WithActor(req, s.actor))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("non-operator", func() {
		s.service.EXPECT().UpdateSubscriptionTier(gomock.Any(), s.actor, org, models.TierStandard).
			Return(dErrors.New(dErrors.CodeForbidden, "only operators can change plans"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/organizations/"+org.String()+"/tier",
			map[string]string{"tier": "standard"})
		rr := testutil.Serve(s.handler.Register, testutil.WithActor(req, s.actor))
		testutil.AssertError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}
