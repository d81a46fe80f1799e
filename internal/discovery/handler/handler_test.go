package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"carelink/internal/discovery"
	"carelink/internal/discovery/handler/mocks"
	"carelink/internal/geo"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/discovery-mocks.go -package=mocks Service
type SearchHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	handler *Handler
}

func TestSearchHandlerSuite(t *testing.T) {
	suite.Run(t, new(SearchHandlerSuite))
}

func (s *SearchHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	s.handler = New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *SearchHandlerSuite) TestFilterIsDecoded() {
	s.service.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, f discovery.Filter) (*discovery.Page, error) {
			s.Equal("wound care", f.Text)
			s.Equal([]discovery.Kind{discovery.KindProvider}, f.Kinds)
			s.Require().NotNil(f.Radius)
			s.Equal(geo.Point{Lat: 48.1, Lng: 11.6}, f.Radius.Center)
			s.Equal(25.0, f.Radius.Km)
			s.Require().NotNil(f.MaxHourlyRate)
			s.Equal(30.0, *f.MaxHourlyRate)
			return &discovery.Page{Results: []discovery.Candidate{{ID: "x", Kind: discovery.KindProvider}}, Total: 1, Page: 1, PageSize: 20}, nil
		})

	rr := testutil.Serve(s.handler.Register, testutil.NewRawRequest(http.MethodPost, "/v1/search", `{
		"text": "wound care",
		"kinds": ["provider"],
		"max_hourly_rate": 30,
		"radius": {"center": {"lat": 48.1, "lng": 11.6}, "km": 25}
	}`))

	s.Equal(http.StatusOK, rr.Code)
	page := testutil.Decode[discovery.Page](s.T(), rr)
	s.Equal(1, page.Total)
	s.Equal("x", page.Results[0].ID)
}

func (s *SearchHandlerSuite) TestErrors() {
	s.Run("unknown field", func() {
		rr := testutil.Serve(s.handler.Register, testutil.NewRawRequest(http.MethodPost, "/v1/search", `{"query":"x"}`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid filter", func() {
		s.service.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidInput, "unknown kind robot"))
		rr := testutil.Serve(s.handler.Register, testutil.NewRawRequest(http.MethodPost, "/v1/search", `{"kinds":["robot"]}`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("store outage", func() {
		s.service.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrUnavailable)
		rr := testutil.Serve(s.handler.Register, testutil.NewRawRequest(http.MethodPost, "/v1/search", `{}`))
		testutil.AssertError(s.T(), rr, http.StatusServiceUnavailable, "unavailable")
	})
}
