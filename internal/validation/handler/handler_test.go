package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"skgov/internal/platform/middleware"
	"skgov/internal/validation"
	"skgov/internal/validation/handler/mocks"
	pkgerrors "skgov/pkg/errors"
)

// stubValidator accepts the token "valid-token" and maps it to a fixed
// staff identity.
type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.Claims, error) {
	if token != "valid-token" {
		return nil, errors.New("bad token")
	}
	return &middleware.Claims{UserID: "staff-42", Name: "Ana Reyes", Role: "staff"}, nil
}

type HandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *mocks.MockService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.service = mocks.NewMockService(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.service, logger, nil, stubValidator{})
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer valid-token")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var expectedActor = validation.Actor{ID: "staff-42", Name: "Ana Reyes", Role: "staff"}

func (s *HandlerSuite) TestAdjudicate() {
	queueID := uuid.New()
	result := &validation.AdjudicationResult{
		QueueID:     queueID,
		ResponseID:  uuid.New(),
		Status:      validation.StatusValidated,
		ValidatedBy: "staff-42",
		ValidatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	s.service.EXPECT().
		Adjudicate(gomock.Any(), queueID, validation.ActionApprove, "checked against voter list", expectedActor, true).
		Return(result, nil)

	w := s.do(http.MethodPost, "/api/validation/queue/"+queueID.String(), map[string]any{
		"action":            "approve",
		"comments":          "checked against voter list",
		"updateContactInfo": true,
	})

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/json", w.Header().Get("Content-Type"))
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(true, resp["success"])
	data := resp["data"].(map[string]any)
	s.Equal(queueID.String(), data["queueId"])
	s.Equal("validated", data["status"])
}

func (s *HandlerSuite) TestAdjudicateInvalidQueueID() {
	w := s.do(http.MethodPost, "/api/validation/queue/not-a-uuid", map[string]any{"action": "approve"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestAdjudicateNotFound() {
	queueID := uuid.New()
	s.service.EXPECT().
		Adjudicate(gomock.Any(), queueID, validation.ActionReject, "", expectedActor, false).
		Return(nil, pkgerrors.New(pkgerrors.CodeNotFound, "queue entry not found"))

	w := s.do(http.MethodPost, "/api/validation/queue/"+queueID.String(), map[string]any{"action": "reject"})

	s.Equal(http.StatusNotFound, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(false, resp["success"])
	s.Equal("queue entry not found", resp["error"])
}

func (s *HandlerSuite) TestBulkAdjudicate() {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	s.service.EXPECT().
		BulkAdjudicate(gomock.Any(), ids, validation.ActionApprove, "", expectedActor, false).
		Return(&validation.BulkResult{Total: 2, Success: 1, Failed: 1}, nil)

	w := s.do(http.MethodPost, "/api/validation/queue/bulk", map[string]any{
		"ids":    ids,
		"action": "approve",
	})

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	s.EqualValues(2, data["total"])
	s.EqualValues(1, data["failed"])
}

func (s *HandlerSuite) TestListForwardsFiltersAndPaginates() {
	scoreMin := 40
	s.service.EXPECT().
		List(gomock.Any(), validation.ListFilters{
			Page:       2,
			Limit:      10,
			Search:     "santos",
			Status:     "pending",
			Barangay:   "Poblacion",
			VoterMatch: "matched",
			ScoreMin:   &scoreMin,
			SortBy:     "age",
			SortOrder:  "asc",
		}).
		Return([]validation.QueueItem{{FirstName: "Maria"}}, 45, nil)

	w := s.do(http.MethodGet, "/api/validation/queue?page=2&limit=10&search=santos&status=pending&barangay=Poblacion&voterMatch=matched&scoreMin=40&sortBy=age&sortOrder=asc", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	pagination := resp["pagination"].(map[string]any)
	s.EqualValues(2, pagination["currentPage"])
	s.EqualValues(5, pagination["totalPages"])
	s.EqualValues(45, pagination["totalItems"])
	s.EqualValues(10, pagination["itemsPerPage"])
}

func (s *HandlerSuite) TestListOversizeLimitEchoesEffectivePageSize() {
	s.service.EXPECT().
		List(gomock.Any(), validation.ListFilters{Page: 1, Limit: 500}).
		Return(make([]validation.QueueItem, validation.MaxPageSize), 120, nil)

	w := s.do(http.MethodGet, "/api/validation/queue?page=1&limit=500", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	pagination := resp["pagination"].(map[string]any)
	s.EqualValues(1, pagination["currentPage"])
	s.EqualValues(2, pagination["totalPages"])
	s.EqualValues(120, pagination["totalItems"])
	s.EqualValues(validation.MaxPageSize, pagination["itemsPerPage"])
}

func (s *HandlerSuite) TestStats() {
	s.service.EXPECT().Stats(gomock.Any()).Return(&validation.Stats{Total: 9, Pending: 4}, nil)

	w := s.do(http.MethodGet, "/api/validation/queue/stats", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	s.EqualValues(9, data["total"])
	s.EqualValues(4, data["pending"])
}

func (s *HandlerSuite) TestMissingToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/validation/queue", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestInvalidToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/validation/queue", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}
