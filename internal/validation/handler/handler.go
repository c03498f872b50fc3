package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"skgov/internal/platform/metrics"
	"skgov/internal/platform/middleware"
	"skgov/internal/validation"
	pkgerrors "skgov/pkg/errors"
	"skgov/pkg/platform/httputil"
)

// Service is the validation operations surface the handler depends on.
//
//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks
type Service interface {
	Adjudicate(ctx context.Context, queueID uuid.UUID, action validation.Action, comments string, actor validation.Actor, updateContactInfo bool) (*validation.AdjudicationResult, error)
	BulkAdjudicate(ctx context.Context, queueIDs []uuid.UUID, action validation.Action, comments string, actor validation.Actor, updateContactInfo bool) (*validation.BulkResult, error)
	List(ctx context.Context, f validation.ListFilters) ([]validation.QueueItem, int, error)
	Stats(ctx context.Context) (*validation.Stats, error)
}

// Handler serves the validation queue endpoints.
type Handler struct {
	service   Service
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the validation routes. Every route requires a validator
// role; listing is additionally open to admins only through the same gate.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAuth(h.validator, h.logger))
	router.Use(middleware.RequireRole("admin", "staff", "sk_official"))

	router.Get("/api/validation/queue", h.handleList)
	router.Get("/api/validation/queue/stats", h.handleStats)
	router.Post("/api/validation/queue/bulk", h.handleBulkAdjudicate)
	router.Post("/api/validation/queue/{queueID}", h.handleAdjudicate)

	r.Mount("/", router)
}

type adjudicateRequest struct {
	Action            string `json:"action"`
	Comments          string `json:"comments"`
	UpdateContactInfo bool   `json:"updateContactInfo"`
}

func (h *Handler) handleAdjudicate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	queueID, err := uuid.Parse(chi.URLParam(r, "queueID"))
	if err != nil {
		httputil.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid queue id"))
		return
	}

	var req adjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	result, err := h.service.Adjudicate(ctx, queueID, validation.Action(req.Action), req.Comments, actor, req.UpdateContactInfo)
	if err != nil {
		h.logFailure(ctx, "adjudication failed", err, "queue_id", queueID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "response "+string(result.Status), result)
}

type bulkRequest struct {
	QueueIDs          []uuid.UUID `json:"ids"`
	Action            string      `json:"action"`
	Comments          string      `json:"comments"`
	UpdateContactInfo bool        `json:"updateContactInfo"`
}

func (h *Handler) handleBulkAdjudicate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	result, err := h.service.BulkAdjudicate(ctx, req.QueueIDs, validation.Action(req.Action), req.Comments, actor, req.UpdateContactInfo)
	if err != nil {
		h.logFailure(ctx, "bulk adjudication failed", err, "count", len(req.QueueIDs))
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := parseListFilters(r)

	items, total, err := h.service.List(ctx, f)
	if err != nil {
		h.logFailure(ctx, "queue listing failed", err)
		httputil.WriteError(w, err)
		return
	}

	page, limit := f.Normalize()
	httputil.WritePage(w, items, httputil.NewPagination(page, limit, total))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logFailure(ctx, "queue stats failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// actor builds the adjudicating actor from the authenticated claims.
func (h *Handler) actor(ctx context.Context, w http.ResponseWriter) (validation.Actor, bool) {
	claims := middleware.GetClaims(ctx)
	if claims == nil || claims.UserID == "" {
		h.logger.ErrorContext(ctx, "claims missing despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, pkgerrors.New(pkgerrors.CodeInternal, "authentication context error"))
		return validation.Actor{}, false
	}
	return validation.Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role}, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	if pkgerrors.Is(err, pkgerrors.CodeBadRequest) || pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		h.logger.WarnContext(ctx, msg, append(args, "request_id", middleware.GetRequestID(ctx), "error", err.Error())...)
		return
	}
	h.logger.ErrorContext(ctx, msg, append(args, "request_id", middleware.GetRequestID(ctx), "error", err.Error())...)
}

func parseListFilters(r *http.Request) validation.ListFilters {
	q := r.URL.Query()
	f := validation.ListFilters{
		Search:     q.Get("search"),
		Status:     q.Get("status"),
		Barangay:   q.Get("barangay"),
		VoterMatch: q.Get("voterMatch"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = limit
	}
	if n, err := strconv.Atoi(q.Get("scoreMin")); err == nil {
		f.ScoreMin = &n
	}
	if n, err := strconv.Atoi(q.Get("scoreMax")); err == nil {
		f.ScoreMax = &n
	}
	return f
}
