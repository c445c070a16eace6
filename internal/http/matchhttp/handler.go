package matchhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"tenant_match/internal/domain"
	"tenant_match/internal/lib/logger/sl"
	"tenant_match/internal/lib/metrics"
	"tenant_match/internal/services/match"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type MatchService interface {
	FindMatchesForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.MatchResult, error)
	FindMatchesForProperty(ctx context.Context, propertyID uuid.UUID, limit int) ([]domain.MatchResult, error)
	ScorePair(ctx context.Context, tenantID, propertyID uuid.UUID) (domain.MatchResult, error)
	GetStatistics(ctx context.Context) (domain.MatchStatistics, error)
}

var errBadRequest = errors.New("bad request")

// statusClientClosedRequest — клиент закрыл соединение до ответа (nginx 499).
const statusClientClosedRequest = 499

type Handler struct {
	log     *slog.Logger
	svc     MatchService
	metrics *metrics.MatchMetrics
}

func NewHandler(log *slog.Logger, svc MatchService, matchMetrics *metrics.MatchMetrics) *Handler {
	return &Handler{log: log, svc: svc, metrics: matchMetrics}
}

type matchesResponse struct {
	Direction domain.MatchDirection `json:"direction"`
	Count     int                   `json:"count"`
	Matches   []domain.MatchResult  `json:"matches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TenantMatches — GET /api/v1/tenants/{tenantID}/matches?limit=
func (h *Handler) TenantMatches(w http.ResponseWriter, r *http.Request) {
	const op = "matchhttp.Handler.TenantMatches"

	tenantID, err := parseUUID(chi.URLParam(r, "tenantID"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	matches, err := h.svc.FindMatchesForTenant(r.Context(), tenantID, limit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, newMatchesResponse(domain.DirectionTenantToProperties, matches))
}

// PropertyMatches — GET /api/v1/properties/{propertyID}/matches?limit=
func (h *Handler) PropertyMatches(w http.ResponseWriter, r *http.Request) {
	const op = "matchhttp.Handler.PropertyMatches"

	propertyID, err := parseUUID(chi.URLParam(r, "propertyID"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	matches, err := h.svc.FindMatchesForProperty(r.Context(), propertyID, limit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, newMatchesResponse(domain.DirectionPropertyToTenants, matches))
}

// ScorePair — GET /api/v1/matches/score?tenant_id=&property_id=
func (h *Handler) ScorePair(w http.ResponseWriter, r *http.Request) {
	const op = "matchhttp.Handler.ScorePair"

	q := r.URL.Query()
	tenantID, err := parseUUID(q.Get("tenant_id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	propertyID, err := parseUUID(q.Get("property_id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	result, err := h.svc.ScorePair(r.Context(), tenantID, propertyID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Statistics — GET /api/v1/matches/statistics
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	const op = "matchhttp.Handler.Statistics"

	stats, err := h.svc.GetStatistics(r.Context())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Metrics — JSON-снимок счётчиков матчинга.
func (h *Handler) Metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.GetStats())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	log.Warn("request rejected", sl.Err(err))
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, match.ErrTenantNotFound), errors.Is(err, match.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func newMatchesResponse(direction domain.MatchDirection, matches []domain.MatchResult) matchesResponse {
	if matches == nil {
		matches = []domain.MatchResult{}
	}
	return matchesResponse{Direction: direction, Count: len(matches), Matches: matches}
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

// parseLimit: пустое значение — лимит по умолчанию (0).
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", errBadRequest, raw)
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
