package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/roadguard/reporter-middleware/pkg/app/errors"
	apphttp "github.com/roadguard/reporter-middleware/pkg/app/http"
	"github.com/roadguard/reporter-middleware/pkg/auth"
	"github.com/roadguard/reporter-middleware/pkg/report"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers report endpoints on the given chi router. Submission
// requires an authenticated reporter session; reads are public.
func RegisterRoutes(r chi.Router, service Service, sessions *auth.Sessions, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Post("/reports", apphttp.HandleError(h.submit))
	})
	r.Get("/reports", apphttp.HandleError(h.list))
	r.Get("/reports/{id}", apphttp.HandleError(h.get))
}

func (h *HTTP) submit(w http.ResponseWriter, r *http.Request) error {
	commitment, ok := auth.CommitmentFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "reporter session required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req report.SubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	resp, err := h.service.Submit(r.Context(), commitment, &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if id == "" {
		return apperrors.BadRequestError(nil, "report id required")
	}

	rep, err := h.service.Get(r.Context(), id)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, rep)
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	var opts []reportstore.QueryOption

	if status := r.URL.Query().Get("status"); status != "" {
		switch report.Status(status) {
		case report.StatusPending, report.StatusAnchored, report.StatusFailed:
			opts = append(opts, reportstore.WithStatus(report.Status(status)))
		default:
			return apperrors.BadRequestError(nil, "unknown status filter")
		}
	}
	if commitment := r.URL.Query().Get("reporter"); commitment != "" {
		opts = append(opts, reportstore.WithReporterCommitment(commitment))
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		opts = append(opts, reportstore.WithLimit(limit))
	}

	reports, err := h.service.List(r.Context(), opts...)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, reports)
	return nil
}
