// Package service exposes the identity lifecycle manager over HTTP.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/roadguard/reporter-middleware/pkg/app/errors"
	apphttp "github.com/roadguard/reporter-middleware/pkg/app/http"
	"github.com/roadguard/reporter-middleware/pkg/auth"
	"github.com/roadguard/reporter-middleware/pkg/commitment"
	"github.com/roadguard/reporter-middleware/pkg/identity"
)

// Identities is the narrow manager interface the HTTP layer needs.
type Identities interface {
	Identity() *commitment.Identity
	HasIdentity() bool
	CreateIdentity(ctx context.Context, passphrase string) (*commitment.Identity, error)
	ClearIdentity(ctx context.Context) error
}

// HTTP wraps the identity manager with HTTP endpoints
type HTTP struct {
	manager  Identities
	sessions *auth.Sessions
	logger   *zap.Logger
}

// CreateRequest is the payload for creating a reporter identity.
type CreateRequest struct {
	Passphrase string `json:"passphrase"`
}

// CreateResponse returns the new identity and a session token for report
// submission. The secret is returned once here so the caller can store it;
// it is never included in GET responses.
type CreateResponse struct {
	Identity     *commitment.Identity `json:"identity"`
	SessionToken string               `json:"session_token,omitempty"`
}

// StatusResponse describes the current identity state.
type StatusResponse struct {
	HasIdentity bool   `json:"has_identity"`
	Commitment  string `json:"commitment,omitempty"`
}

// RegisterRoutes registers identity endpoints on the given chi router
func RegisterRoutes(r chi.Router, manager Identities, sessions *auth.Sessions, logger *zap.Logger) {
	h := &HTTP{
		manager:  manager,
		sessions: sessions,
		logger:   logger,
	}

	r.Post("/identity", apphttp.HandleError(h.create))
	r.Get("/identity", apphttp.HandleError(h.status))
	r.Delete("/identity", apphttp.HandleError(h.clear))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	id, err := h.manager.CreateIdentity(r.Context(), req.Passphrase)
	if errors.Is(err, commitment.ErrEmptyPassphrase) {
		return apperrors.BadRequestError(err, "passphrase is required")
	}
	if errors.Is(err, identity.ErrStorageUnavailable) {
		// The identity is installed in memory, so the session is still usable;
		// report the degraded persistence to the caller.
		return apperrors.UnavailableError(err, "identity created but not persisted")
	}
	if err != nil {
		return apperrors.GeneralError(err)
	}

	resp := &CreateResponse{Identity: id}
	if h.sessions != nil {
		token, err := h.sessions.IssueToken(id.Commitment)
		if err != nil {
			h.logger.Warn("Failed to issue session token", zap.Error(err))
		} else {
			resp.SessionToken = token
		}
	}

	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) status(w http.ResponseWriter, _ *http.Request) error {
	resp := &StatusResponse{HasIdentity: h.manager.HasIdentity()}
	if id := h.manager.Identity(); id != nil {
		resp.Commitment = id.Commitment
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) clear(w http.ResponseWriter, r *http.Request) error {
	if err := h.manager.ClearIdentity(r.Context()); err != nil {
		if errors.Is(err, identity.ErrStorageUnavailable) {
			return apperrors.UnavailableError(err, "identity cleared but slot not deleted")
		}
		return apperrors.GeneralError(err)
	}
	apphttp.WriteJSON(w, http.StatusOK, &StatusResponse{HasIdentity: false})
	return nil
}
