package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/diatonic-ai/workbench/internal/platform/httpx"
	"github.com/diatonic-ai/workbench/internal/users"
)

// UserLoader fetches the user record quota checks evaluate against.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (users.User, error)
}

// Handler exposes quota operations over HTTP.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	loader   UserLoader
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver, loader UserLoader) *Handler {
	return &Handler{
		logger:   logger,
		resolver: resolver,
		loader:   loader,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers quota routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/check", h.check)
	r.Post("/increment", h.increment)
	r.Post("/reset", h.reset)
}

type checkRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Resource string `json:"resource" validate:"required"`
	Proposed int64  `json:"proposed"`
}

type checkResponse struct {
	WithinLimit bool  `json:"within_limit"`
	Ceiling     int64 `json:"ceiling"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.loader.GetUser(r.Context(), req.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, checkResponse{
		WithinLimit: h.resolver.IsWithinLimit(user, req.Resource, req.Proposed),
		Ceiling:     h.resolver.Ceiling(user, req.Resource),
	})
}

type incrementRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Resource string `json:"resource" validate:"required"`
	Amount   int64  `json:"amount" validate:"required"`
}

type incrementResponse struct {
	Usage int64 `json:"usage"`
}

func (h *Handler) increment(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.loader.GetUser(r.Context(), req.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	count, err := h.resolver.IncrementUsage(r.Context(), user, req.Resource, req.Amount)
	if err != nil {
		h.respondQuotaError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, incrementResponse{Usage: count})
}

type resetRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Resource string `json:"resource" validate:"required"`
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.loader.GetUser(r.Context(), req.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.resolver.ResetUsage(r.Context(), user, req.Resource); err != nil {
		h.logger.Error("reset usage", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return false
	}
	return true
}

func (h *Handler) respondQuotaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNegativeQuota):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Negative Quota", err.Error())
	case errors.Is(err, ErrUpdateConflict):
		httpx.Problem(w, http.StatusConflict, "Quota Update Conflict", err.Error())
	default:
		h.logger.Error("increment usage", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
