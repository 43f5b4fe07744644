package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/diatonic-ai/workbench/internal/platform/httpx"
	"github.com/diatonic-ai/workbench/internal/users"
)

// UserLoader fetches the user record the resolver evaluates against.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (users.User, error)
}

// Handler exposes entitlement checks over HTTP.
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

// MountRoutes registers entitlement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/check", h.check)
	r.Post("/check-batch", h.checkBatch)
	r.Get("/effective", h.effective)
}

type checkRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Permission string `json:"permission" validate:"required"`
}

type checkResponse struct {
	Granted bool `json:"granted"`
}

// A missing permission is a normal negative decision, not an error:
// the response is 200 with granted=false.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	user, err := h.loader.GetUser(r.Context(), req.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, checkResponse{Granted: h.resolver.HasPermission(user, req.Permission)})
}

type checkBatchRequest struct {
	UserID      string   `json:"user_id" validate:"required"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
}

type checkBatchResponse struct {
	Results map[string]bool `json:"results"`
}

func (h *Handler) checkBatch(w http.ResponseWriter, r *http.Request) {
	var req checkBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	user, err := h.loader.GetUser(r.Context(), req.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, checkBatchResponse{Results: h.resolver.CheckPermissions(user, req.Permissions)})
}

type effectiveResponse struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) effective(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: user_id query parameter required", httpx.ErrValidation))
		return
	}
	user, err := h.loader.GetUser(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	effective := h.resolver.EffectivePermissions(user)
	perms := make([]string, 0, len(effective))
	for perm := range effective {
		perms = append(perms, perm)
	}
	sort.Strings(perms)
	httpx.JSON(w, http.StatusOK, effectiveResponse{UserID: user.ID, Permissions: perms})
}
