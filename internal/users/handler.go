package users

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/diatonic-ai/workbench/internal/platform/httpx"
)

// Handler exposes the administrative user API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers admin user routes. Callers are expected to
// wrap the group with the admin token middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createUser)
	r.Get("/{id}", h.getUser)
	r.Put("/{id}/role", h.assignRole)
	r.Put("/{id}/overrides", h.setOverride)
	r.Delete("/{id}/overrides", h.clearOverrides)
	r.Delete("/{id}/overrides/{permission}", h.removeOverride)
	r.Post("/{id}/deactivate", h.deactivate)
}

type userResponse struct {
	ID               string             `json:"id"`
	Email            string             `json:"email"`
	Name             string             `json:"name"`
	RoleID           string             `json:"role_id"`
	SubscriptionTier string             `json:"subscription_tier,omitempty"`
	IsActive         bool               `json:"is_active"`
	Overrides        []overrideResponse `json:"overrides,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type overrideResponse struct {
	PermissionID string `json:"permission_id"`
	Kind         string `json:"kind"`
}

func toUserResponse(u User) userResponse {
	resp := userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		RoleID:           u.RoleID,
		SubscriptionTier: u.SubscriptionTier,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	for _, o := range u.Overrides {
		resp.Overrides = append(resp.Overrides, overrideResponse{PermissionID: o.PermissionID, Kind: string(o.Kind)})
	}
	return resp
}

type createUserRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required"`
	RoleID string `json:"role_id" validate:"required"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	user, err := h.service.CreateUser(r.Context(), req.Email, req.Name, req.RoleID)
	if err != nil {
		if errors.Is(err, ErrUnknownRole) {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

type assignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.service.AssignRole(r.Context(), chi.URLParam(r, "id"), req.RoleID); err != nil {
		if errors.Is(err, ErrUnknownRole) {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setOverrideRequest struct {
	PermissionID string `json:"permission_id" validate:"required"`
	Kind         string `json:"kind" validate:"required,oneof=grant revoke"`
}

func (h *Handler) setOverride(w http.ResponseWriter, r *http.Request) {
	var req setOverrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	err := h.service.SetOverride(r.Context(), chi.URLParam(r, "id"), req.PermissionID, OverrideKind(req.Kind))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeOverride(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveOverride(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "permission"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearOverrides(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearOverrides(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
