package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diatonic-ai/workbench/internal/platform/httpx"
)

// Handler serves read-only catalogue browsing endpoints.
type Handler struct {
	cat *Catalog
}

// NewHandler builds Handler instance.
func NewHandler(cat *Catalog) *Handler {
	return &Handler{cat: cat}
}

// MountRoutes registers catalogue routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.listRoles)
	r.Get("/permissions", h.listPermissions)
}

type roleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Grants      int    `json:"grants"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.cat.Roles()
	resp := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, roleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Category:    string(role.Category),
			Description: role.Description,
			Grants:      len(h.cat.RolePermissions(role.ID)),
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type permissionResponse struct {
	ID   string `json:"id"`
	Area string `json:"area"`
	Name string `json:"name"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.cat.Permissions()
	resp := make([]permissionResponse, 0, len(perms))
	for _, perm := range perms {
		resp = append(resp, permissionResponse{
			ID:   perm.ID,
			Area: string(perm.Area()),
			Name: DisplayName(actionOf(perm.ID)),
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}
