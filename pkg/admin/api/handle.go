package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/lettable/booking-admin/pkg/admin"
	"github.com/lettable/booking-admin/pkg/auth"
)

// Handle serves the admin console endpoints.
type Handle struct {
	service *admin.Service
}

// NewHandle creates the admin API handler.
func NewHandle(service *admin.Service) *Handle {
	return &Handle{service: service}
}

// UserResponse is one roster row.
type UserResponse struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	LastUpdated time.Time `json:"last_updated"`
}

// ClaimsResponse is one identity's raw claim flags.
type ClaimsResponse struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Admin   bool   `json:"admin"`
	Manager bool   `json:"manager"`
	Staff   bool   `json:"staff"`
	Tenant  bool   `json:"tenant"`
}

type errorBody struct {
	Code    admin.Code `json:"code"`
	Message string     `json:"message"`
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := admin.CodeOf(err)
	if code == admin.CodeInternal {
		slog.Error("Admin operation failed", "err", err)
	}
	render.Status(r, code.HTTPStatus())
	render.JSON(w, r, map[string]errorBody{
		"error": {Code: code, Message: admin.MessageOf(err)},
	})
}

// AssignRole sets the target user's role by email.
// (POST /api/admin/assign-role)
func (h *Handle) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		NewRole string `json:"newRole"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, admin.InvalidArgument("invalid request body"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	message, err := h.service.AssignRole(r.Context(), caller, req.Email, req.NewRole)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"message": message})
}

// DeleteAccount removes the target user and their profile record.
// (POST /api/admin/delete-account)
func (h *Handle) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, admin.InvalidArgument("invalid request body"))
		return
	}

	caller := auth.CallerFromContext(r.Context())
	message, err := h.service.DeleteAccount(r.Context(), caller, req.UID)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"message": message})
}

// Users returns the full profile roster.
// (GET /api/admin/users)
func (h *Handle) Users(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	records, err := h.service.Roster(r.Context(), caller)
	if err != nil {
		renderError(w, r, err)
		return
	}

	users := make([]UserResponse, 0, len(records))
	for _, rec := range records {
		var user UserResponse
		copier.Copy(&user, &rec)
		user.UID = rec.UserID.String()
		user.Role = rec.Role.String()
		users = append(users, user)
	}
	render.JSON(w, r, map[string][]UserResponse{"users": users})
}

// Claims returns every identity's claim flags straight from the directory,
// for comparing against the roster's profile roles.
// (GET /api/admin/claims)
func (h *Handle) Claims(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerFromContext(r.Context())
	idents, err := h.service.Claims(r.Context(), caller)
	if err != nil {
		renderError(w, r, err)
		return
	}

	claims := make([]ClaimsResponse, 0, len(idents))
	for _, ident := range idents {
		var row ClaimsResponse
		copier.Copy(&row, &ident.Claims)
		row.UID = ident.ID.String()
		row.Email = ident.Email
		claims = append(claims, row)
	}
	render.JSON(w, r, map[string][]ClaimsResponse{"claims": claims})
}

// RegisterRoutes mounts the admin endpoints on the router.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/assign-role", h.AssignRole)
		r.Post("/delete-account", h.DeleteAccount)
		r.Get("/users", h.Users)
		r.Get("/claims", h.Claims)
	})
}
