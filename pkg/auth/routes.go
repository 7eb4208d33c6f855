package auth

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the authentication endpoints on the router.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Post("/password-reset", h.PasswordReset)
		r.Post("/password-reset/confirm", h.PasswordResetConfirm)
	})
}
