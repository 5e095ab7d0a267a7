package gatewayauth

import "github.com/go-chi/chi/v5"

// Routes returns the auth subrouter. It is mounted under /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/admin-login", h.AdminLogin)
	r.Post("/admin-logout", h.Logout)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/admin/me", h.AdminMe)
	})
	return r
}
