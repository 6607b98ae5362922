package adapthttp

import (
	"net/http"

	"trackit/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth   *app.AuthService
	habits *app.HabitService
	stats  *app.StatsService

	oidcConfig OIDCConfig
	webDir     string
}

// New creates a Server wired to the given application services.
func New(as *app.AuthService, hs *app.HabitService, ss *app.StatsService, oc OIDCConfig, webDir string) *Server {
	return &Server{auth: as, habits: hs, stats: ss, oidcConfig: oc, webDir: webDir}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("GET /config", s.handleConfig)

	api.HandleFunc("POST /auth/register", s.handleRegister)
	api.HandleFunc("POST /auth/login", s.handleLogin)
	api.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)

	api.HandleFunc("GET /habits", s.handleListHabits)
	api.HandleFunc("POST /habits", s.handleCreateHabit)
	api.HandleFunc("PATCH /habits/{id}", s.handleUpdateHabit)
	api.HandleFunc("DELETE /habits/{id}", s.handleDeleteHabit)
	api.HandleFunc("PATCH /habits/{id}/toggle", s.handleToggleHabit)

	api.HandleFunc("GET /stats", s.handleStats)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.authMiddleware(api)))
	root.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(s.loggingMiddleware(root))
}
