package adapthttp

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"trackit/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// userFrom returns the authenticated user attached to the request context,
// or nil for an anonymous request.
func userFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userContextKey).(*domain.User)
	return u
}

// authMiddleware validates bearer session tokens. A request without a token
// passes through anonymously; a request with an invalid token is rejected
// outright. On success the resolved user is attached to the request context,
// at most once per request.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.auth.Authenticate(r.Context(), raw)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the session token from the Authorization header,
// falling back to the cookie set by the SSO callback.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimPrefix(h, "Bearer ")
		}
		return ""
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs the method, path, status, and duration of each
// request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
