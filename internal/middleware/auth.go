package middleware

import (
	"context"
	"net/http"
	"strings"

	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/services"
)

type contextKey string

const actorKey contextKey = "actor"

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved actor in the request context.
func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, authService)
			if err != nil {
				respondError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			if actor == nil {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

// OptionalAuth resolves a bearer token when present and passes anonymous
// requests through. Public reads use this so access rules can still see who
// is asking.
func OptionalAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, authService)
			if err != nil {
				respondError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

func actorFromRequest(r *http.Request, authService *services.AuthService) (*entity.Actor, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errInvalidHeader
	}
	actor, err := authService.ValidateJWT(parts[1])
	if err != nil {
		return nil, errInvalidToken
	}
	return actor, nil
}

var (
	errInvalidHeader = headerError("invalid authorization header format")
	errInvalidToken  = headerError("invalid token")
)

type headerError string

func (e headerError) Error() string { return string(e) }

func withActor(ctx context.Context, actor *entity.Actor) context.Context {
	if actor == nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor extracts the acting user from context; nil means unauthenticated
func GetActor(ctx context.Context) *entity.Actor {
	actor, ok := ctx.Value(actorKey).(*entity.Actor)
	if !ok {
		return nil
	}
	return actor
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// ValidateWebSocketToken validates a token from a WebSocket query parameter
func ValidateWebSocketToken(token string, authService *services.AuthService) (*entity.Actor, error) {
	if token == "" {
		return nil, errInvalidToken
	}
	return authService.ValidateJWT(token)
}
