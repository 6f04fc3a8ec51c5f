package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// WithParticipant returns ctx carrying the authenticated participant id.
func WithParticipant(ctx context.Context, participantID string) context.Context {
	return context.WithValue(ctx, contextKey{}, participantID)
}

// ParticipantFrom returns the authenticated participant id of ctx.
func ParticipantFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// BearerToken extracts the token of an "Authorization: Bearer ..." value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Middleware authenticates HTTP requests from the Authorization header or,
// for websocket upgrades, the access_token query parameter.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r.Header.Get("Authorization"))
		if !ok {
			token = r.URL.Query().Get("access_token")
		}
		if token == "" {
			http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		claims, err := a.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error": "Invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithParticipant(r.Context(), claims.ParticipantID())))
	})
}
