package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/thehopecrystal/verify-properties/internal/access"
	"github.com/thehopecrystal/verify-properties/internal/identity"
	"github.com/thehopecrystal/verify-properties/internal/models"
)

type contextKey int

const (
	actorKey contextKey = iota
	sessionKey
)

// AuthorizationMiddleware resolves the bearer token to its persisted session
// and hands the session's account to next through the request context.
func AuthorizationMiddleware(next http.Handler, onlyAdmin bool, ids *identity.Store, tokens *Tokens) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
			return
		}

		actor, ok := ids.CurrentSession(r.Context(), claims.ID)
		if !ok || actor.Id != claims.UserId {
			http.Error(w, "Session expired", http.StatusUnauthorized)
			return
		}

		if onlyAdmin && !access.CanMutateStatus(actor) {
			http.Error(w, "You are not an administrator", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, &actor)
		ctx = context.WithValue(ctx, sessionKey, claims.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ActorFromContext(ctx context.Context) *models.Account {
	actor, _ := ctx.Value(actorKey).(*models.Account)
	return actor
}

func SessionIdFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
