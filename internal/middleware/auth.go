package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
)

// TokenFromRequest reads a game token from the Authorization header, or
// from the token query parameter for clients that cannot set headers
// (browser websockets).
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// GameAuth rejects requests whose token does not grant the game named by
// the {id} path value. It must wrap a handler registered on a pattern
// with {id}.
func GameAuth(log logrus.FieldLogger, j *config.JWT) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "missing game token", http.StatusUnauthorized)
				return
			}
			gameID, err := j.ParseGameToken(token)
			if err != nil {
				log.WithError(err).Debug("rejected game token")
				http.Error(w, "invalid game token", http.StatusUnauthorized)
				return
			}
			if gameID != r.PathValue("id") {
				http.Error(w, "token does not grant this game", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
