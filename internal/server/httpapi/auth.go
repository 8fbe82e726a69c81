package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/auth"
)

// accessToken extracts the bearer token from the Authorization header, the
// access_token header or, when allowQuery is set, the access_token query
// parameter.
func accessToken(r *http.Request, allowQuery bool) string {
	if v := r.Header.Get("Authorization"); v != "" {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if v := r.Header.Get(common.AccessTokenHeaderName); v != "" {
		return v
	}
	if allowQuery {
		return r.URL.Query().Get(common.AccessTokenHeaderName)
	}
	return ""
}

func (h *Handler) authenticate(r *http.Request, allowQuery bool) (string, error) {
	token := accessToken(r, allowQuery)
	if token == "" {
		return "", fmt.Errorf("%w: missing access token", common.ErrorUnauthorized)
	}
	return auth.GetUserIDFromToken(token, h.jwtSecret)
}

// requireAuth rejects requests without a valid access token.
func (h *Handler) requireAuth(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := h.authenticate(r, allowQuery)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// optionalAuth identifies the caller when a token is present and valid, and
// otherwise lets the request through as anonymous.
func (h *Handler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := h.authenticate(r, false); err == nil {
			r = r.WithContext(auth.WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}
