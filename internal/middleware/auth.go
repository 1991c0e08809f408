package middleware

import (
	"net/http"

	"github.com/raahi/backend/internal/auth"
	"github.com/raahi/backend/internal/domain"
)

// Authenticator resolves an Authorization header to the calling user.
// *auth.Resolver satisfies it.
type Authenticator interface {
	Resolve(header string) (domain.CurrentUser, error)
}

// RequireAuth rejects requests without a valid bearer token. On failure it
// sets WWW-Authenticate and hands the error to onFail, which writes the
// response body; on success the user is stored with auth.WithUser.
func RequireAuth(a Authenticator, onFail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Resolve(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				onFail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
