package auth

import (
	"net/http"

	"github.com/sakif/gameshelf/internal/session"
)

// RequireUser is a middleware that gates routes behind a logged-in session.
//
// The session middleware has already loaded the typed session state for this
// request; all we check here is that it carries an identity. Browser-facing
// routes redirect to the login form rather than returning a bare 401 — the
// user can do something useful with a form, not with a status code.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok || sess.State.Username == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
