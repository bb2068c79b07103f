package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
)

// CookieName is the browser cookie that carries the signed session ID.
const CookieName = "session"

// Session is the per-request view of one browser session: its ID, the typed
// state loaded at the start of the request, and the store needed to write it
// back. Handlers receive it explicitly (via FromContext) and call Save after
// mutating State — no ambient globals, no hidden writes.
type Session struct {
	ID    string
	State *State

	store *Store
}

// Save persists the current state.
func (s *Session) Save(ctx context.Context) error {
	return s.store.Save(ctx, s.ID, s.State)
}

// Destroy removes the server-side state (the cookie is cleared separately by
// the handler).
func (s *Session) Destroy(ctx context.Context) error {
	s.State = &State{}
	return s.store.Delete(ctx, s.ID)
}

type contextKey struct{}

// FromContext retrieves the request's session. The second return is false
// only on routes that bypass the session middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok
}

// Middleware attaches a Session to every request.
//
// A valid cookie resolves to its existing server-side state. A missing or
// tampered cookie gets a freshly minted ID and an empty state — never an
// error page; an anonymous browser with no cookie is the normal first-visit
// case. The cookie is HttpOnly and SameSite=Lax, the usual hardening for a
// session credential.
func Middleware(store *Store, codec *Codec, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(CookieName); err == nil {
				if decoded, err := codec.Decode(cookie.Value); err == nil {
					id = decoded
				} else {
					logger.Warn("rejecting session cookie", slog.String("error", err.Error()))
				}
			}

			if id == "" {
				id = xid.New().String()
				value, err := codec.Encode(id)
				if err != nil {
					logger.Error("failed to sign session cookie", slog.String("error", err.Error()))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    value,
					Path:     "/",
					MaxAge:   int(cookieLifetime.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			state, err := store.Load(r.Context(), id)
			if err != nil {
				logger.Error("failed to load session state",
					slog.String("sessionID", id),
					slog.String("error", err.Error()),
				)
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}

			sess := &Session{ID: id, State: state, store: store}
			ctx := context.WithValue(r.Context(), contextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
