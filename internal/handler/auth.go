package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/service"
	"github.com/sakif/gameshelf/internal/session"
)

// AuthHandler manages signup, login, logout and account deletion.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignupForm / HandleSignup → render and process the signup form
//   - HandleLoginForm / HandleLogin   → render and process the login form
//   - HandleLogout                    → destroy the session and clear the cookie
//   - HandleDeleteAccount             → remove the account and its favorites
type AuthHandler struct {
	auth   *service.AuthService
	render *Renderer
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, render *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		render: render,
		logger: logger,
	}
}

// HandleSignupForm renders the empty signup form.
//
// HTTP: GET /signup
func (h *AuthHandler) HandleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderSignup(w, r, http.StatusOK, "", "")
}

// HandleSignup processes a signup submission.
//
// HTTP: POST /signup
//
// Validation failures and taken usernames re-render the form with a message
// and the username preserved, so the user corrects in place. A successful
// signup redirects to the login page rather than logging the user in; the
// login path is the only place a session identity gets attached.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderSignup(w, r, http.StatusBadRequest, "", "That submission didn't look right.")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	_, err := h.auth.Register(r.Context(), username, password, "")
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrConflict):
			h.renderSignup(w, r, http.StatusConflict, username, "That username is already taken.")
		case errors.Is(err, apperror.ErrValidation):
			h.renderSignup(w, r, http.StatusUnprocessableEntity, username, validationMessage(err))
		default:
			h.render.RenderError(w, r, err, "")
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleLoginForm renders the empty login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "", "")
}

// HandleLogin processes a login submission.
//
// HTTP: POST /login
//
// Every rejection renders the same message whether the username is unknown
// or the password is wrong, so the form can't be used to probe for accounts.
// Infrastructure failures get the error page instead; they are not the
// user's fault and must not look like a rejection.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "", "That submission didn't look right.")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			h.renderLogin(w, r, http.StatusUnauthorized, username, "Invalid username or password.")
			return
		}
		h.render.RenderError(w, r, err, "")
		return
	}

	// Fresh identity, fresh browse state. Any cursors from an anonymous
	// or previous login don't carry over.
	*sess.State = session.State{Username: user.Username}
	if err := sess.Save(r.Context()); err != nil {
		h.logger.Error("failed to persist login session", slog.String("error", err.Error()))
		h.render.RenderError(w, r, err, "")
		return
	}

	http.Redirect(w, r, "/titles", http.StatusSeeOther)
}

// HandleLogout destroys the session.
//
// HTTP: POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if ok {
		if err := sess.Destroy(r.Context()); err != nil {
			h.logger.Warn("failed to destroy session", slog.String("error", err.Error()))
		}
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleDeleteAccount removes the logged-in user's account. The favorites
// rows go with it through the schema's cascade; no application-level sweep.
//
// HTTP: POST /account/delete
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	username := sess.State.Username
	if err := h.auth.DeleteAccount(r.Context(), username); err != nil {
		h.render.RenderError(w, r, err, username)
		return
	}

	if err := sess.Destroy(r.Context()); err != nil {
		h.logger.Warn("failed to destroy session", slog.String("error", err.Error()))
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}

func (h *AuthHandler) renderSignup(w http.ResponseWriter, r *http.Request, status int, username, message string) {
	h.render.Render(w, status, "signup.html", map[string]interface{}{
		"Title":    "Sign Up",
		"Username": "",
		"Form":     map[string]string{"Username": username},
		"Message":  message,
	})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, username, message string) {
	h.render.Render(w, status, "login.html", map[string]interface{}{
		"Title":    "Log In",
		"Username": "",
		"Form":     map[string]string{"Username": username},
		"Message":  message,
	})
}

// validationMessage surfaces the field message from a validation error, if
// there is one to show.
func validationMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Please check your input and try again."
}

// clearSessionCookie expires the session cookie in the browser. The server
// side copy is already gone; this just stops the browser re-sending a dead ID.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
