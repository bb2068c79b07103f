package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/service"
	"github.com/sakif/gameshelf/internal/session"
)

// FavoriteHandler manages the logged-in user's favorites shelf. All of its
// routes sit behind auth.RequireUser, so a session without an identity never
// reaches these handlers; the services still check for themselves.
type FavoriteHandler struct {
	favorites *service.FavoriteService
	render    *Renderer
	logger    *slog.Logger
}

// NewFavoriteHandler creates a FavoriteHandler.
func NewFavoriteHandler(favorites *service.FavoriteService, render *Renderer, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		render:    render,
		logger:    logger,
	}
}

// HandleList shows the user's favorites.
//
// HTTP: GET /favorites
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	favorites, err := h.favorites.List(r.Context(), sess.State.Username)
	if err != nil {
		h.render.RenderError(w, r, err, sess.State.Username)
		return
	}

	h.render.Render(w, http.StatusOK, "favorites.html", map[string]interface{}{
		"Title":     "My Favorites",
		"Username":  sess.State.Username,
		"Favorites": favorites,
	})
}

// HandleAdd saves a game to the user's favorites.
//
// HTTP: POST /favorites
//
// The form carries the game's id, name and artwork URL as hidden fields from
// the page the user favorited it on, so no catalog round trip is needed.
// After saving, the browser goes back where it came from when the Referer is
// a local path, otherwise to the favorites shelf.
func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render.RenderError(w, r, apperror.ValidationFailed("form", "malformed form submission"), sess.State.Username)
		return
	}

	gameID, err := strconv.ParseInt(r.PostFormValue("game_id"), 10, 64)
	if err != nil {
		h.render.RenderError(w, r, apperror.ValidationFailed("game_id", "a valid game id is required"), sess.State.Username)
		return
	}

	name := r.PostFormValue("name")
	image := r.PostFormValue("background_image")

	if _, err := h.favorites.Add(r.Context(), sess.State.Username, gameID, name, image); err != nil {
		h.render.RenderError(w, r, err, sess.State.Username)
		return
	}

	http.Redirect(w, r, localRedirect(r, "/favorites"), http.StatusSeeOther)
}

// HandleRemove deletes one favorite off the user's shelf.
//
// HTTP: POST /favorites/{id}/delete
//
// The service checks ownership; removing someone else's favorite comes back
// forbidden no matter what ID the form posts.
func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.render.RenderError(w, r, apperror.ValidationFailed("id", "a valid favorite id is required"), sess.State.Username)
		return
	}

	if err := h.favorites.Remove(r.Context(), id, sess.State.Username); err != nil {
		h.render.RenderError(w, r, err, sess.State.Username)
		return
	}

	http.Redirect(w, r, "/favorites", http.StatusSeeOther)
}

// localRedirect returns the Referer path when it is a same-site path, else
// the fallback. Absolute URLs are rejected so the form can't bounce the
// browser off-site.
func localRedirect(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return ref
	}
	return fallback
}
