package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/service"
	"github.com/sakif/gameshelf/internal/session"
)

// PageHandler serves the browse pages: the three date-window listings, genre
// listings, cursor navigation and the single game page.
//
// DEPENDENCY CHAIN:
//   - browse *service.BrowseService → pagination state machine over the catalog
//   - render *Renderer              → template execution and error pages
type PageHandler struct {
	browse *service.BrowseService
	render *Renderer
	logger *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(browse *service.BrowseService, render *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		browse: browse,
		render: render,
		logger: logger,
	}
}

// HandleRoot sends the bare domain to the main listing.
//
// HTTP: GET /
func (h *PageHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/titles", http.StatusFound)
}

// HandleHome shows games added over the last nine months.
//
// HTTP: GET /titles
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, "Trending", h.browse.Home)
}

// HandleUpcoming shows games releasing in the next nine months.
//
// HTTP: GET /titles/upcoming
func (h *PageHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, "Upcoming", h.browse.Upcoming)
}

// HandleNewest shows games released in the last month.
//
// HTTP: GET /titles/newest
func (h *PageHandler) HandleNewest(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, "New Releases", h.browse.Newest)
}

// HandleGenre shows recently added games of one genre.
//
// HTTP: GET /genre/{slug}
func (h *PageHandler) HandleGenre(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	h.listing(w, r, "", func(ctx context.Context, st *session.State) (*service.Listing, error) {
		return h.browse.Genre(ctx, st, slug)
	})
}

// HandleNextPage follows the forward cursor held in the session.
//
// HTTP: GET /titles/next_page (also mounted under /genre)
//
// Without a stored cursor there is nothing to follow, so the browser is sent
// back to the main listing instead of an error page. Stale bookmarks and
// double-clicks land there all the time.
func (h *PageHandler) HandleNextPage(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, "", h.browse.NextPage)
}

// HandlePreviousPage follows the backward cursor held in the session.
//
// HTTP: GET /titles/previous_page (also mounted under /genre)
func (h *PageHandler) HandlePreviousPage(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, "", h.browse.PreviousPage)
}

// HandleGameDetail shows a single game's full record.
//
// HTTP: GET /titles/{id}
func (h *PageHandler) HandleGameDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.render.RenderError(w, r, apperror.ValidationFailed("id", "a valid game id is required"), sess.State.Username)
		return
	}

	game, err := h.browse.GameDetail(r.Context(), id)
	if err != nil {
		h.render.RenderError(w, r, err, sess.State.Username)
		return
	}

	h.render.Render(w, http.StatusOK, "gameinfo.html", map[string]interface{}{
		"Title":    game.Name,
		"Username": sess.State.Username,
		"Game":     game,
	})
}

// listing is the shared flow of every listing page: run the browse call,
// persist the session (cursors moved), render the grid.
func (h *PageHandler) listing(
	w http.ResponseWriter,
	r *http.Request,
	heading string,
	fetch func(context.Context, *session.State) (*service.Listing, error),
) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	result, err := fetch(r.Context(), sess.State)

	// Cursor bookkeeping happens even when the fetch fails: a consumed
	// cursor must not survive for a replay.
	h.saveSession(r.Context(), sess)

	if err != nil {
		if errors.Is(err, apperror.ErrNoPage) {
			http.Redirect(w, r, "/titles", http.StatusSeeOther)
			return
		}
		h.render.RenderError(w, r, err, sess.State.Username)
		return
	}

	if heading == "" {
		heading = headingFor(result)
	}

	h.render.Render(w, http.StatusOK, "titles.html", map[string]interface{}{
		"Title":    heading,
		"Username": sess.State.Username,
		"Listing":  result,
	})
}

// headingFor recovers a page heading from the session context after a cursor
// navigation, where the handler no longer knows which listing it is on.
func headingFor(l *service.Listing) string {
	if l.Genre != "" {
		return "Genre: " + l.Genre
	}
	switch l.DateRange.Label {
	case "upcoming":
		return "Upcoming"
	case "newest":
		return "New Releases"
	default:
		return "Trending"
	}
}

// saveSession persists session state after a page view. A write failure is
// logged but does not fail the request; the page the user asked for already
// rendered correctly.
func (h *PageHandler) saveSession(ctx context.Context, sess *session.Session) {
	if err := sess.Save(ctx); err != nil {
		h.logger.Warn("failed to persist session state",
			slog.String("error", err.Error()),
		)
	}
}
