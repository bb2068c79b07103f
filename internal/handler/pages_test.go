package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/auth"
	"github.com/sakif/gameshelf/internal/catalog"
	"github.com/sakif/gameshelf/internal/handler"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/service"
	"github.com/sakif/gameshelf/internal/session"
)

// stubCatalog serves a fixed page for any catalog call.
type stubCatalog struct {
	page *catalog.Page
	err  error
}

func (s *stubCatalog) FetchPage(context.Context, catalog.Query) (*catalog.Page, error) {
	return s.page, s.err
}

func (s *stubCatalog) FetchCursor(context.Context, string) (*catalog.Page, error) {
	return s.page, s.err
}

func (s *stubCatalog) FetchGame(context.Context, int64) (*model.GameDetail, error) {
	return nil, s.err
}

// writeTestTemplates lays down a minimal template set so the renderer can
// parse; the pages just echo enough for assertions.
func writeTestTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"base.html":      `{{define "base"}}<html><body>{{template "content" .}}</body></html>{{end}}`,
		"titles.html":    `{{define "content"}}<h1>{{.Title}}</h1>{{range .Listing.Games}}<p>{{.Name}}</p>{{end}}{{end}}`,
		"gameinfo.html":  `{{define "content"}}<h1>{{.Game.Name}}</h1>{{end}}`,
		"signup.html":    `{{define "content"}}<p>{{.Message}}</p>{{end}}`,
		"login.html":     `{{define "content"}}<p>{{.Message}}</p>{{end}}`,
		"favorites.html": `{{define "content"}}{{range .Favorites}}<p>{{.Name}}</p>{{end}}{{end}}`,
		"error.html":     `{{define "content"}}<p>{{.Message}}</p>{{end}}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("writing template %s: %v", name, err)
		}
	}
	return dir
}

// newTestRouter wires a browse-only router over a stub catalog and a
// miniredis-backed session store, mirroring the production route setup.
func newTestRouter(t *testing.T, cat service.CatalogClient) *chi.Mux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := session.NewStore(rdb)
	codec, err := session.NewCodec("test-secret-at-least-16-bytes")
	require.NoError(t, err)

	render, err := handler.NewRenderer(writeTestTemplates(t), logger)
	require.NoError(t, err)

	browse := service.NewBrowseService(cat, logger)
	pages := handler.NewPageHandler(browse, render, logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(session.Middleware(store, codec, logger))

		r.Get("/titles", pages.HandleHome)
		r.Get("/titles/next_page", pages.HandleNextPage)
		r.Get("/titles/previous_page", pages.HandlePreviousPage)

		r.Group(func(pr chi.Router) {
			pr.Use(auth.RequireUser)
			pr.Get("/favorites", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return router
}

func catalogUnavailable() error {
	return apperror.Upstream("fetch page", errors.New("connection refused"))
}

func TestHandleHome_RendersListing(t *testing.T) {
	cat := &stubCatalog{page: &catalog.Page{
		Results: []model.GameSummary{
			{ID: 1020, Name: "Half-Life 3"},
			{ID: 3498, Name: "Grand Theft Auto V"},
		},
		Next: "https://api.example.com/games?page=2",
	}}
	router := newTestRouter(t, cat)

	req := httptest.NewRequest(http.MethodGet, "/titles", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Half-Life 3")
	assert.Contains(t, rr.Body.String(), "Grand Theft Auto V")

	// A first visit mints a session cookie.
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandleNextPage_NoCursorRedirectsHome(t *testing.T) {
	router := newTestRouter(t, &stubCatalog{page: &catalog.Page{}})

	// A fresh session holds no cursor, so navigation falls back to the
	// main listing instead of erroring.
	req := httptest.NewRequest(http.MethodGet, "/titles/next_page", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/titles", rr.Header().Get("Location"))
}

func TestHandleNextPage_FollowsStoredCursor(t *testing.T) {
	cat := &stubCatalog{page: &catalog.Page{
		Results:  []model.GameSummary{{ID: 7, Name: "Page Two Game"}},
		Previous: "https://api.example.com/games?page=1",
	}}
	router := newTestRouter(t, cat)

	// First visit /titles to store cursors in the session.
	cat.page.Next = "https://api.example.com/games?page=2"
	first := httptest.NewRequest(http.MethodGet, "/titles", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, first)
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Then follow the cursor with the same session cookie.
	second := httptest.NewRequest(http.MethodGet, "/titles/next_page", nil)
	second.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, second)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page Two Game")
}

func TestHandleHome_UpstreamDownRendersBadGateway(t *testing.T) {
	router := newTestRouter(t, &stubCatalog{err: catalogUnavailable()})

	req := httptest.NewRequest(http.MethodGet, "/titles", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "try again")
}

func TestRequireUser_AnonymousRedirectsToLogin(t *testing.T) {
	router := newTestRouter(t, &stubCatalog{page: &catalog.Page{}})

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}
