package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/auth"
	"github.com/sakif/gameshelf/internal/handler"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/service"
	"github.com/sakif/gameshelf/internal/session"
)

// memUserRepo is an in-memory repository.UserRepository for handler tests.
type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return apperror.Conflict("user", user.Username)
	}
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	return user, nil
}

func (m *memUserRepo) Delete(_ context.Context, username string) error {
	if _, ok := m.users[username]; !ok {
		return apperror.NotFound("user", username)
	}
	delete(m.users, username)
	return nil
}

func newAuthRouter(t *testing.T) (*chi.Mux, *memUserRepo) {
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

	repo := newMemUserRepo()
	authService := service.NewAuthService(repo, auth.NewPasswordServiceForTest(4), logger)
	authHandler := handler.NewAuthHandler(authService, render, logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(session.Middleware(store, codec, logger))

		r.Get("/signup", authHandler.HandleSignupForm)
		r.Post("/signup", authHandler.HandleSignup)
		r.Get("/login", authHandler.HandleLoginForm)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})
	return router, repo
}

func postForm(router http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSignup_CreatesUserAndRedirectsToLogin(t *testing.T) {
	router, repo := newAuthRouter(t)

	rr := postForm(router, "/signup", url.Values{
		"username": {"alex"},
		"password": {"secret1"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	user, ok := repo.users["alex"]
	require.True(t, ok, "user was not created")
	assert.NotEqual(t, "secret1", user.PasswordHash, "password stored in the clear")
	assert.Equal(t, model.DefaultImageURL, user.ImageURL)
}

func TestSignup_DuplicateUsernameRerendersForm(t *testing.T) {
	router, _ := newAuthRouter(t)

	first := postForm(router, "/signup", url.Values{
		"username": {"alex"},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, first.Code)

	second := postForm(router, "/signup", url.Values{
		"username": {"alex"},
		"password": {"different"},
	}, nil)

	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "already taken")
}

func TestSignup_ShortUsernameRejected(t *testing.T) {
	router, repo := newAuthRouter(t)

	rr := postForm(router, "/signup", url.Values{
		"username": {"ab"},
		"password": {"secret1"},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Empty(t, repo.users)
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	router, _ := newAuthRouter(t)

	signup := postForm(router, "/signup", url.Values{
		"username": {"alex"},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, signup.Code)

	wrongPassword := postForm(router, "/login", url.Values{
		"username": {"alex"},
		"password": {"secret2"},
	}, nil)
	unknownUser := postForm(router, "/login", url.Values{
		"username": {"nobody"},
		"password": {"secret1"},
	}, nil)

	// The two failures must be indistinguishable from the browser's side.
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestLogin_SuccessAttachesIdentityAndRedirects(t *testing.T) {
	router, _ := newAuthRouter(t)

	signup := postForm(router, "/signup", url.Values{
		"username": {"alex"},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, signup.Code)

	login := postForm(router, "/login", url.Values{
		"username": {"alex"},
		"password": {"secret1"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, login.Code)
	assert.Equal(t, "/titles", login.Header().Get("Location"))
	require.NotEmpty(t, login.Result().Cookies())
}

func TestLogout_ExpiresCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	rr := postForm(router, "/logout", nil, nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie was not expired")
}
