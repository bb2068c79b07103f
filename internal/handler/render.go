// Package handler contains the HTTP handlers for the game shelf application.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming request (form values, URL params, session state)
// 2. Call the service layer
// 3. Render an HTML template or redirect
//
// Handlers hold no business logic. Everything interesting happens in the
// service layer; handlers translate between HTTP and domain calls.
package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/gameshelf/internal/apperror"
)

// pageTemplates are the templates that define a "content" block over base.html.
// Each page is parsed together with the base so they can reference each other.
var pageTemplates = []string{
	"titles.html",
	"gameinfo.html",
	"signup.html",
	"login.html",
	"favorites.html",
	"error.html",
}

// Renderer holds the parsed template set and translates domain errors into
// HTML responses. Templates are parsed once at startup and reused.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses every page template paired with base.html.
//
// TEMPLATE COMPOSITION:
// base.html defines the page chrome with a {{template "content" .}} slot and
// each page file fills it with {{define "content"}}...{{end}}. Because every
// page defines the same "content" block, each page gets its own template set
// instead of one shared ParseGlob tree.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageTemplates))
	base := filepath.Join(templateDir, "base.html")

	for _, name := range pageTemplates {
		tmpl, err := template.ParseFiles(base, filepath.Join(templateDir, name))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes one page template over the base layout.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data map[string]interface{}) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template requested", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		// Headers are already sent at this point, so all we can do is log.
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// RenderError maps a domain error to the right HTML response.
//
// ERROR MAPPING:
//   - ErrUnauthorized     → 303 redirect to the login page
//   - ErrForbidden        → 403 error page
//   - ErrNotFound         → 404 error page
//   - ErrValidation       → 400 error page
//   - ErrUpstream/Schema  → 502 error page asking the user to retry
//   - anything else       → 500 error page with no internal detail
//
// The raw error never reaches the browser; it may carry SQL text, upstream
// URLs or file paths.
func (rn *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err error, username string) {
	if errors.Is(err, apperror.ErrUnauthorized) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	status := http.StatusInternalServerError
	message := "Something went wrong on our side."

	switch {
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		message = "You don't have permission to do that."
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		message = "We couldn't find what you were looking for."
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		message = "That request didn't look right."
	case errors.Is(err, apperror.ErrUpstream), errors.Is(err, apperror.ErrUpstreamSchema):
		status = http.StatusBadGateway
		message = "The game catalog is unavailable right now. Please try again in a moment."
	}

	if status == http.StatusInternalServerError {
		rn.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	} else {
		rn.logger.Warn("request rejected",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	rn.Render(w, status, "error.html", map[string]interface{}{
		"Title":    "Error",
		"Username": username,
		"Message":  message,
	})
}
