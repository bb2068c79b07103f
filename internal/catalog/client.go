// Package catalog is the HTTP client for the external paginated game
// catalog API (RAWG-style).
//
// Every listing response carries the same envelope:
//
//	{"results": [...], "next": <url|null>, "previous": <url|null>}
//
// The next/previous values are opaque cursor URLs — follow-up pages are
// fetched by requesting them verbatim (plus the API key). The client never
// interprets them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/model"
)

const (
	// requestTimeout bounds every upstream call so a hung catalog API
	// cannot pin a request worker indefinitely.
	requestTimeout = 5 * time.Second

	// One retry after a short pause on transport errors and 5xx. The
	// upstream serves read-only listings, so a repeated GET is harmless.
	retryDelay = 300 * time.Millisecond

	// maxBodySize caps how much of a response we are willing to read. A
	// listing page is a few hundred KB at most.
	maxBodySize = 4 << 20
)

// Page is one page of catalog results plus the cursors around it. An empty
// cursor means that direction has no page.
type Page struct {
	Results  []model.GameSummary
	Next     string
	Previous string
}

// Query describes a date-windowed listing request.
type Query struct {
	DateFrom time.Time
	DateTo   time.Time
	Ordering string // defaults to "-added"
	PageSize int    // defaults to 40
	Genre    string // optional genre slug filter
}

// Client calls the catalog API. The API key is injected at construction and
// attached to every outbound request; it is never logged.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// New creates a Client for the API rooted at baseURL (e.g.
// "https://api.rawg.io/api").
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// envelope mirrors the upstream listing body. Pointer fields distinguish
// "absent" from "null"/zero so a schema mismatch is detectable.
type envelope struct {
	Results  *[]model.GameSummary `json:"results"`
	Next     *string              `json:"next"`
	Previous *string              `json:"previous"`
}

// FetchPage requests a date-windowed listing page.
func (c *Client) FetchPage(ctx context.Context, q Query) (*Page, error) {
	ordering := q.Ordering
	if ordering == "" {
		ordering = "-added"
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 40
	}

	params := url.Values{}
	params.Set("dates", q.DateFrom.Format("2006-01-02")+","+q.DateTo.Format("2006-01-02"))
	params.Set("ordering", ordering)
	params.Set("page_size", strconv.Itoa(pageSize))
	if q.Genre != "" {
		params.Set("genres", q.Genre)
	}

	return c.fetchListing(ctx, "listing", c.baseURL+"/games?"+params.Encode())
}

// FetchCursor follows a next/previous cursor URL returned by a prior page.
func (c *Client) FetchCursor(ctx context.Context, cursorURL string) (*Page, error) {
	if cursorURL == "" {
		return nil, fmt.Errorf("catalog: empty cursor URL")
	}
	return c.fetchListing(ctx, "cursor follow", cursorURL)
}

// FetchGame requests the detail record for a single game.
func (c *Client) FetchGame(ctx context.Context, id int64) (*model.GameDetail, error) {
	body, err := c.get(ctx, "game detail", fmt.Sprintf("%s/games/%d", c.baseURL, id))
	if err != nil {
		return nil, err
	}

	var detail model.GameDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, apperror.UpstreamSchema("game detail")
	}
	if detail.ID == 0 || detail.Name == "" {
		return nil, apperror.UpstreamSchema("game detail")
	}

	return &detail, nil
}

func (c *Client) fetchListing(ctx context.Context, op, rawURL string) (*Page, error) {
	body, err := c.get(ctx, op, rawURL)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperror.UpstreamSchema(op)
	}
	if env.Results == nil {
		// The one field every listing must carry. next/previous may
		// legitimately be null on first/last pages.
		return nil, apperror.UpstreamSchema(op)
	}

	page := &Page{Results: *env.Results}
	if env.Next != nil {
		page.Next = *env.Next
	}
	if env.Previous != nil {
		page.Previous = *env.Previous
	}

	return page, nil
}

// get performs a GET with the API key attached, retrying once on transport
// errors and 5xx responses. Any other non-2xx status is an upstream failure.
func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parsing URL for %s: %w", op, err)
	}
	params := u.Query()
	params.Set("key", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: building request for %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	body, retryable, err := c.tryOnce(req)
	if err != nil && retryable {
		c.logger.Warn("retrying catalog request",
			slog.String("op", op),
			slog.String("url", redact(u)),
			slog.String("error", err.Error()),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, apperror.Upstream(op, ctx.Err())
		}

		body, _, err = c.tryOnce(req.Clone(ctx))
	}
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	return body, nil
}

// tryOnce executes one attempt. The middle return reports whether a failure
// is worth retrying.
func (c *Client) tryOnce(req *http.Request) ([]byte, bool, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, true, fmt.Errorf("reading body: %w", err)
	}

	return body, false, nil
}

// redact strips the API key from a URL before it reaches a log line.
func redact(u *url.URL) string {
	clean := *u
	params := clean.Query()
	if params.Has("key") {
		params.Set("key", "REDACTED")
	}
	clean.RawQuery = params.Encode()
	return clean.String()
}
