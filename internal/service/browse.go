package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/catalog"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/session"
)

// Listing date windows, relative to "today". The home listing looks back
// over recently added games, upcoming looks forward, newest keeps a tight
// one-month window so the page is not flooded by the weekly indie churn.
const (
	homeMonthsBack      = 9
	upcomingMonthsAhead = 9
	newestMonthsBack    = 1
)

// CatalogClient is the slice of the catalog client the browse service
// needs. Declared here (consumer side) so tests can substitute a fake.
type CatalogClient interface {
	FetchPage(ctx context.Context, q catalog.Query) (*catalog.Page, error)
	FetchCursor(ctx context.Context, cursorURL string) (*catalog.Page, error)
	FetchGame(ctx context.Context, id int64) (*model.GameDetail, error)
}

// Listing is a rendered-ready page of games plus its navigation context.
type Listing struct {
	Games     []model.GameSummary
	HasNext   bool
	HasPrev   bool
	DateRange session.DateRange
	Genre     string
}

// BrowseService drives the pagination state machine over the catalog API.
//
// A browse context is either fresh (no cursor; the query is built from a
// date window) or paging (a cursor from the previous response sits in the
// session). Entering any top-level listing resets to fresh; next/previous
// consume a session cursor and every response replaces both cursors with
// the ones the upstream just returned.
type BrowseService struct {
	catalog CatalogClient
	logger  *slog.Logger
	now     func() time.Time // injectable clock
}

// NewBrowseService creates a BrowseService.
func NewBrowseService(cat CatalogClient, logger *slog.Logger) *BrowseService {
	return &BrowseService{
		catalog: cat,
		logger:  logger,
		now:     time.Now,
	}
}

// Home shows games added over the last nine months.
func (s *BrowseService) Home(ctx context.Context, st *session.State) (*Listing, error) {
	today := s.today()
	return s.freshListing(ctx, st, session.DateRange{
		Label: "home",
		From:  today.AddDate(0, -homeMonthsBack, 0).Format("2006-01-02"),
		To:    today.Format("2006-01-02"),
	}, "")
}

// Upcoming shows games releasing in the next nine months.
func (s *BrowseService) Upcoming(ctx context.Context, st *session.State) (*Listing, error) {
	today := s.today()
	return s.freshListing(ctx, st, session.DateRange{
		Label: "upcoming",
		From:  today.Format("2006-01-02"),
		To:    today.AddDate(0, upcomingMonthsAhead, 0).Format("2006-01-02"),
	}, "")
}

// Newest shows games from the last month.
func (s *BrowseService) Newest(ctx context.Context, st *session.State) (*Listing, error) {
	today := s.today()
	return s.freshListing(ctx, st, session.DateRange{
		Label: "newest",
		From:  today.AddDate(0, -newestMonthsBack, 0).Format("2006-01-02"),
		To:    today.Format("2006-01-02"),
	}, "")
}

// Genre shows recently added games of one genre. The chosen slug rides in
// the session alongside the cursors so genre next/previous pages keep their
// heading.
func (s *BrowseService) Genre(ctx context.Context, st *session.State, slug string) (*Listing, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, apperror.ValidationFailed("genre", "genre is required")
	}

	today := s.today()
	return s.freshListing(ctx, st, session.DateRange{
		Label: "genre",
		From:  today.AddDate(0, -homeMonthsBack, 0).Format("2006-01-02"),
		To:    today.Format("2006-01-02"),
	}, slug)
}

// NextPage follows the stored forward cursor.
func (s *BrowseService) NextPage(ctx context.Context, st *session.State) (*Listing, error) {
	return s.follow(ctx, st, "next")
}

// PreviousPage follows the stored backward cursor.
func (s *BrowseService) PreviousPage(ctx context.Context, st *session.State) (*Listing, error) {
	return s.follow(ctx, st, "previous")
}

// GameDetail fetches the detail record for one game.
func (s *BrowseService) GameDetail(ctx context.Context, id int64) (*model.GameDetail, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "a valid game id is required")
	}
	return s.catalog.FetchGame(ctx, id)
}

// freshListing is the Fresh entry of the state machine: drop any stale
// browse state (identity survives), query by date window, then store the
// new cursors and context.
func (s *BrowseService) freshListing(ctx context.Context, st *session.State, dr session.DateRange, genre string) (*Listing, error) {
	st.ClearExceptIdentity()

	from, err := time.Parse("2006-01-02", dr.From)
	if err != nil {
		return nil, fmt.Errorf("parsing range start: %w", err)
	}
	to, err := time.Parse("2006-01-02", dr.To)
	if err != nil {
		return nil, fmt.Errorf("parsing range end: %w", err)
	}

	page, err := s.catalog.FetchPage(ctx, catalog.Query{
		DateFrom: from,
		DateTo:   to,
		Genre:    genre,
	})
	if err != nil {
		return nil, err
	}

	st.DateRange = dr
	st.Genre = genre
	s.storeCursors(st, page)

	return s.listing(st, page), nil
}

// follow is the Paging transition: consume one cursor, replace both.
//
// The cursor is removed from the session before the upstream call. If the
// call fails the session holds no cursor for that direction, so a retry of
// the navigation is a clean no-op instead of a replay of a spent URL.
func (s *BrowseService) follow(ctx context.Context, st *session.State, direction string) (*Listing, error) {
	var cursor string
	switch direction {
	case "next":
		cursor, st.NextCursor = st.NextCursor, ""
	case "previous":
		cursor, st.PrevCursor = st.PrevCursor, ""
	}

	if cursor == "" {
		return nil, apperror.NoPage(direction)
	}

	page, err := s.catalog.FetchCursor(ctx, cursor)
	if err != nil {
		return nil, err
	}

	s.storeCursors(st, page)

	return s.listing(st, page), nil
}

// storeCursors makes the just-fetched page the session's reference point.
// Absent upstream cursors clear the corresponding direction, so dead
// navigation links never render.
func (s *BrowseService) storeCursors(st *session.State, page *catalog.Page) {
	st.NextCursor = page.Next
	st.PrevCursor = page.Previous
}

func (s *BrowseService) listing(st *session.State, page *catalog.Page) *Listing {
	return &Listing{
		Games:     page.Results,
		HasNext:   st.NextCursor != "",
		HasPrev:   st.PrevCursor != "",
		DateRange: st.DateRange,
		Genre:     st.Genre,
	}
}

func (s *BrowseService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
