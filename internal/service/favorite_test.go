package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/model"
)

// fakeFavoriteRepo is an in-memory repository.FavoriteRepository.
type fakeFavoriteRepo struct {
	favorites map[int64]*model.Favorite
	nextID    int64
	createErr error
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{favorites: make(map[int64]*model.Favorite)}
}

func (f *fakeFavoriteRepo) CreateFavorite(_ context.Context, favorite *model.Favorite) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	favorite.ID = f.nextID
	stored := *favorite
	f.favorites[favorite.ID] = &stored
	return nil
}

func (f *fakeFavoriteRepo) GetFavoriteByID(_ context.Context, id int64) (*model.Favorite, error) {
	fav, ok := f.favorites[id]
	if !ok {
		return nil, apperror.NotFound("favorite", "?")
	}
	return fav, nil
}

func (f *fakeFavoriteRepo) ListFavoritesByUsername(_ context.Context, username string) ([]model.Favorite, error) {
	var out []model.Favorite
	for id := int64(1); id <= f.nextID; id++ {
		if fav, ok := f.favorites[id]; ok && fav.Username == username {
			out = append(out, *fav)
		}
	}
	return out, nil
}

func (f *fakeFavoriteRepo) DeleteFavorite(_ context.Context, id int64) error {
	if _, ok := f.favorites[id]; !ok {
		return apperror.NotFound("favorite", "?")
	}
	delete(f.favorites, id)
	return nil
}

func newTestFavoriteService(repo *fakeFavoriteRepo) *FavoriteService {
	return NewFavoriteService(repo, testServiceLogger())
}

// =========================================================================
// Add TESTS
// =========================================================================

func TestAddFavorite(t *testing.T) {
	repo := newFakeFavoriteRepo()
	svc := newTestFavoriteService(repo)

	fav, err := svc.Add(context.Background(), "alex", 1020, "Half-Life 3", "https://img.example.com/hl3.jpg")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if fav.ID == 0 {
		t.Error("Add() did not assign an ID")
	}
	if fav.Username != "alex" {
		t.Errorf("Username = %q, want %q", fav.Username, "alex")
	}
	if fav.GameID != 1020 {
		t.Errorf("GameID = %d, want 1020", fav.GameID)
	}
}

func TestAddFavorite_Anonymous(t *testing.T) {
	svc := newTestFavoriteService(newFakeFavoriteRepo())

	_, err := svc.Add(context.Background(), "", 1020, "Half-Life 3", "")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Add() anonymous error = %v, want ErrUnauthorized", err)
	}
}

func TestAddFavorite_Validation(t *testing.T) {
	svc := newTestFavoriteService(newFakeFavoriteRepo())

	if _, err := svc.Add(context.Background(), "alex", 0, "Half-Life 3", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Add() with game id 0 error = %v, want ErrValidation", err)
	}
	if _, err := svc.Add(context.Background(), "alex", 1020, "   ", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Add() with blank name error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// Remove TESTS
// =========================================================================

func TestRemoveFavorite_Owner(t *testing.T) {
	repo := newFakeFavoriteRepo()
	svc := newTestFavoriteService(repo)

	fav, err := svc.Add(context.Background(), "alex", 1020, "Half-Life 3", "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := svc.Remove(context.Background(), fav.ID, "alex"); err != nil {
		t.Fatalf("Remove() by owner error = %v", err)
	}
	if _, ok := repo.favorites[fav.ID]; ok {
		t.Error("favorite still present after Remove()")
	}
}

func TestRemoveFavorite_NonOwnerForbidden(t *testing.T) {
	repo := newFakeFavoriteRepo()
	svc := newTestFavoriteService(repo)

	fav, err := svc.Add(context.Background(), "alex", 1020, "Half-Life 3", "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err = svc.Remove(context.Background(), fav.ID, "bri")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Remove() by non-owner error = %v, want ErrForbidden", err)
	}

	// The record must survive the forbidden attempt.
	if _, ok := repo.favorites[fav.ID]; !ok {
		t.Error("favorite deleted despite forbidden removal")
	}
}

func TestRemoveFavorite_NotFound(t *testing.T) {
	svc := newTestFavoriteService(newFakeFavoriteRepo())

	err := svc.Remove(context.Background(), 404, "alex")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Remove() missing favorite error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// List TESTS
// =========================================================================

func TestListFavorites_OnlyOwn(t *testing.T) {
	repo := newFakeFavoriteRepo()
	svc := newTestFavoriteService(repo)

	if _, err := svc.Add(context.Background(), "alex", 10, "First", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := svc.Add(context.Background(), "bri", 20, "Theirs", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := svc.Add(context.Background(), "alex", 30, "Second", ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	favorites, err := svc.List(context.Background(), "alex")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(favorites) != 2 {
		t.Fatalf("len(favorites) = %d, want 2", len(favorites))
	}
	if favorites[0].Name != "First" || favorites[1].Name != "Second" {
		t.Errorf("favorites out of order: %q, %q", favorites[0].Name, favorites[1].Name)
	}
}

func TestListFavorites_Anonymous(t *testing.T) {
	svc := newTestFavoriteService(newFakeFavoriteRepo())

	_, err := svc.List(context.Background(), "")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("List() anonymous error = %v, want ErrUnauthorized", err)
	}
}
