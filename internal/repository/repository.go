package repository

import (
	"context"

	"github.com/sakif/gameshelf/internal/model"
)

// UserRepository persists user accounts. Create returns a conflict error when
// the username is already taken; lookups return a not-found error for absent
// rows. Deleting a user removes their favorites as well.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Delete(ctx context.Context, username string) error
}

// FavoriteRepository persists user-owned favorite records.
type FavoriteRepository interface {
	CreateFavorite(ctx context.Context, favorite *model.Favorite) error
	GetFavoriteByID(ctx context.Context, id int64) (*model.Favorite, error)
	ListFavoritesByUsername(ctx context.Context, username string) ([]model.Favorite, error)
	DeleteFavorite(ctx context.Context, id int64) error
}
