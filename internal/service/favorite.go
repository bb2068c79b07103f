package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/repository"
)

// FavoriteService handles the user-owned favorites list. Every operation
// takes the acting username explicitly; an empty one means the request
// slipped past the login gate and is rejected here as well.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	logger    *slog.Logger
}

// NewFavoriteService creates a FavoriteService.
func NewFavoriteService(favorites repository.FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		logger:    logger,
	}
}

// Add saves a game to the user's favorites.
func (s *FavoriteService) Add(ctx context.Context, username string, gameID int64, name, imageURL string) (*model.Favorite, error) {
	if username == "" {
		return nil, apperror.Unauthorized("login required")
	}

	name = strings.TrimSpace(name)
	if gameID <= 0 {
		return nil, apperror.ValidationFailed("game_id", "a valid game id is required")
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "game name is required")
	}

	favorite := &model.Favorite{
		Username:        username,
		GameID:          gameID,
		Name:            name,
		BackgroundImage: strings.TrimSpace(imageURL),
	}

	if err := s.favorites.CreateFavorite(ctx, favorite); err != nil {
		s.logger.Error("failed to add favorite",
			slog.String("username", username),
			slog.Int64("gameID", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding favorite: %w", err)
	}

	s.logger.Info("favorite added",
		slog.String("username", username),
		slog.Int64("gameID", gameID),
		slog.String("name", name),
	)

	return favorite, nil
}

// Remove deletes a favorite. Only the owner may remove a record: a logged-in
// user aiming at someone else's favorite gets a forbidden error, with the
// record untouched.
func (s *FavoriteService) Remove(ctx context.Context, favoriteID int64, requestingUsername string) error {
	if requestingUsername == "" {
		return apperror.Unauthorized("login required")
	}

	favorite, err := s.favorites.GetFavoriteByID(ctx, favoriteID)
	if err != nil {
		return err
	}

	if favorite.Username != requestingUsername {
		return apperror.Forbidden("favorite belongs to another user")
	}

	if err := s.favorites.DeleteFavorite(ctx, favoriteID); err != nil {
		return err
	}

	s.logger.Info("favorite removed",
		slog.String("username", requestingUsername),
		slog.Int64("favoriteID", favoriteID),
	)
	return nil
}

// List returns the user's favorites, oldest first.
func (s *FavoriteService) List(ctx context.Context, username string) ([]model.Favorite, error) {
	if username == "" {
		return nil, apperror.Unauthorized("login required")
	}

	favorites, err := s.favorites.ListFavoritesByUsername(ctx, username)
	if err != nil {
		s.logger.Error("failed to list favorites",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing favorites: %w", err)
	}

	return favorites, nil
}
