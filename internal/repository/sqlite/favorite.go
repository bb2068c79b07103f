package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/repository"
)

// compile-time check that *DB implements repository.FavoriteRepository
var _ repository.FavoriteRepository = (*DB)(nil)

// CreateFavorite inserts a favorite row and fills in the generated ID.
func (db *DB) CreateFavorite(ctx context.Context, favorite *model.Favorite) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO favorites (username, game_id, name, background_image)
		 VALUES (?, ?, ?, ?)`,
		favorite.Username,
		favorite.GameID,
		favorite.Name,
		favorite.BackgroundImage,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting favorite for %s: %w", favorite.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading favorite id: %w", err)
	}
	favorite.ID = id

	return nil
}

// GetFavoriteByID retrieves a single favorite.
// Returns apperror.ErrNotFound if no row has that ID.
func (db *DB) GetFavoriteByID(ctx context.Context, id int64) (*model.Favorite, error) {
	var f model.Favorite

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, game_id, name, background_image
		 FROM favorites WHERE id = ?`,
		id,
	).Scan(
		&f.ID,
		&f.Username,
		&f.GameID,
		&f.Name,
		&f.BackgroundImage,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("favorite", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting favorite %d: %w", id, err)
	}

	return &f, nil
}

// ListFavoritesByUsername returns a user's favorites, oldest first.
func (db *DB) ListFavoritesByUsername(ctx context.Context, username string) ([]model.Favorite, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, game_id, name, background_image
		 FROM favorites WHERE username = ? ORDER BY id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for %s: %w", username, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.Username, &f.GameID, &f.Name, &f.BackgroundImage); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}

	return favorites, nil
}

// DeleteFavorite removes a favorite row.
// Returns apperror.ErrNotFound if no row has that ID.
func (db *DB) DeleteFavorite(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting favorite %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting favorite %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("favorite", strconv.FormatInt(id, 10))
	}

	return nil
}
