// AngelaMos | 2026
// repository.go

package bio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/biolink/internal/core"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Bio, error)
	GetByUsername(ctx context.Context, username string) (*PublicBio, error)
	Upsert(ctx context.Context, bio *Bio) error
	Delete(ctx context.Context, userID string) error
}

const bioColumns = `
	id, user_id, display_name, description, avatar_url, profile_picture,
	links, theme, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(pool *sqlx.DB) Repository {
	return &repository{db: pool}
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID string,
) (*Bio, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM bios WHERE user_id = $1",
		bioColumns,
	)

	var bio Bio
	err := r.db.GetContext(ctx, &bio, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bio: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bio: %w", err)
	}

	return &bio, nil
}

// GetByUsername resolves the public page through the owner's username.
// Users without a claimed username have no public page, so the inner
// join doubles as the visibility check.
func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*PublicBio, error) {
	query := `
		SELECT u.username, b.display_name, b.description, b.avatar_url,
		       b.profile_picture, b.links, b.theme, b.updated_at
		FROM bios b
		JOIN users u ON u.id = b.user_id
		WHERE u.username = $1`

	var page PublicBio
	err := r.db.GetContext(ctx, &page, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get public bio: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get public bio: %w", err)
	}

	return &page, nil
}

// Upsert writes the whole document. The unique constraint on user_id
// makes the save idempotent: repeated saves update the same row.
func (r *repository) Upsert(ctx context.Context, bio *Bio) error {
	query := `
		INSERT INTO bios (
			id, user_id, display_name, description, avatar_url,
			profile_picture, links, theme
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			avatar_url = EXCLUDED.avatar_url,
			profile_picture = EXCLUDED.profile_picture,
			links = EXCLUDED.links,
			theme = EXCLUDED.theme,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		bio.ID,
		bio.UserID,
		bio.DisplayName,
		bio.Description,
		bio.AvatarURL,
		bio.ProfilePicture,
		bio.Links,
		bio.Theme,
	)

	if err := row.Scan(&bio.ID, &bio.CreatedAt, &bio.UpdatedAt); err != nil {
		return fmt.Errorf("upsert bio: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM bios WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete bio: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bio: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete bio: %w", core.ErrNotFound)
	}

	return nil
}
