// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/biolink/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateUsername(ctx context.Context, id, username string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetVerificationToken(
		ctx context.Context,
		id, tokenHash string,
		expiresAt time.Time,
	) error
	ConsumeVerificationToken(
		ctx context.Context,
		tokenHash string,
	) (*User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(
		ctx context.Context,
		id, tokenHash string,
		expiresAt time.Time,
	) error
	ConsumeResetToken(
		ctx context.Context,
		tokenHash, newPasswordHash string,
	) (*User, error)
	LinkGoogleID(ctx context.Context, id, googleID string) error
	UpdateSubscriptionInfo(
		ctx context.Context,
		id, customerID, subscriptionID string,
	) (*User, error)
	SetDemoMode(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

const userColumns = `
	id, email, password_hash, first_name, last_name, profile_image_url,
	username, is_paid, subscription_ends_at, is_demo_mode, google_id,
	email_verified, verification_token_hash, verification_expires_at,
	reset_token_hash, reset_expires_at, stripe_customer_id,
	stripe_subscription_id, created_at, updated_at`

type repository struct {
	db   core.DBTX
	pool *sqlx.DB
}

func NewRepository(pool *sqlx.DB) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			profile_image_url, google_id, email_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.ProfileImageURL,
		user.GoogleID,
		user.EmailVerified,
	)

	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			profile_image_url, google_id, email_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = EXCLUDED.profile_image_url,
			google_id = EXCLUDED.google_id,
			email_verified = EXCLUDED.email_verified,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.ProfileImageURL,
		user.GoogleID,
		user.EmailVerified,
	)

	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("upsert user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *repository) GetByGoogleID(
	ctx context.Context,
	googleID string,
) (*User, error) {
	return r.getBy(ctx, "google_id = $1", googleID)
}

func (r *repository) getBy(
	ctx context.Context,
	condition string,
	arg any,
) (*User, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s",
		userColumns,
		condition,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, profile_image_url = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.ProfileImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdateUsername(
	ctx context.Context,
	id, username string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update username: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("update username: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("update username: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

// SetVerificationToken overwrites any prior token, so at most one
// verification token is live per user.
func (r *repository) SetVerificationToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET verification_token_hash = $2, verification_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set verification token: %w", core.ErrNotFound)
	}

	return nil
}

// ConsumeVerificationToken clears the token and flips email_verified in one
// statement, so a token can never be redeemed twice. Expired tokens miss the
// WHERE clause and come back as ErrNotFound, identical to absent ones.
func (r *repository) ConsumeVerificationToken(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET email_verified = true, verification_token_hash = NULL,
		    verification_expires_at = NULL, updated_at = NOW()
		WHERE verification_token_hash = $1
			AND verification_expires_at > NOW()
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume verification token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	return &user, nil
}

func (r *repository) MarkEmailVerified(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET email_verified = true, verification_token_hash = NULL,
		    verification_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark email verified: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_expires_at = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	return nil
}

// ConsumeResetToken atomically clears the token and replaces the password
// hash; same single-use guarantee as verification tokens.
func (r *repository) ConsumeResetToken(
	ctx context.Context,
	tokenHash, newPasswordHash string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL,
		    reset_expires_at = NULL, updated_at = NOW()
		WHERE reset_token_hash = $1 AND reset_expires_at > NOW()
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, tokenHash, newPasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	return &user, nil
}

func (r *repository) LinkGoogleID(
	ctx context.Context,
	id, googleID string,
) error {
	query := `
		UPDATE users
		SET google_id = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, googleID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("link google id: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("link google id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link google id: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("link google id: %w", core.ErrNotFound)
	}

	return nil
}

// UpdateSubscriptionInfo stores both provider ids and flips the paid flag in
// one statement; the billing bridge never persists a half-linked state.
func (r *repository) UpdateSubscriptionInfo(
	ctx context.Context,
	id, customerID, subscriptionID string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET stripe_customer_id = $2, stripe_subscription_id = $3,
		    is_paid = true, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id, customerID, subscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update subscription info: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update subscription info: %w", err)
	}

	return &user, nil
}

func (r *repository) SetDemoMode(
	ctx context.Context,
	id string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET is_demo_mode = true, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set demo mode: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set demo mode: %w", err)
	}

	return &user, nil
}

// Delete removes the user and the owned bio inside one transaction, so a
// crash mid-sequence can never orphan a bio row.
func (r *repository) Delete(ctx context.Context, id string) error {
	return core.InTx(ctx, r.pool, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM bios WHERE user_id = $1`,
			id,
		); err != nil {
			return fmt.Errorf("delete bio: %w", err)
		}

		result, err := tx.ExecContext(
			ctx,
			`DELETE FROM users WHERE id = $1`,
			id,
		)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete user: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
