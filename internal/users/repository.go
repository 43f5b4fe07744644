package users

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diatonic-ai/workbench/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUser loads a user record including its permission overrides.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id, email, name, role_id, subscription_tier, is_active, created_at, updated_at
FROM users WHERE id=$1`, id).
		Scan(&user.ID, &user.Email, &user.Name, &user.RoleID, &user.SubscriptionTier, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT permission_id, kind, created_at
FROM user_permission_overrides WHERE user_id=$1 ORDER BY permission_id`, id)
	if err != nil {
		return User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var o Override
		if err := rows.Scan(&o.PermissionID, &o.Kind, &o.CreatedAt); err != nil {
			return User{}, err
		}
		user.Overrides = append(user.Overrides, o)
	}
	if err := rows.Err(); err != nil {
		return User{}, err
	}
	return user, nil
}

// CreateUser inserts a new user.
func (r *Repository) CreateUser(ctx context.Context, user User) (User, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO users (id, email, name, role_id, subscription_tier, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE)
RETURNING created_at, updated_at`, user.ID, user.Email, user.Name, user.RoleID, user.SubscriptionTier).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_users_email" {
			return User{}, shared.ErrDuplicate
		}
		return User{}, err
	}
	user.IsActive = true
	return user, nil
}

// UpdateRole changes the user's role and tier. Overrides are untouched:
// they persist across role changes until explicitly cleared.
func (r *Repository) UpdateRole(ctx context.Context, id, roleID, tier string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_id=$2, subscription_tier=$3, updated_at=NOW() WHERE id=$1`, id, roleID, tier)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpsertOverride records or replaces a permission override.
func (r *Repository) UpsertOverride(ctx context.Context, userID string, override Override) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_permission_overrides (user_id, permission_id, kind)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, permission_id) DO UPDATE SET kind=EXCLUDED.kind`, userID, override.PermissionID, override.Kind)
	return err
}

// DeleteOverride removes a single override.
func (r *Repository) DeleteOverride(ctx context.Context, userID, permissionID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_permission_overrides WHERE user_id=$1 AND permission_id=$2`, userID, permissionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearOverrides removes every override for the user.
func (r *Repository) ClearOverrides(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_permission_overrides WHERE user_id=$1`, userID)
	return err
}

// ListActiveIDs returns identifiers of all active users. Used by the
// quota reset job on billing-period rollover.
func (r *Repository) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Deactivate soft-disables an account. Records are never hard-deleted.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
