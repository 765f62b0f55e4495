package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/forumauth/pkg/db"
)

const userColumns = `id, username, name, email, role, oauth2_user_id, is_ldap_user, disable_login_form, created_at, updated_at`

// PostgresRepository stores accounts in the users, groups and group_members tables.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Role, &u.ExternalID,
		&u.IsExternal, &u.DisableLoginForm, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) FindByExternalID(ctx context.Context, externalID string) (*User, error) {
	if externalID == "" {
		return nil, ErrUserNotFound
	}
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE oauth2_user_id = $1`, externalID))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("account: find by external id: %w", err)
	}
	return u, err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("account: find by id: %w", err)
	}
	return u, err
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	id := uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, name, email, role, oauth2_user_id, is_ldap_user, disable_login_form)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		id, u.Username, u.Name, u.Email, u.Role, u.ExternalID, u.IsExternal, u.DisableLoginForm,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyLinked
		}
		return fmt.Errorf("account: create user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			username = COALESCE(NULLIF($2, ''), username),
			name = COALESCE(NULLIF($3, ''), name),
			email = COALESCE(NULLIF($4, ''), email),
			updated_at = now()
		WHERE id = $1`,
		id, p.Username, p.Name, p.Email,
	)
	if err != nil {
		return fmt.Errorf("account: update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearExternalID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET oauth2_user_id = '',
			updated_at = CASE WHEN oauth2_user_id = '' THEN updated_at ELSE now() END
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("account: clear external id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetOrCreateExternalGroup relies on the unique index on groups.external_id;
// the no-op update makes RETURNING yield the existing row on conflict.
func (r *PostgresRepository) GetOrCreateExternalGroup(ctx context.Context, externalID, name string) (uuid.UUID, error) {
	if externalID == "" {
		return uuid.Nil, ErrEmptyGroupID
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO groups (id, external_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id`,
		uuid.New(), externalID, name,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("account: get or create group %q: %w", externalID, err)
	}
	return id, nil
}

func (r *PostgresRepository) SyncExternalGroups(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error {
	ids := make([]string, len(groupIDs))
	for i, id := range groupIDs {
		ids[i] = id.String()
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("account: sync groups: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			DELETE FROM group_members gm
			USING groups g
			WHERE gm.group_id = g.id
				AND gm.user_id = $1
				AND g.external_id IS NOT NULL
				AND NOT (gm.group_id = ANY ($2::uuid[]))`,
			userID, ids,
		); err != nil {
			return fmt.Errorf("account: sync groups: remove: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO group_members (group_id, user_id)
			SELECT g.id, $1 FROM groups g WHERE g.id = ANY ($2::uuid[])
			ON CONFLICT DO NOTHING`,
			userID, ids,
		); err != nil {
			return fmt.Errorf("account: sync groups: add: %w", err)
		}
		return nil
	}, db.Isolation(pgx.ReadCommitted))
}

func (r *PostgresRepository) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, COALESCE(g.external_id, ''), g.name
		FROM groups g JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("account: list groups: %w", err)
	}

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Group, error) {
		var g Group
		err := row.Scan(&g.ID, &g.ExternalID, &g.Name)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("account: list groups: %w", err)
	}
	return groups, nil
}

var _ Repository = (*PostgresRepository)(nil)
