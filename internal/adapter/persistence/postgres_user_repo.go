package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
)

// PostgresUserRepository looks up operator accounts.
type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) ports.UserRepository {
	return &PostgresUserRepository{db: db}
}

const userSelect = `
	SELECT id, email, name, password_hash, role, created_at, updated_at
	FROM users
`

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE email = $1`, email), email)
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id), id)
}

func (r *PostgresUserRepository) scanUser(row *sql.Row, key string) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
