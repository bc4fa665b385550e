package postgres

import (
	"context"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo interface {
	Create(ctx context.Context, in *domain.CreateUserRequest, hash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByHostID(ctx context.Context, hostID int64) (*domain.User, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userCols = `id, role, email, password_hash, name, host_id, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.Name, &u.HostID, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) Create(ctx context.Context, in *domain.CreateUserRequest, hash string) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password_hash, name, role, host_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, in.Email, hash, in.Name, in.Role, in.HostID))
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE lower(email)=lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// FindByHostID returns the oldest user bound to the host.
func (r *UsersRepoImpl) FindByHostID(ctx context.Context, hostID int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE host_id=$1 ORDER BY id LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, hostID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}
