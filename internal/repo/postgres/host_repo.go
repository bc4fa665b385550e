package postgres

import (
	"context"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HostRepo interface {
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]domain.Host, error)
	FindByID(ctx context.Context, id int64) (*domain.Host, error)
	Create(ctx context.Context, in *domain.CreateHostRequest) (*domain.Host, error)
	UpdatePhone(ctx context.Context, id int64, phone *string) error
}

type HostRepoImpl struct{ pool *pgxpool.Pool }

func NewHostRepo(pool *pgxpool.Pool) *HostRepoImpl { return &HostRepoImpl{pool: pool} }

const hostCols = `id, external_id, name, company, email, phone, location, status, created_at, updated_at`

func scanHost(row pgx.Row, h *domain.Host) error {
	return row.Scan(
		&h.ID, &h.ExternalID, &h.Name, &h.Company, &h.Email, &h.Phone,
		&h.Location, &h.Status, &h.CreatedAt, &h.UpdatedAt,
	)
}

// FindByExternalIDs loads every host whose external id is in the list with a
// single query.
func (r *HostRepoImpl) FindByExternalIDs(ctx context.Context, externalIDs []string) ([]domain.Host, error) {
	const q = `SELECT ` + hostCols + ` FROM hosts WHERE external_id = ANY($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, externalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Host
	for rows.Next() {
		var h domain.Host
		if err := scanHost(rows, &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HostRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Host, error) {
	const q = `SELECT ` + hostCols + ` FROM hosts WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var h domain.Host
	err := scanHost(r.pool.QueryRow(ctx, q, id), &h)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HostRepoImpl) Create(ctx context.Context, in *domain.CreateHostRequest) (*domain.Host, error) {
	const q = `
INSERT INTO hosts (external_id, name, company, email, phone, location, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + hostCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var h domain.Host
	if err := scanHost(r.pool.QueryRow(ctx, q,
		in.ExternalID, in.Name, in.Company, in.Email, in.Phone, in.Location, in.Status,
	), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HostRepoImpl) UpdatePhone(ctx context.Context, id int64, phone *string) error {
	const q = `UPDATE hosts SET phone=$2, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, id, phone)
	return err
}
