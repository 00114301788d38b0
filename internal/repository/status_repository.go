package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-mts/mts/internal/domain"
)

// StatusRepository reads the seeded status lookup table.
type StatusRepository interface {
	List(ctx context.Context) ([]domain.Status, error)
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	GetByName(ctx context.Context, name string) (*domain.Status, error)
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository builds the repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM statuses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Status{}
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	var s domain.Status
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM statuses WHERE id=$1`, id).Scan(&s.ID, &s.Name); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*domain.Status, error) {
	var s domain.Status
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM statuses WHERE name=$1`, name).Scan(&s.ID, &s.Name); err != nil {
		return nil, err
	}
	return &s, nil
}
