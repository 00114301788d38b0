package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-mts/mts/internal/domain"
)

// CategoryRepository manages top-level ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Category, error)
}

// SubCategoryRepository manages sub-categories. Deleting a category cascades to them.
type SubCategoryRepository interface {
	Create(ctx context.Context, sub *domain.SubCategory) error
	Update(ctx context.Context, sub *domain.SubCategory) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.SubCategory, error)
	List(ctx context.Context) ([]domain.SubCategory, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, category.Name).
		Scan(&category.ID)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return execOne(ctx, r.pool, `UPDATE categories SET name=$1 WHERE id=$2`, category.Name, category.ID)
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM categories WHERE id=$1`, id)
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type subCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewSubCategoryRepository builds the repository.
func NewSubCategoryRepository(pool *pgxpool.Pool) SubCategoryRepository {
	return &subCategoryRepository{pool: pool}
}

func (r *subCategoryRepository) Create(ctx context.Context, sub *domain.SubCategory) error {
	const query = `INSERT INTO sub_categories (name, category_id) VALUES ($1,$2) RETURNING id`
	return r.pool.QueryRow(ctx, query, sub.Name, sub.CategoryID).Scan(&sub.ID)
}

func (r *subCategoryRepository) Update(ctx context.Context, sub *domain.SubCategory) error {
	return execOne(ctx, r.pool, `UPDATE sub_categories SET name=$1, category_id=$2 WHERE id=$3`,
		sub.Name, sub.CategoryID, sub.ID)
}

func (r *subCategoryRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM sub_categories WHERE id=$1`, id)
}

func (r *subCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.SubCategory, error) {
	var sub domain.SubCategory
	err := r.pool.QueryRow(ctx, `SELECT id, name, category_id FROM sub_categories WHERE id=$1`, id).
		Scan(&sub.ID, &sub.Name, &sub.CategoryID)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subCategoryRepository) List(ctx context.Context) ([]domain.SubCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, category_id FROM sub_categories ORDER BY category_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SubCategory{}
	for rows.Next() {
		var sub domain.SubCategory
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.CategoryID); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
