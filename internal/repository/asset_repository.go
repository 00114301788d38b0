package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-mts/mts/internal/domain"
)

// AssetRepository manages department inventory.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
}

// PcPartRepository manages components of PC Unit assets.
type PcPartRepository interface {
	Create(ctx context.Context, part *domain.PcPart) error
	Update(ctx context.Context, part *domain.PcPart) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.PcPart, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository builds the repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, item_code, date_acquired, serial_no, unit_price, description, supplier, sub_category_id, department_id`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (item_code, date_acquired, serial_no, unit_price, description, supplier, sub_category_id, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		asset.ItemCode,
		asset.DateAcquired,
		asset.SerialNo,
		asset.UnitPrice,
		asset.Description,
		asset.Supplier,
		asset.SubCategoryID,
		asset.DepartmentID,
	).Scan(&asset.ID)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET item_code=$1, date_acquired=$2, serial_no=$3, unit_price=$4,
            description=$5, supplier=$6, sub_category_id=$7, department_id=$8
        WHERE id=$9`
	return execOne(ctx, r.pool, query,
		asset.ItemCode,
		asset.DateAcquired,
		asset.SerialNo,
		asset.UnitPrice,
		asset.Description,
		asset.Supplier,
		asset.SubCategoryID,
		asset.DepartmentID,
		asset.ID,
	)
}

func (r *assetRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM assets WHERE id=$1`, id)
}

func (r *assetRepository) GetByID(ctx context.Context, id int64) (*domain.Asset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	assets, err := scanAssets(rows)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &assets[0], nil
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY item_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

func scanAssets(rows pgx.Rows) ([]domain.Asset, error) {
	result := []domain.Asset{}
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(
			&a.ID,
			&a.ItemCode,
			&a.DateAcquired,
			&a.SerialNo,
			&a.UnitPrice,
			&a.Description,
			&a.Supplier,
			&a.SubCategoryID,
			&a.DepartmentID,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

type pcPartRepository struct {
	pool *pgxpool.Pool
}

// NewPcPartRepository builds the repository.
func NewPcPartRepository(pool *pgxpool.Pool) PcPartRepository {
	return &pcPartRepository{pool: pool}
}

func (r *pcPartRepository) Create(ctx context.Context, part *domain.PcPart) error {
	const query = `
        INSERT INTO pc_parts (department_id, asset_item_code, part_name, date_acquired, serial_no, unit_price, description, supplier)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		part.DepartmentID,
		part.AssetItemCode,
		part.PartName,
		part.DateAcquired,
		part.SerialNo,
		part.UnitPrice,
		part.Description,
		part.Supplier,
	).Scan(&part.ID)
}

func (r *pcPartRepository) Update(ctx context.Context, part *domain.PcPart) error {
	const query = `
        UPDATE pc_parts SET department_id=$1, asset_item_code=$2, part_name=$3, date_acquired=$4,
            serial_no=$5, unit_price=$6, description=$7, supplier=$8
        WHERE id=$9`
	return execOne(ctx, r.pool, query,
		part.DepartmentID,
		part.AssetItemCode,
		part.PartName,
		part.DateAcquired,
		part.SerialNo,
		part.UnitPrice,
		part.Description,
		part.Supplier,
		part.ID,
	)
}

func (r *pcPartRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, `DELETE FROM pc_parts WHERE id=$1`, id)
}

func (r *pcPartRepository) List(ctx context.Context) ([]domain.PcPart, error) {
	const query = `
        SELECT id, department_id, asset_item_code, part_name, date_acquired, serial_no, unit_price, description, supplier
        FROM pc_parts ORDER BY asset_item_code, part_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.PcPart{}
	for rows.Next() {
		var p domain.PcPart
		if err := rows.Scan(
			&p.ID,
			&p.DepartmentID,
			&p.AssetItemCode,
			&p.PartName,
			&p.DateAcquired,
			&p.SerialNo,
			&p.UnitPrice,
			&p.Description,
			&p.Supplier,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
