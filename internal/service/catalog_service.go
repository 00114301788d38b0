package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/classification"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/repository"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// CatalogInvalidator drops cached reference data after a write.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// CatalogCache stores the classification catalog between requests.
type CatalogCache interface {
	CatalogInvalidator
	Load(ctx context.Context) (classification.Catalog, bool)
	Store(ctx context.Context, catalog classification.Catalog)
}

// CatalogService owns reference data: departments, categories, sub-categories, assets, PC parts and statuses.
type CatalogService struct {
	departments   repository.DepartmentRepository
	categories    repository.CategoryRepository
	subCategories repository.SubCategoryRepository
	assets        repository.AssetRepository
	pcParts       repository.PcPartRepository
	statuses      repository.StatusRepository
	users         repository.UserRepository
	cache         CatalogCache
	logger        *zap.Logger
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	DepartmentRepo  repository.DepartmentRepository
	CategoryRepo    repository.CategoryRepository
	SubCategoryRepo repository.SubCategoryRepository
	AssetRepo       repository.AssetRepository
	PcPartRepo      repository.PcPartRepository
	StatusRepo      repository.StatusRepository
	UserRepo        repository.UserRepository
	Cache           CatalogCache
	Logger          *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		departments:   deps.DepartmentRepo,
		categories:    deps.CategoryRepo,
		subCategories: deps.SubCategoryRepo,
		assets:        deps.AssetRepo,
		pcParts:       deps.PcPartRepo,
		statuses:      deps.StatusRepo,
		users:         deps.UserRepo,
		cache:         deps.Cache,
		logger:        logger,
	}
}

// Classification filters the catalog for a department/category selection.
func (s *CatalogService) Classification(ctx context.Context, sel classification.Selection) (classification.Result, error) {
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return classification.Result{}, err
	}
	return classification.Filter(catalog, sel), nil
}

func (s *CatalogService) loadCatalog(ctx context.Context) (classification.Catalog, error) {
	if s.cache != nil {
		if catalog, ok := s.cache.Load(ctx); ok {
			return catalog, nil
		}
	}

	var (
		catalog classification.Catalog
		err     error
	)
	if catalog.Categories, err = s.categories.List(ctx); err != nil {
		return catalog, apperrors.MapError(err)
	}
	if catalog.SubCategories, err = s.subCategories.List(ctx); err != nil {
		return catalog, apperrors.MapError(err)
	}
	if catalog.Assets, err = s.assets.List(ctx); err != nil {
		return catalog, apperrors.MapError(err)
	}
	if catalog.PcParts, err = s.pcParts.List(ctx); err != nil {
		return catalog, apperrors.MapError(err)
	}
	if catalog.Users, err = s.users.List(ctx); err != nil {
		return catalog, apperrors.MapError(err)
	}

	if s.cache != nil {
		s.cache.Store(ctx, catalog)
	}
	return catalog, nil
}

func (s *CatalogService) changed(ctx context.Context, kind string, id int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.logger.Debug("catalog changed", zap.String("kind", kind), zap.Int64("id", id))
}

// ListStatuses returns the seeded statuses.
func (s *CatalogService) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	statuses, err := s.statuses.List(ctx)
	return statuses, apperrors.MapError(err)
}

// ListDepartments returns all departments.
func (s *CatalogService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx)
	return depts, apperrors.MapError(err)
}

// SaveDepartment creates the department when ID is zero, otherwise updates it.
func (s *CatalogService) SaveDepartment(ctx context.Context, dept *domain.Department) error {
	dept.Name = strings.TrimSpace(dept.Name)
	if dept.Name == "" {
		return apperrors.NewMissingField("name")
	}
	if dept.Status == "" {
		dept.Status = domain.DepartmentActive
	}
	if !dept.Status.Valid() {
		return apperrors.NewInvalidField("status", "must be Active or Inactive")
	}
	if dept.ID == 0 {
		if err := s.departments.Create(ctx, dept); err != nil {
			return apperrors.MapError(err)
		}
	} else if err := s.departments.Update(ctx, dept); err != nil {
		return notFoundOr(err, "department", dept.ID)
	}
	s.changed(ctx, "department", dept.ID)
	return nil
}

// DeleteDepartment removes a department. One still used by assets, parts or tickets is a conflict.
func (s *CatalogService) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return apperrors.MapDeleteError(err, "department", id)
	}
	s.changed(ctx, "department", id)
	return nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	return categories, apperrors.MapError(err)
}

// SaveCategory creates or updates a category.
func (s *CatalogService) SaveCategory(ctx context.Context, category *domain.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return apperrors.NewMissingField("name")
	}
	if category.ID == 0 {
		if err := s.categories.Create(ctx, category); err != nil {
			return apperrors.MapError(err)
		}
	} else if err := s.categories.Update(ctx, category); err != nil {
		return notFoundOr(err, "category", category.ID)
	}
	s.changed(ctx, "category", category.ID)
	return nil
}

// DeleteCategory removes a category and, by cascade, its sub-categories.
// It conflicts while tickets or assets still use either.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return apperrors.MapDeleteError(err, "category", id)
	}
	s.changed(ctx, "category", id)
	return nil
}

// ListSubCategories returns all sub-categories.
func (s *CatalogService) ListSubCategories(ctx context.Context) ([]domain.SubCategory, error) {
	subs, err := s.subCategories.List(ctx)
	return subs, apperrors.MapError(err)
}

// SaveSubCategory creates or updates a sub-category. Names are unique within a category.
func (s *CatalogService) SaveSubCategory(ctx context.Context, sub *domain.SubCategory) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return apperrors.NewMissingField("name")
	}
	if sub.CategoryID <= 0 {
		return apperrors.NewMissingField("category_id")
	}
	if sub.ID == 0 {
		if err := s.subCategories.Create(ctx, sub); err != nil {
			return apperrors.MapError(err)
		}
	} else if err := s.subCategories.Update(ctx, sub); err != nil {
		return notFoundOr(err, "sub-category", sub.ID)
	}
	s.changed(ctx, "sub_category", sub.ID)
	return nil
}

// DeleteSubCategory removes a sub-category.
func (s *CatalogService) DeleteSubCategory(ctx context.Context, id int64) error {
	if err := s.subCategories.Delete(ctx, id); err != nil {
		return apperrors.MapDeleteError(err, "sub-category", id)
	}
	s.changed(ctx, "sub_category", id)
	return nil
}

// ListAssets returns all assets.
func (s *CatalogService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	assets, err := s.assets.List(ctx)
	return assets, apperrors.MapError(err)
}

// SaveAsset creates or updates an asset. Item code and serial number are unique.
func (s *CatalogService) SaveAsset(ctx context.Context, asset *domain.Asset) error {
	asset.ItemCode = strings.TrimSpace(asset.ItemCode)
	asset.SerialNo = strings.TrimSpace(asset.SerialNo)
	switch {
	case asset.ItemCode == "":
		return apperrors.NewMissingField("item_code")
	case asset.SerialNo == "":
		return apperrors.NewMissingField("serial_no")
	case asset.SubCategoryID <= 0:
		return apperrors.NewMissingField("sub_category_id")
	case asset.DepartmentID <= 0:
		return apperrors.NewMissingField("department_id")
	case asset.UnitPrice < 0:
		return apperrors.NewInvalidField("unit_price", "must not be negative")
	}
	if asset.ID == 0 {
		if err := s.assets.Create(ctx, asset); err != nil {
			return apperrors.MapError(err)
		}
	} else if err := s.assets.Update(ctx, asset); err != nil {
		return notFoundOr(err, "asset", asset.ID)
	}
	s.changed(ctx, "asset", asset.ID)
	return nil
}

// DeleteAsset removes an asset.
func (s *CatalogService) DeleteAsset(ctx context.Context, id int64) error {
	if err := s.assets.Delete(ctx, id); err != nil {
		return apperrors.MapDeleteError(err, "asset", id)
	}
	s.changed(ctx, "asset", id)
	return nil
}

// ListPcParts returns all PC parts.
func (s *CatalogService) ListPcParts(ctx context.Context) ([]domain.PcPart, error) {
	parts, err := s.pcParts.List(ctx)
	return parts, apperrors.MapError(err)
}

// SavePcPart creates or updates a PC part.
func (s *CatalogService) SavePcPart(ctx context.Context, part *domain.PcPart) error {
	part.AssetItemCode = strings.TrimSpace(part.AssetItemCode)
	part.PartName = strings.TrimSpace(part.PartName)
	switch {
	case part.DepartmentID <= 0:
		return apperrors.NewMissingField("department_id")
	case part.AssetItemCode == "":
		return apperrors.NewMissingField("asset_item_code")
	case part.PartName == "":
		return apperrors.NewMissingField("part_name")
	case part.UnitPrice < 0:
		return apperrors.NewInvalidField("unit_price", "must not be negative")
	}
	if part.ID == 0 {
		if err := s.pcParts.Create(ctx, part); err != nil {
			return apperrors.MapError(err)
		}
	} else if err := s.pcParts.Update(ctx, part); err != nil {
		return notFoundOr(err, "pc part", part.ID)
	}
	s.changed(ctx, "pc_part", part.ID)
	return nil
}

// DeletePcPart removes a PC part.
func (s *CatalogService) DeletePcPart(ctx context.Context, id int64) error {
	if err := s.pcParts.Delete(ctx, id); err != nil {
		return apperrors.MapDeleteError(err, "pc part", id)
	}
	s.changed(ctx, "pc_part", id)
	return nil
}
