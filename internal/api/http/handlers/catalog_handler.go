package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/classification"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/service"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// CatalogHandler serves reference data and the classification filter.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// Classification GET /classification?department_id=&category_id=.
func (h *CatalogHandler) Classification(c *fiber.Ctx) error {
	deptID, err := optionalIDQuery(c, "department_id")
	if err != nil {
		return err
	}
	catID, err := optionalIDQuery(c, "category_id")
	if err != nil {
		return err
	}
	result, err := h.service.Classification(c.UserContext(), classification.Selection{DepartmentID: deptID, CategoryID: catID})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewClassificationResponse(result))
}

// ListStatuses GET /statuses.
func (h *CatalogHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.service.ListStatuses(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatusPayloads(statuses))
}

// ListDepartments GET /departments.
func (h *CatalogHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDepartmentPayloads(depts))
}

// SaveDepartment POST /departments and PUT /departments/:id.
func (h *CatalogHandler) SaveDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, status, err := targetID(c)
	if err != nil {
		return err
	}
	dept := req.ToDomain()
	dept.ID = id
	if err := h.service.SaveDepartment(c.UserContext(), &dept); err != nil {
		return err
	}
	return c.Status(status).JSON(dto.NewDepartmentPayload(dept))
}

// DeleteDepartment DELETE /departments/:id.
func (h *CatalogHandler) DeleteDepartment(c *fiber.Ctx) error {
	return h.remove(c, "department deleted", h.service.DeleteDepartment)
}

// ListCategories GET /categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCategoryPayloads(categories))
}

// SaveCategory POST /categories and PUT /categories/:id.
func (h *CatalogHandler) SaveCategory(c *fiber.Ctx) error {
	var req dto.CategoryPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, status, err := targetID(c)
	if err != nil {
		return err
	}
	category := domain.Category{ID: id, Name: req.Name}
	if err := h.service.SaveCategory(c.UserContext(), &category); err != nil {
		return err
	}
	return c.Status(status).JSON(dto.CategoryPayload{ID: category.ID, Name: category.Name})
}

// DeleteCategory DELETE /categories/:id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	return h.remove(c, "category deleted", h.service.DeleteCategory)
}

// ListSubCategories GET /subcategories.
func (h *CatalogHandler) ListSubCategories(c *fiber.Ctx) error {
	subs, err := h.service.ListSubCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSubCategoryPayloads(subs))
}

// SaveSubCategory POST /subcategories and PUT /subcategories/:id.
func (h *CatalogHandler) SaveSubCategory(c *fiber.Ctx) error {
	var req dto.SubCategoryPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, status, err := targetID(c)
	if err != nil {
		return err
	}
	sub := domain.SubCategory{ID: id, Name: req.Name, CategoryID: req.CategoryID}
	if err := h.service.SaveSubCategory(c.UserContext(), &sub); err != nil {
		return err
	}
	return c.Status(status).JSON(dto.SubCategoryPayload{ID: sub.ID, Name: sub.Name, CategoryID: sub.CategoryID})
}

// DeleteSubCategory DELETE /subcategories/:id.
func (h *CatalogHandler) DeleteSubCategory(c *fiber.Ctx) error {
	return h.remove(c, "sub-category deleted", h.service.DeleteSubCategory)
}

// ListAssets GET /assets.
func (h *CatalogHandler) ListAssets(c *fiber.Ctx) error {
	assets, err := h.service.ListAssets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAssetPayloads(assets))
}

// SaveAsset POST /assets and PUT /assets/:id.
func (h *CatalogHandler) SaveAsset(c *fiber.Ctx) error {
	var req dto.AssetPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, status, err := targetID(c)
	if err != nil {
		return err
	}
	acquired, ok := dto.ParseDate(req.DateAcquired)
	if !ok {
		return apperrors.NewInvalidField("date_acquired", "must be YYYY-MM-DD")
	}
	asset := domain.Asset{
		ID:            id,
		ItemCode:      req.ItemCode,
		DateAcquired:  acquired,
		SerialNo:      req.SerialNo,
		UnitPrice:     req.UnitPrice,
		Description:   req.Description,
		Supplier:      req.Supplier,
		SubCategoryID: req.SubCategoryID,
		DepartmentID:  req.DepartmentID,
	}
	if err := h.service.SaveAsset(c.UserContext(), &asset); err != nil {
		return err
	}
	return c.Status(status).JSON(dto.NewAssetPayload(asset))
}

// DeleteAsset DELETE /assets/:id.
func (h *CatalogHandler) DeleteAsset(c *fiber.Ctx) error {
	return h.remove(c, "asset deleted", h.service.DeleteAsset)
}

// ListPcParts GET /pc-parts.
func (h *CatalogHandler) ListPcParts(c *fiber.Ctx) error {
	parts, err := h.service.ListPcParts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPcPartPayloads(parts))
}

// SavePcPart POST /pc-parts and PUT /pc-parts/:id.
func (h *CatalogHandler) SavePcPart(c *fiber.Ctx) error {
	var req dto.PcPartPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, status, err := targetID(c)
	if err != nil {
		return err
	}
	acquired, ok := dto.ParseDate(req.DateAcquired)
	if !ok {
		return apperrors.NewInvalidField("date_acquired", "must be YYYY-MM-DD")
	}
	part := domain.PcPart{
		ID:            id,
		DepartmentID:  req.DepartmentID,
		AssetItemCode: req.AssetItemCode,
		PartName:      req.PartName,
		DateAcquired:  acquired,
		SerialNo:      req.SerialNo,
		UnitPrice:     req.UnitPrice,
		Description:   req.Description,
		Supplier:      req.Supplier,
	}
	if err := h.service.SavePcPart(c.UserContext(), &part); err != nil {
		return err
	}
	return c.Status(status).JSON(dto.NewPcPartPayload(part))
}

// DeletePcPart DELETE /pc-parts/:id.
func (h *CatalogHandler) DeletePcPart(c *fiber.Ctx) error {
	return h.remove(c, "pc part deleted", h.service.DeletePcPart)
}

func (h *CatalogHandler) remove(c *fiber.Ctx, message string, del func(ctx context.Context, id int64) error) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := del(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

// targetID returns the :id being updated, or zero and 201 when the route creates.
func targetID(c *fiber.Ctx) (int64, int, error) {
	if c.Params("id") == "" {
		return 0, http.StatusCreated, nil
	}
	id, err := idParam(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return id, http.StatusOK, nil
}
