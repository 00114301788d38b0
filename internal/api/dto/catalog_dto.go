package dto

import (
	"time"

	"github.com/campus-mts/mts/internal/classification"
	"github.com/campus-mts/mts/internal/domain"
)

// DepartmentPayload is both request and response for departments.
type DepartmentPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Head     string `json:"head"`
	Status   string `json:"status"`
}

func (p DepartmentPayload) ToDomain() domain.Department {
	return domain.Department{ID: p.ID, Name: p.Name, Location: p.Location, Head: p.Head,
		Status: domain.DepartmentStatus(p.Status)}
}

func NewDepartmentPayload(d domain.Department) DepartmentPayload {
	return DepartmentPayload{ID: d.ID, Name: d.Name, Location: d.Location, Head: d.Head, Status: string(d.Status)}
}

// CategoryPayload is both request and response for categories.
type CategoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubCategoryPayload is both request and response for sub-categories.
type SubCategoryPayload struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// AssetPayload is both request and response for assets. DateAcquired is YYYY-MM-DD.
type AssetPayload struct {
	ID            int64   `json:"id"`
	ItemCode      string  `json:"item_code"`
	DateAcquired  *string `json:"date_acquired"`
	SerialNo      string  `json:"serial_no"`
	UnitPrice     float64 `json:"unit_price"`
	Description   string  `json:"description"`
	Supplier      string  `json:"supplier"`
	SubCategoryID int64   `json:"sub_category_id"`
	DepartmentID  int64   `json:"department_id"`
}

// PcPartPayload is both request and response for PC parts.
type PcPartPayload struct {
	ID            int64   `json:"id"`
	DepartmentID  int64   `json:"department_id"`
	AssetItemCode string  `json:"asset_item_code"`
	PartName      string  `json:"part_name"`
	DateAcquired  *string `json:"date_acquired"`
	SerialNo      string  `json:"serial_no"`
	UnitPrice     float64 `json:"unit_price"`
	Description   string  `json:"description"`
	Supplier      string  `json:"supplier"`
}

// StatusPayload is a status row.
type StatusPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ClassificationResponse is the filtered catalog.
type ClassificationResponse struct {
	Categories        []CategoryPayload    `json:"categories"`
	SubCategories     []SubCategoryPayload `json:"subCategories"`
	Assets            []AssetPayload       `json:"assets"`
	PcParts           []PcPartPayload      `json:"pcParts"`
	FacultyStaffUsers []UserResponse       `json:"facultyStaffUsers"`
	MaintenanceUsers  []UserResponse       `json:"maintenanceUsers"`
}

const dateLayout = "2006-01-02"

// ParseDate reads an optional YYYY-MM-DD value; empty means none.
func ParseDate(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func NewCategoryPayloads(cs []domain.Category) []CategoryPayload {
	out := make([]CategoryPayload, 0, len(cs))
	for _, c := range cs {
		out = append(out, CategoryPayload{ID: c.ID, Name: c.Name})
	}
	return out
}

func NewSubCategoryPayloads(subs []domain.SubCategory) []SubCategoryPayload {
	out := make([]SubCategoryPayload, 0, len(subs))
	for _, s := range subs {
		out = append(out, SubCategoryPayload{ID: s.ID, Name: s.Name, CategoryID: s.CategoryID})
	}
	return out
}

func NewAssetPayload(a domain.Asset) AssetPayload {
	return AssetPayload{
		ID:            a.ID,
		ItemCode:      a.ItemCode,
		DateAcquired:  formatDate(a.DateAcquired),
		SerialNo:      a.SerialNo,
		UnitPrice:     a.UnitPrice,
		Description:   a.Description,
		Supplier:      a.Supplier,
		SubCategoryID: a.SubCategoryID,
		DepartmentID:  a.DepartmentID,
	}
}

func NewAssetPayloads(assets []domain.Asset) []AssetPayload {
	out := make([]AssetPayload, 0, len(assets))
	for _, a := range assets {
		out = append(out, NewAssetPayload(a))
	}
	return out
}

func NewPcPartPayload(p domain.PcPart) PcPartPayload {
	return PcPartPayload{
		ID:            p.ID,
		DepartmentID:  p.DepartmentID,
		AssetItemCode: p.AssetItemCode,
		PartName:      p.PartName,
		DateAcquired:  formatDate(p.DateAcquired),
		SerialNo:      p.SerialNo,
		UnitPrice:     p.UnitPrice,
		Description:   p.Description,
		Supplier:      p.Supplier,
	}
}

func NewPcPartPayloads(parts []domain.PcPart) []PcPartPayload {
	out := make([]PcPartPayload, 0, len(parts))
	for _, p := range parts {
		out = append(out, NewPcPartPayload(p))
	}
	return out
}

func NewStatusPayloads(statuses []domain.Status) []StatusPayload {
	out := make([]StatusPayload, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusPayload{ID: s.ID, Name: s.Name})
	}
	return out
}

func NewDepartmentPayloads(depts []domain.Department) []DepartmentPayload {
	out := make([]DepartmentPayload, 0, len(depts))
	for _, d := range depts {
		out = append(out, NewDepartmentPayload(d))
	}
	return out
}

// NewClassificationResponse maps a filter result.
func NewClassificationResponse(r classification.Result) ClassificationResponse {
	return ClassificationResponse{
		Categories:        NewCategoryPayloads(r.Categories),
		SubCategories:     NewSubCategoryPayloads(r.SubCategories),
		Assets:            NewAssetPayloads(r.Assets),
		PcParts:           NewPcPartPayloads(r.PcParts),
		FacultyStaffUsers: NewUserResponses(r.FacultyStaffUsers),
		MaintenanceUsers:  NewUserResponses(r.MaintenanceUsers),
	}
}
