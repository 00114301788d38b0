// Package classification narrows the catalog offered when a ticket is being filed:
// picking a department limits categories and assets, picking a category limits sub-categories.
package classification

import "github.com/campus-mts/mts/internal/domain"

// Catalog is the full set of selectable reference data.
type Catalog struct {
	Categories    []domain.Category
	SubCategories []domain.SubCategory
	Assets        []domain.Asset
	PcParts       []domain.PcPart
	Users         []domain.User
}

// Selection is what the user has picked so far. Nil means nothing picked.
type Selection struct {
	DepartmentID *int64
	CategoryID   *int64
}

// Result holds the options still valid for a selection. Slices are never nil.
type Result struct {
	Categories        []domain.Category
	SubCategories     []domain.SubCategory
	Assets            []domain.Asset
	PcParts           []domain.PcPart
	FacultyStaffUsers []domain.User
	MaintenanceUsers  []domain.User
}

// Filter applies sel to catalog. It never fails; an empty catalog yields an empty result.
//
// A department owns the categories reached through its assets' sub-categories.
// With a category selected, sub-categories are those of the category. Without one,
// they are those of the department's categories, or all of them when no department is picked.
func Filter(catalog Catalog, sel Selection) Result {
	res := Result{
		Categories:        []domain.Category{},
		SubCategories:     []domain.SubCategory{},
		Assets:            []domain.Asset{},
		PcParts:           []domain.PcPart{},
		FacultyStaffUsers: []domain.User{},
		MaintenanceUsers:  []domain.User{},
	}

	var deptCategories map[int64]struct{}
	if sel.DepartmentID != nil {
		deptCategories = departmentCategories(catalog, *sel.DepartmentID)
	}

	for _, c := range catalog.Categories {
		if deptCategories != nil {
			if _, ok := deptCategories[c.ID]; !ok {
				continue
			}
		}
		res.Categories = append(res.Categories, c)
	}

	for _, sc := range catalog.SubCategories {
		switch {
		case sel.CategoryID != nil:
			if sc.CategoryID != *sel.CategoryID {
				continue
			}
		case deptCategories != nil:
			if _, ok := deptCategories[sc.CategoryID]; !ok {
				continue
			}
		}
		res.SubCategories = append(res.SubCategories, sc)
	}

	for _, a := range catalog.Assets {
		if sel.DepartmentID != nil && a.DepartmentID != *sel.DepartmentID {
			continue
		}
		res.Assets = append(res.Assets, a)
	}

	for _, p := range catalog.PcParts {
		if sel.DepartmentID != nil && p.DepartmentID != *sel.DepartmentID {
			continue
		}
		res.PcParts = append(res.PcParts, p)
	}

	for _, u := range catalog.Users {
		switch u.Role {
		case domain.RoleFacultyStaff:
			res.FacultyStaffUsers = append(res.FacultyStaffUsers, u)
		case domain.RoleMaintenance:
			res.MaintenanceUsers = append(res.MaintenanceUsers, u)
		}
	}

	return res
}

func departmentCategories(catalog Catalog, departmentID int64) map[int64]struct{} {
	subToCategory := make(map[int64]int64, len(catalog.SubCategories))
	for _, sc := range catalog.SubCategories {
		subToCategory[sc.ID] = sc.CategoryID
	}
	out := map[int64]struct{}{}
	for _, a := range catalog.Assets {
		if a.DepartmentID != departmentID {
			continue
		}
		if catID, ok := subToCategory[a.SubCategoryID]; ok {
			out[catID] = struct{}{}
		}
	}
	return out
}
