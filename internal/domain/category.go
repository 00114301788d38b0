package domain

// Category is a top-level ticket classification. It carries no department link.
type Category struct {
	ID   int64
	Name string
}

// SubCategory refines a Category. Names are unique per category.
type SubCategory struct {
	ID         int64
	Name       string
	CategoryID int64
}

// PCUnitSubCategory names the sub-category whose assets may own PC parts.
const PCUnitSubCategory = "PC Unit"
