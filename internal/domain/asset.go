package domain

import "time"

// Asset is an inventory item registered to a department.
type Asset struct {
	ID            int64
	ItemCode      string
	DateAcquired  *time.Time
	SerialNo      string
	UnitPrice     float64
	Description   string
	Supplier      string
	SubCategoryID int64
	DepartmentID  int64
}

// PcPart is a component of a "PC Unit" asset, referenced by the asset's item code.
type PcPart struct {
	ID            int64
	DepartmentID  int64
	AssetItemCode string
	PartName      string
	DateAcquired  *time.Time
	SerialNo      string
	UnitPrice     float64
	Description   string
	Supplier      string
}
