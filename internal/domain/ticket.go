package domain

import "time"

// Ticket is a maintenance request. Tickets are never deleted.
type Ticket struct {
	ID            int64
	DepartmentID  int64
	CategoryID    int64
	SubcategoryID *int64
	UserID        *int64
	AssetID       *int64
	PcPartID      *int64
	Description   *string
	Resolution    *string
	StatusID      int64
	TechnicianID  *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TicketView is a ticket joined with display names.
type TicketView struct {
	Ticket
	DepartmentName  string
	CategoryName    string
	SubcategoryName *string
	UserName        *string
	TechnicianName  *string
	AssetItemCode   *string
	PcPartName      *string
	StatusName      string
}

// TicketDraft carries the fields accepted on creation.
type TicketDraft struct {
	DepartmentID  Optional[int64]
	CategoryID    Optional[int64]
	StatusID      Optional[int64]
	SubcategoryID Optional[int64]
	UserID        Optional[int64]
	AssetID       Optional[int64]
	PcPartID      Optional[int64]
	TechnicianID  Optional[int64]
	Description   Optional[string]
}

// TicketPatch carries a partial update. Unset fields keep their stored value.
type TicketPatch struct {
	DepartmentID  Optional[int64]
	CategoryID    Optional[int64]
	StatusID      Optional[int64]
	SubcategoryID Optional[int64]
	UserID        Optional[int64]
	AssetID       Optional[int64]
	PcPartID      Optional[int64]
	TechnicianID  Optional[int64]
	Description   Optional[string]
	Resolution    Optional[string]
}

// IsEmpty reports whether no field was sent.
func (p TicketPatch) IsEmpty() bool {
	return !p.DepartmentID.IsSet() && !p.CategoryID.IsSet() && !p.StatusID.IsSet() &&
		!p.SubcategoryID.IsSet() && !p.UserID.IsSet() && !p.AssetID.IsSet() &&
		!p.PcPartID.IsSet() && !p.TechnicianID.IsSet() && !p.Description.IsSet() &&
		!p.Resolution.IsSet()
}

// ApplyTo returns a copy of t with the patch applied. Required fields ignore null.
func (p TicketPatch) ApplyTo(t Ticket) Ticket {
	if v, ok := p.DepartmentID.Get(); ok {
		t.DepartmentID = v
	}
	if v, ok := p.CategoryID.Get(); ok {
		t.CategoryID = v
	}
	if v, ok := p.StatusID.Get(); ok {
		t.StatusID = v
	}
	t.SubcategoryID = p.SubcategoryID.Apply(t.SubcategoryID)
	t.UserID = p.UserID.Apply(t.UserID)
	t.AssetID = p.AssetID.Apply(t.AssetID)
	t.PcPartID = p.PcPartID.Apply(t.PcPartID)
	t.TechnicianID = p.TechnicianID.Apply(t.TechnicianID)
	t.Description = p.Description.Apply(t.Description)
	t.Resolution = p.Resolution.Apply(t.Resolution)
	return t
}

// SameID compares two nullable ids.
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
