package domain

// DepartmentStatus is the administrative state of a department.
type DepartmentStatus string

const (
	DepartmentActive   DepartmentStatus = "Active"
	DepartmentInactive DepartmentStatus = "Inactive"
)

// Valid reports whether s is a known department status.
func (s DepartmentStatus) Valid() bool {
	return s == DepartmentActive || s == DepartmentInactive
}

// Department represents a campus organizational unit.
type Department struct {
	ID       int64
	Name     string
	Location string
	Head     string
	Status   DepartmentStatus
}
