package domain

// Seeded status names.
const (
	StatusOpen        = "Open"
	StatusInProgress  = "In Progress"
	StatusClosed      = "Closed"
	StatusForApproval = "For Approval"
)

// Status is a row of the statuses lookup table.
type Status struct {
	ID   int64
	Name string
}

// CanRequestApproval reports whether a ticket in current may enter the approval lane.
// Any state may, except one already waiting for approval.
func CanRequestApproval(current string) bool {
	return current != StatusForApproval
}

// CanResolveApproval reports whether approve/reject applies to a ticket in current.
func CanResolveApproval(current string) bool {
	return current == StatusForApproval
}

// ApprovalOutcome returns the status a resolved approval moves the ticket to.
func ApprovalOutcome(approved bool) string {
	if approved {
		return StatusClosed
	}
	return StatusOpen
}
