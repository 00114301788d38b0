package service

import (
	"context"

	"github.com/campus-mts/mts/internal/domain"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// RequestApproval moves a ticket into For Approval. Maintenance and admins only.
func (s *TicketService) RequestApproval(ctx context.Context, actor *domain.User, ticketID int64) error {
	if !actor.HasRole(domain.RoleAdmin, domain.RoleMaintenance) {
		return apperrors.NewForbidden("only maintenance can request approval")
	}
	current, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	status, err := s.statusName(ctx, current.StatusID)
	if err != nil {
		return err
	}
	if !domain.CanRequestApproval(status) {
		return apperrors.NewConflict("ticket is already awaiting approval", map[string]any{"status": status})
	}
	return s.moveToStatus(ctx, actor, current, domain.StatusForApproval)
}

// ResolveApproval approves (Closed) or rejects (Open) a ticket awaiting approval.
// Only the ticket's creator may resolve it.
func (s *TicketService) ResolveApproval(ctx context.Context, actor *domain.User, ticketID int64, approved bool) error {
	current, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if actor == nil || current.UserID == nil || *current.UserID != actor.ID {
		return apperrors.NewForbidden("only the ticket creator can resolve an approval")
	}
	status, err := s.statusName(ctx, current.StatusID)
	if err != nil {
		return err
	}
	if !domain.CanResolveApproval(status) {
		return apperrors.NewConflict("ticket is not awaiting approval", map[string]any{"status": status})
	}
	return s.moveToStatus(ctx, actor, current, domain.ApprovalOutcome(approved))
}

func (s *TicketService) moveToStatus(ctx context.Context, actor *domain.User, current *domain.Ticket, name string) error {
	target, err := s.statuses.GetByName(ctx, name)
	if err != nil {
		return apperrors.MapError(err)
	}
	return s.applyPatch(ctx, actor, current, domain.TicketPatch{StatusID: domain.SetTo(target.ID)})
}

func (s *TicketService) statusName(ctx context.Context, id int64) (string, error) {
	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return status.Name, nil
}
