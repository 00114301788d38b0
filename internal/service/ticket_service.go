package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/events"
	"github.com/campus-mts/mts/internal/repository"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
//
// A ticket update and the notifications it triggers are not atomic: the row is written
// first and notifications follow in the background. Concurrent updates are last-write-wins.
type TicketService struct {
	tickets    repository.TicketRepository
	statuses   repository.StatusRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	StatusRepo repository.StatusRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		statuses:   deps.StatusRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket validates and stores a new ticket and returns its id.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, draft domain.TicketDraft) (int64, error) {
	if err := validateDraft(draft); err != nil {
		return 0, err
	}

	departmentID, _ := draft.DepartmentID.Get()
	categoryID, _ := draft.CategoryID.Get()
	statusID, _ := draft.StatusID.Get()
	ticket := &domain.Ticket{
		DepartmentID:  departmentID,
		CategoryID:    categoryID,
		StatusID:      statusID,
		SubcategoryID: draft.SubcategoryID.Ptr(),
		UserID:        draft.UserID.Ptr(),
		AssetID:       draft.AssetID.Ptr(),
		PcPartID:      draft.PcPartID.Ptr(),
		TechnicianID:  draft.TechnicianID.Ptr(),
		Description:   draft.Description.Ptr(),
		CreatedAt:     s.now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return 0, apperrors.MapError(err)
	}

	s.logger.Info("ticket created", zap.Int64("ticket_id", ticket.ID), zap.Int64("actor_id", actorID(actor)))
	s.publishEvent(ctx, events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		CreatorID:    ticket.UserID,
		TechnicianID: ticket.TechnicianID,
	})
	return ticket.ID, nil
}

// UpdateTicket applies a partial update. Allowed for admins, maintenance, and the ticket's creator.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID int64, patch domain.TicketPatch) error {
	if err := validatePatch(patch); err != nil {
		return err
	}
	current, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !canEditTicket(actor, current) {
		return apperrors.NewForbidden("not allowed to update this ticket")
	}
	return s.applyPatch(ctx, actor, current, patch)
}

// ListTickets returns denormalized tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketView, error) {
	views, err := s.tickets.ListViews(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

// GetTicket returns one denormalized ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.TicketView, error) {
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	return view, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	return ticket, nil
}

// applyPatch writes patch over current and publishes the resulting status and technician changes.
func (s *TicketService) applyPatch(ctx context.Context, actor *domain.User, current *domain.Ticket, patch domain.TicketPatch) error {
	if err := s.tickets.Update(ctx, current.ID, patch, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": current.ID})
		}
		return apperrors.MapError(err)
	}
	updated := patch.ApplyTo(*current)

	s.logger.Info("ticket updated", zap.Int64("ticket_id", current.ID), zap.Int64("actor_id", actorID(actor)))

	if patch.StatusID.IsSet() && updated.StatusID != current.StatusID {
		s.publishEvent(ctx, events.EventTicketStatusChanged, current.ID, actor, events.TicketStatusChangedPayload{
			CreatorID:   updated.UserID,
			OldStatusID: current.StatusID,
			NewStatusID: updated.StatusID,
		})
	}
	if patch.TechnicianID.IsSet() && !domain.SameID(current.TechnicianID, updated.TechnicianID) {
		s.publishEvent(ctx, events.EventTicketTechnicianChanged, current.ID, actor, events.TicketTechnicianChangedPayload{
			PreviousTechnicianID: current.TechnicianID,
			CurrentTechnicianID:  updated.TechnicianID,
		})
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, eventType events.EventType, ticketID int64, actor *domain.User, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, ticketID, toActor(actor), s.now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func canEditTicket(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil {
		return false
	}
	if actor.HasRole(domain.RoleAdmin, domain.RoleMaintenance) {
		return true
	}
	return ticket.UserID != nil && *ticket.UserID == actor.ID
}

func toActor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Name: user.Name}
}

func actorID(user *domain.User) int64 {
	if user == nil {
		return 0
	}
	return user.ID
}

func validateDraft(d domain.TicketDraft) error {
	required := []struct {
		name  string
		value domain.Optional[int64]
	}{
		{"department_id", d.DepartmentID},
		{"category_id", d.CategoryID},
		{"status_id", d.StatusID},
	}
	for _, f := range required {
		if _, ok := f.value.Get(); !ok {
			return apperrors.NewMissingField(f.name)
		}
	}
	return validateIDs(map[string]domain.Optional[int64]{
		"department_id":  d.DepartmentID,
		"category_id":    d.CategoryID,
		"status_id":      d.StatusID,
		"subcategory_id": d.SubcategoryID,
		"user_id":        d.UserID,
		"asset_id":       d.AssetID,
		"pc_part_id":     d.PcPartID,
		"technician_id":  d.TechnicianID,
	})
}

func validatePatch(p domain.TicketPatch) error {
	required := []struct {
		name  string
		value domain.Optional[int64]
	}{
		{"department_id", p.DepartmentID},
		{"category_id", p.CategoryID},
		{"status_id", p.StatusID},
	}
	for _, f := range required {
		if f.value.IsNull() {
			return apperrors.NewMissingField(f.name)
		}
	}
	return validateIDs(map[string]domain.Optional[int64]{
		"department_id":  p.DepartmentID,
		"category_id":    p.CategoryID,
		"status_id":      p.StatusID,
		"subcategory_id": p.SubcategoryID,
		"user_id":        p.UserID,
		"asset_id":       p.AssetID,
		"pc_part_id":     p.PcPartID,
		"technician_id":  p.TechnicianID,
	})
}

// validateIDs checks field order deterministically so the reported field is stable.
func validateIDs(fields map[string]domain.Optional[int64]) error {
	for _, name := range ticketIDFields {
		f, ok := fields[name]
		if !ok {
			continue
		}
		if v, present := f.Get(); present && v <= 0 {
			return apperrors.NewInvalidField(name, "must be a positive integer")
		}
	}
	return nil
}

var ticketIDFields = []string{
	"department_id",
	"category_id",
	"status_id",
	"subcategory_id",
	"user_id",
	"asset_id",
	"pc_part_id",
	"technician_id",
}
