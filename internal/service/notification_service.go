package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/events"
	"github.com/campus-mts/mts/internal/observability"
	"github.com/campus-mts/mts/internal/repository"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// NotificationService writes inbox rows for ticket events and serves the inbox API.
// Inserts triggered by events are best-effort: failures are logged and counted, never returned to the ticket caller.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	tickets       repository.TicketRepository
	statuses      repository.StatusRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NotificationDependencies bundles notification service collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	TicketRepo       repository.TicketRepository
	StatusRepo       repository.StatusRepository
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		tickets:       deps.TicketRepo,
		statuses:      deps.StatusRepo,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketTechnicianChanged, n.handleTicketTechnicianChanged)
}

// Notify inserts one notification row.
func (n *NotificationService) Notify(ctx context.Context, recipientID int64, ticketID *int64, message string) (*domain.Notification, error) {
	row := &domain.Notification{UserID: recipientID, TicketID: ticketID, Message: message}
	if err := n.notifications.Create(ctx, row); err != nil {
		n.metrics.RecordNotification(false)
		fields := []zap.Field{zap.Int64("recipient_id", recipientID), zap.Error(err)}
		if ticketID != nil {
			fields = append(fields, zap.Int64("ticket_id", *ticketID))
		}
		n.logger.Error("notification insert failed", fields...)
		return nil, err
	}
	n.metrics.RecordNotification(true)
	return row, nil
}

// handleTicketCreated notifies the creator, the pre-assigned technician, and every admin.
// A user matching more than one rule gets only the first message.
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	ticketID := event.TicketID

	type delivery struct {
		recipient int64
		message   string
	}
	var deliveries []delivery
	if payload.CreatorID != nil {
		deliveries = append(deliveries, delivery{*payload.CreatorID, domain.TicketCreatedMessage(ticketID)})
	}
	if payload.TechnicianID != nil {
		deliveries = append(deliveries, delivery{*payload.TechnicianID, domain.AssignedMessage(ticketID)})
	}
	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		n.logger.Error("list admins failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
	}
	for _, admin := range admins {
		deliveries = append(deliveries, delivery{admin.ID, domain.NewTicketMessage(ticketID)})
	}

	seen := make(map[int64]struct{}, len(deliveries))
	for _, d := range deliveries {
		if _, dup := seen[d.recipient]; dup {
			continue
		}
		seen[d.recipient] = struct{}{}
		_, _ = n.Notify(ctx, d.recipient, &ticketID, d.message)
	}
	return nil
}

// handleTicketStatusChanged notifies the ticket's creator only.
func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.CreatorID == nil {
		return nil
	}
	statusName := fmt.Sprintf("status #%d", payload.NewStatusID)
	if status, err := n.statuses.GetByID(ctx, payload.NewStatusID); err == nil {
		statusName = status.Name
	} else {
		n.logger.Warn("status lookup failed", zap.Int64("status_id", payload.NewStatusID), zap.Error(err))
	}
	ticketID := event.TicketID
	_, _ = n.Notify(ctx, *payload.CreatorID, &ticketID, domain.StatusChangedMessage(ticketID, statusName))
	return nil
}

// handleTicketTechnicianChanged tells the previous technician they were unassigned and the new one they were assigned.
func (n *NotificationService) handleTicketTechnicianChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketTechnicianChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	ticketID := event.TicketID
	if payload.PreviousTechnicianID != nil {
		_, _ = n.Notify(ctx, *payload.PreviousTechnicianID, &ticketID, domain.UnassignedMessage(ticketID))
	}
	if payload.CurrentTechnicianID != nil {
		_, _ = n.Notify(ctx, *payload.CurrentTechnicianID, &ticketID, domain.AssignedMessage(ticketID))
	}
	return nil
}

// Broadcast tells a ticket's creator about its current status on behalf of actor.
// It returns nil without error when the ticket has no creator.
func (n *NotificationService) Broadcast(ctx context.Context, actor *domain.User, ticketID int64, note string) (*domain.Notification, error) {
	if ticketID <= 0 {
		return nil, apperrors.NewInvalidField("ticket_id", "must be a positive integer")
	}
	view, err := n.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	if view.UserID == nil {
		return nil, nil
	}
	actorName := "system"
	if actor != nil {
		actorName = actor.Name
	}
	row, err := n.Notify(ctx, *view.UserID, &ticketID, domain.BroadcastMessage(ticketID, view.StatusName, actorName, note))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return row, nil
}

// ListForUser returns a user's notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := n.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// MarkRead marks one notification read. Only its recipient may do so.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, notificationID int64) error {
	row, err := n.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return notFoundOr(err, "notification", notificationID)
	}
	if actor == nil || row.UserID != actor.ID {
		return apperrors.NewForbidden("notification belongs to another user")
	}
	if err := n.notifications.MarkRead(ctx, notificationID); err != nil {
		return notFoundOr(err, "notification", notificationID)
	}
	return nil
}

// MarkAllRead marks every unread notification of userID and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	count, err := n.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// UnreadCount returns how many notifications of userID are unread.
func (n *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	count, err := n.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}
