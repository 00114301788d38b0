package dto

import (
	"time"

	"github.com/campus-mts/mts/internal/domain"
)

// BroadcastRequest is the POST /notifications/broadcast body.
type BroadcastRequest struct {
	TicketID int64  `json:"ticket_id"`
	Message  string `json:"message"`
}

// NotificationResponse is one inbox row.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TicketID  *int64    `json:"ticket_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCountResponse is returned by the unread-count endpoint.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many rows changed.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		TicketID:  n.TicketID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NewNotificationResponses maps a list; the result is never nil.
func NewNotificationResponses(rows []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(rows))
	for _, n := range rows {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}

// ToDomain converts a response back into the domain type. Used by the feed client.
func (r NotificationResponse) ToDomain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		TicketID:  r.TicketID,
		Message:   r.Message,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}
