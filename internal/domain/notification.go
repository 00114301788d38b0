package domain

import (
	"fmt"
	"strings"
	"time"
)

// Notification is an inbox row for one recipient.
type Notification struct {
	ID        int64
	UserID    int64
	TicketID  *int64
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// Notification message templates.
func TicketCreatedMessage(ticketID int64) string {
	return fmt.Sprintf("Your ticket #%d has been created.", ticketID)
}

func NewTicketMessage(ticketID int64) string {
	return fmt.Sprintf("New ticket #%d has been created.", ticketID)
}

func AssignedMessage(ticketID int64) string {
	return fmt.Sprintf("You have been assigned to ticket #%d.", ticketID)
}

func UnassignedMessage(ticketID int64) string {
	return fmt.Sprintf("You have been unassigned from ticket #%d.", ticketID)
}

func StatusChangedMessage(ticketID int64, status string) string {
	return fmt.Sprintf("Your ticket #%d is now %s.", ticketID, status)
}

// BroadcastMessage names the actor and the ticket's current status. note is optional.
func BroadcastMessage(ticketID int64, status, actor, note string) string {
	msg := fmt.Sprintf("Ticket #%d is now %s (updated by %s)", ticketID, status, actor)
	if note = strings.TrimSpace(note); note != "" {
		msg += ": " + note
	}
	return msg
}
