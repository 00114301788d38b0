package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/repository"
	"github.com/campus-mts/mts/internal/service"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	draft, err := dto.ParseTicketDraft(c.Body())
	if err != nil {
		return err
	}
	id, err := h.service.CreateTicket(c.UserContext(), user, draft)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResponse{TicketID: id})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	patch, err := dto.ParseTicketPatch(c.Body())
	if err != nil {
		return err
	}
	if err := h.service.UpdateTicket(c.UserContext(), user, id, patch); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "ticket updated"})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var (
		filter repository.TicketFilter
		err    error
	)
	if filter.UserID, err = optionalIDQuery(c, "user_id"); err != nil {
		return err
	}
	if filter.TechnicianID, err = optionalIDQuery(c, "technician_id"); err != nil {
		return err
	}
	if filter.DepartmentID, err = optionalIDQuery(c, "department_id"); err != nil {
		return err
	}
	if filter.StatusID, err = optionalIDQuery(c, "status_id"); err != nil {
		return err
	}
	views, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponses(views))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(*view))
}

// RequestApproval POST /tickets/:id/request-approval.
func (h *TicketsHandler) RequestApproval(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.RequestApproval(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "approval requested"})
}

// Approve POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	return h.resolve(c, true)
}

// Reject POST /tickets/:id/reject.
func (h *TicketsHandler) Reject(c *fiber.Ctx) error {
	return h.resolve(c, false)
}

func (h *TicketsHandler) resolve(c *fiber.Ctx, approved bool) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.ResolveApproval(c.UserContext(), user, id, approved); err != nil {
		return err
	}
	msg := "ticket rejected"
	if approved {
		msg = "ticket approved"
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}
