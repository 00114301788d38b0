package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/service"
)

// UsersHandler exposes login and user management.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Name, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserResponse(*result.User),
	})
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(*user))
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), userInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(*user))
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), id, userInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(*user))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	requester, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), requester, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "user deleted"})
}

func userInput(req dto.UserRequest) service.UserInput {
	return service.UserInput{
		Name:       req.Name,
		Password:   req.Password,
		Department: req.Department,
		Role:       domain.Role(req.Role),
	}
}
