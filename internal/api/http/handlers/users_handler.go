package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/manocorp/account-service/internal/api/dto"
	"github.com/manocorp/account-service/internal/service"
)

// UsersHandler exposes account lifecycle endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /user.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), req.Username, req.Email)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Get handles GET /user/:username.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// List handles GET /users/:page.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Params("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	users, err := h.users.List(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}

// Update handles PUT /user.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), req.ID, req.Username, req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Delete handles DELETE /user/:username.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	user, err := h.users.Delete(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}
