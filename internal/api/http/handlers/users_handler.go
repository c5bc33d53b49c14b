package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/api/dto"
	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/service"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// UsersHandler exposes identity directory endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register POST /v1/auth/register. Admin only.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.UserName == "" || req.Password == "" {
		return apperrors.NewValidationError("name, userName, password required", nil)
	}
	if !validPhoneNumber(req.PhoneNumber) {
		return apperrors.NewValidationError("phone number must be at least 10 digits", nil)
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:        req.Name,
		UserName:    req.UserName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// Login POST /v1/auth/login. Public.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserName == "" || req.Password == "" {
		return apperrors.NewValidationError("userName and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.UserName, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{
		UserID:      user.ID,
		AccessToken: token,
		Role:        user.Role,
		TokenType:   "bearer",
		ExpiresAt:   exp,
	})
}

// ListUsers GET /v1/auth/users. Admin only.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListLeads GET /v1/auth/leads. Public: feeds the request form's selector.
func (h *UsersHandler) ListLeads(c *fiber.Ctx) error {
	leads, err := h.auth.ListLeads(c.Context())
	if err != nil {
		return err
	}
	options := make([]dto.LeadOption, 0, len(leads))
	for _, lead := range leads {
		options = append(options, dto.LeadOption{ID: lead.ID, Name: lead.Name})
	}
	return c.JSON(options)
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		UserName:    user.UserName,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
