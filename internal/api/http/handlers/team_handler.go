package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/api/dto"
	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/service"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// TeamHandler exposes endpoints for team member profiles.
type TeamHandler struct {
	content *service.ContentService
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(contentService *service.ContentService) *TeamHandler {
	return &TeamHandler{content: contentService}
}

// Create POST /v1/team. Admin only, multipart form.
func (h *TeamHandler) Create(c *fiber.Ctx) error {
	name := c.FormValue("name")
	role := c.FormValue("role")
	if name == "" || role == "" {
		return apperrors.NewValidationError("name and role required", nil)
	}

	image, closeImage, err := singleFormFile(c, "image")
	if err != nil {
		return err
	}
	if image == nil {
		return apperrors.NewValidationError("image required", nil)
	}
	defer closeImage()

	member, err := h.content.CreateTeamMember(c.Context(), service.TeamMemberCreateInput{
		Name:        name,
		Role:        role,
		Description: c.FormValue("description"),
		Image:       image,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.teamMemberResponse(c, member)})
}

// List GET /v1/team. Public.
func (h *TeamHandler) List(c *fiber.Ctx) error {
	items, total, err := h.content.ListTeamMembers(c.Context())
	if err != nil {
		return err
	}
	resp := dto.TeamMemberListResponse{Total: total, Items: make([]dto.TeamMemberResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, h.teamMemberResponse(c, &items[i]))
	}
	return c.JSON(resp)
}

// Get GET /v1/team/:id. Public.
func (h *TeamHandler) Get(c *fiber.Ctx) error {
	member, err := h.content.GetTeamMember(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.teamMemberResponse(c, member)})
}

// Update PUT /v1/team/:id. Admin only, partial multipart form.
func (h *TeamHandler) Update(c *fiber.Ctx) error {
	input := service.TeamMemberUpdateInput{}
	if v := c.FormValue("name"); v != "" {
		input.Name = &v
	}
	if v := c.FormValue("role"); v != "" {
		input.Role = &v
	}
	if v := c.FormValue("description"); v != "" {
		input.Description = &v
	}

	image, closeImage, err := singleFormFile(c, "image")
	if err != nil {
		return err
	}
	defer closeImage()
	input.Image = image

	member, err := h.content.UpdateTeamMember(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.teamMemberResponse(c, member)})
}

// Delete DELETE /v1/team/:id. Admin only.
func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	if err := h.content.DeleteTeamMember(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "team member deleted successfully"})
}

func (h *TeamHandler) teamMemberResponse(c *fiber.Ctx, member *domain.TeamMember) dto.TeamMemberResponse {
	return dto.TeamMemberResponse{
		ID:          member.ID,
		Name:        member.Name,
		Role:        member.Role,
		Description: member.Description,
		Image:       h.content.PresignedURL(c.Context(), member.ImageKey),
		CreatedAt:   member.CreatedAt,
		UpdatedAt:   member.UpdatedAt,
	}
}
