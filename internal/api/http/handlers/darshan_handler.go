package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/api/dto"
	"github.com/seva-foundation/darshan-service/internal/auth"
	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/service"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// DarshanHandler exposes the darshan request workflow endpoints.
type DarshanHandler struct {
	service *service.DarshanService
}

// NewDarshanHandler constructs the handler.
func NewDarshanHandler(darshanService *service.DarshanService) *DarshanHandler {
	return &DarshanHandler{service: darshanService}
}

// Create POST /v1/darshan. Public.
func (h *DarshanHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDarshanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Address == "" || req.ReasonToVisit == "" || req.LeadID == "" {
		return apperrors.NewValidationError("name, address, reasonToVisit, leadId required", nil)
	}
	if !validPhoneNumber(req.PhoneNumber) {
		return apperrors.NewValidationError("phone number must be at least 10 digits", nil)
	}

	created, err := h.service.CreateRequest(c.Context(), service.DarshanCreateInput{
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		ReasonToVisit:  req.ReasonToVisit,
		NumberOfPeople: req.NumberOfPeople,
		LeadID:         req.LeadID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": darshanResponse(created)})
}

// List GET /v1/darshan. Authenticated; scope depends on the caller's role.
func (h *DarshanHandler) List(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)

	status, err := parseStatusQuery(c.Query("status"))
	if err != nil {
		return err
	}
	limit, offset := parsePage(c)

	result, err := h.service.ListForCaller(c.Context(), principal.UserID, principal.Role, status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(darshanListResponse(result))
}

// ListAccepted GET /v1/darshan/accepted. Public display of confirmed darshans.
func (h *DarshanHandler) ListAccepted(c *fiber.Ctx) error {
	limit, offset := parsePage(c)
	if c.Query("page") == "" && c.Query("page_size") == "" {
		limit, offset = 0, 0
	}
	result, err := h.service.ListApproved(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(darshanListResponse(result))
}

// Get GET /v1/darshan/:id. Authenticated; leads restricted to own assignments.
func (h *DarshanHandler) Get(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	req, err := h.service.GetForCaller(c.Context(), principal.UserID, principal.Role, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": darshanResponse(req)})
}

// LeadAction PUT /v1/darshan/:id/lead-action. Lead only, must own the request.
func (h *DarshanHandler) LeadAction(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)

	var req dto.LeadActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidationError("reason required", nil)
	}

	updated, err := h.service.LeadAction(c.Context(), principal.UserID, c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": darshanResponse(updated)})
}

// PAAction PUT /v1/darshan/:id/pa-action. PA only.
func (h *DarshanHandler) PAAction(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)

	var req dto.PAActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidationError("reason required", nil)
	}

	updated, err := h.service.PAAction(c.Context(), principal.UserID, c.Params("id"), req.Status, req.Reason, req.ScheduledDateTime, req.ScheduledLocation)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": darshanResponse(updated)})
}

// Delete DELETE /v1/darshan/:id. Admin only, any status.
func (h *DarshanHandler) Delete(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	if err := h.service.DeleteRequest(c.Context(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "darshan request deleted successfully"})
}

func parseStatusQuery(raw string) (*domain.DarshanStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := domain.DarshanStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
	}
	return &status, nil
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func validPhoneNumber(raw string) bool {
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}

func darshanResponse(req *domain.DarshanRequest) dto.DarshanResponse {
	return dto.DarshanResponse{
		ID:                req.ID,
		Name:              req.Name,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		ReasonToVisit:     req.ReasonToVisit,
		NumberOfPeople:    req.NumberOfPeople,
		Status:            req.Status,
		ScheduledDateTime: req.ScheduledDateTime,
		ScheduledLocation: req.ScheduledLocation,
		Reason:            req.Reason,
		LeadID:            req.LeadID,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}

func darshanListResponse(result *service.DarshanListResult) dto.DarshanListResponse {
	items := make([]dto.DarshanResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, darshanResponse(&result.Items[i]))
	}
	return dto.DarshanListResponse{Total: result.Total, Items: items}
}
