package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/api/dto"
	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/service"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// SpiritualEventsHandler exposes endpoints for spiritual events.
type SpiritualEventsHandler struct {
	content *service.ContentService
}

// NewSpiritualEventsHandler constructs the handler.
func NewSpiritualEventsHandler(contentService *service.ContentService) *SpiritualEventsHandler {
	return &SpiritualEventsHandler{content: contentService}
}

// Create POST /v1/spiritual-events. Admin only, multipart form.
func (h *SpiritualEventsHandler) Create(c *fiber.Ctx) error {
	title := c.FormValue("eventTitle")
	shortDescription := c.FormValue("shortDescription")
	longDescription := c.FormValue("longDescription")
	if title == "" || shortDescription == "" || longDescription == "" {
		return apperrors.NewValidationError("eventTitle, shortDescription, longDescription required", nil)
	}

	eventDate, err := parseFormTime(c.FormValue("eventDate"))
	if err != nil {
		return err
	}

	mainImage, closeMain, err := singleFormFile(c, "mainImage")
	if err != nil {
		return err
	}
	if mainImage == nil {
		return apperrors.NewValidationError("mainImage required", nil)
	}
	defer closeMain()

	additional, closeAdditional, err := multiFormFiles(c, "additionalImages")
	if err != nil {
		return err
	}
	defer closeAdditional()

	event, err := h.content.CreateSpiritualEvent(c.Context(), service.SpiritualEventCreateInput{
		Title:            title,
		ShortDescription: shortDescription,
		LongDescription:  longDescription,
		EventDate:        eventDate,
		MainImage:        mainImage,
		AdditionalImages: additional,
		Videos:           formValues(c, "videos"),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.spiritualEventResponse(c, event)})
}

// List GET /v1/spiritual-events. Public.
func (h *SpiritualEventsHandler) List(c *fiber.Ctx) error {
	items, total, err := h.content.ListSpiritualEvents(c.Context())
	if err != nil {
		return err
	}
	resp := dto.SpiritualEventListResponse{Total: total, Items: make([]dto.SpiritualEventResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, h.spiritualEventResponse(c, &items[i]))
	}
	return c.JSON(resp)
}

// Get GET /v1/spiritual-events/:id. Public.
func (h *SpiritualEventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.content.GetSpiritualEvent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.spiritualEventResponse(c, event)})
}

// Update PUT /v1/spiritual-events/:id. Admin only; every form field optional.
func (h *SpiritualEventsHandler) Update(c *fiber.Ctx) error {
	input := service.SpiritualEventUpdateInput{}
	if v := c.FormValue("eventTitle"); v != "" {
		input.Title = &v
	}
	if v := c.FormValue("shortDescription"); v != "" {
		input.ShortDescription = &v
	}
	if v := c.FormValue("longDescription"); v != "" {
		input.LongDescription = &v
	}
	if v := c.FormValue("eventDate"); v != "" {
		eventDate, err := parseFormTime(v)
		if err != nil {
			return err
		}
		input.EventDate = &eventDate
	}
	input.Videos = formValues(c, "videos")

	mainImage, closeMain, err := singleFormFile(c, "mainImage")
	if err != nil {
		return err
	}
	defer closeMain()
	input.MainImage = mainImage

	additional, closeAdditional, err := multiFormFiles(c, "additionalImages")
	if err != nil {
		return err
	}
	defer closeAdditional()
	input.AdditionalImages = additional

	event, err := h.content.UpdateSpiritualEvent(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.spiritualEventResponse(c, event)})
}

// Delete DELETE /v1/spiritual-events/:id. Admin only.
func (h *SpiritualEventsHandler) Delete(c *fiber.Ctx) error {
	if err := h.content.DeleteSpiritualEvent(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "spiritual event deleted successfully"})
}

func (h *SpiritualEventsHandler) spiritualEventResponse(c *fiber.Ctx, event *domain.SpiritualEvent) dto.SpiritualEventResponse {
	additional := make([]string, 0, len(event.AdditionalImageKeys))
	for _, key := range event.AdditionalImageKeys {
		additional = append(additional, h.content.PresignedURL(c.Context(), key))
	}
	return dto.SpiritualEventResponse{
		ID:               event.ID,
		Title:            event.Title,
		ShortDescription: event.ShortDescription,
		LongDescription:  event.LongDescription,
		EventDate:        event.EventDate,
		MainImage:        h.content.PresignedURL(c.Context(), event.MainImageKey),
		AdditionalImages: additional,
		Videos:           event.Videos,
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
}
