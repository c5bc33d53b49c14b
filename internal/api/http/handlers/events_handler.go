package handlers

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/api/dto"
	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/service"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// EventsHandler exposes CRUD endpoints for foundation events.
type EventsHandler struct {
	content *service.ContentService
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(contentService *service.ContentService) *EventsHandler {
	return &EventsHandler{content: contentService}
}

// Create POST /v1/events. Admin only, multipart form.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	title := c.FormValue("eventTitle")
	shortDescription := c.FormValue("shortDescription")
	longDescription := c.FormValue("longDescription")
	eventType := domain.EventType(c.FormValue("eventType"))
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

	event, err := h.content.CreateEvent(c.Context(), service.EventCreateInput{
		Title:            title,
		ShortDescription: shortDescription,
		LongDescription:  longDescription,
		EventType:        eventType,
		EventDate:        eventDate,
		MainImage:        mainImage,
		AdditionalImages: additional,
		Videos:           formValues(c, "videos"),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.eventResponse(c, event)})
}

// List GET /v1/events. Public, optional eventType filter.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	var eventType *domain.EventType
	if raw := c.Query("eventType"); raw != "" {
		t := domain.EventType(raw)
		if !t.IsValid() {
			return apperrors.NewValidationError("unknown event type", map[string]any{"eventType": raw})
		}
		eventType = &t
	}

	items, total, err := h.content.ListEvents(c.Context(), eventType)
	if err != nil {
		return err
	}
	resp := dto.EventListResponse{Total: total, Items: make([]dto.EventResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, h.eventResponse(c, &items[i]))
	}
	return c.JSON(resp)
}

// Get GET /v1/events/:id. Public.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.content.GetEvent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.eventResponse(c, event)})
}

// Update PUT /v1/events/:id. Admin only, partial multipart form.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	input := service.EventUpdateInput{}
	if v := c.FormValue("eventTitle"); v != "" {
		input.Title = &v
	}
	if v := c.FormValue("shortDescription"); v != "" {
		input.ShortDescription = &v
	}
	if v := c.FormValue("longDescription"); v != "" {
		input.LongDescription = &v
	}
	if v := c.FormValue("eventType"); v != "" {
		t := domain.EventType(v)
		input.EventType = &t
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

	event, err := h.content.UpdateEvent(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.eventResponse(c, event)})
}

// Delete DELETE /v1/events/:id. Admin only.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	if err := h.content.DeleteEvent(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "event deleted successfully"})
}

func (h *EventsHandler) eventResponse(c *fiber.Ctx, event *domain.Event) dto.EventResponse {
	additional := make([]string, 0, len(event.AdditionalImageKeys))
	for _, key := range event.AdditionalImageKeys {
		additional = append(additional, h.content.PresignedURL(c.Context(), key))
	}
	return dto.EventResponse{
		ID:               event.ID,
		Title:            event.Title,
		ShortDescription: event.ShortDescription,
		LongDescription:  event.LongDescription,
		EventType:        event.EventType,
		EventDate:        event.EventDate,
		MainImage:        h.content.PresignedURL(c.Context(), event.MainImageKey),
		AdditionalImages: additional,
		Videos:           event.Videos,
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
}

func parseFormTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError("eventDate required", nil)
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("eventDate must be RFC3339", map[string]any{"eventDate": raw})
	}
	return parsed, nil
}

func formValues(c *fiber.Ctx, field string) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.Value[field]
}

// singleFormFile returns the upload for a form field, or nil when absent.
func singleFormFile(c *fiber.Ctx, field string) (*service.FileUpload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		return nil, noop, nil
	}
	upload, closeFn, err := openUpload(header)
	if err != nil {
		return nil, noop, err
	}
	return upload, closeFn, nil
}

func multiFormFiles(c *fiber.Ctx, field string) ([]service.FileUpload, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, noop, nil
	}

	headers := form.File[field]
	uploads := make([]service.FileUpload, 0, len(headers))
	closers := make([]func(), 0, len(headers))
	closeAll := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}

	for _, header := range headers {
		upload, closeFn, err := openUpload(header)
		if err != nil {
			closeAll()
			return nil, noop, err
		}
		uploads = append(uploads, *upload)
		closers = append(closers, closeFn)
	}
	return uploads, closeAll, nil
}

func openUpload(header *multipart.FileHeader) (*service.FileUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("unreadable upload", map[string]any{"file": header.Filename})
	}
	return &service.FileUpload{
		Body:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, func() { _ = file.Close() }, nil
}
