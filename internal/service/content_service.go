package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/persistence"
	"github.com/seva-foundation/darshan-service/internal/repository"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// FileUpload carries an inbound file for the blob store.
type FileUpload struct {
	Body        io.Reader
	FileName    string
	ContentType string
}

// ContentService manages the public-site content: events, spiritual events
// and team members. Images live in the blob store; an update uploads the
// replacement first and deletes the old blob only after the row is saved, so
// a crash in between leaks a blob rather than corrupting the record.
type ContentService struct {
	events          repository.EventRepository
	spiritualEvents repository.SpiritualEventRepository
	team            repository.TeamMemberRepository
	blobs           persistence.BlobStore
	logger          *zap.Logger
}

// ContentDependencies bundles collaborators for the content service.
type ContentDependencies struct {
	EventRepo          repository.EventRepository
	SpiritualEventRepo repository.SpiritualEventRepository
	TeamMemberRepo     repository.TeamMemberRepository
	Blobs              persistence.BlobStore
	Logger             *zap.Logger
}

// NewContentService constructs the service.
func NewContentService(deps ContentDependencies) *ContentService {
	return &ContentService{
		events:          deps.EventRepo,
		spiritualEvents: deps.SpiritualEventRepo,
		team:            deps.TeamMemberRepo,
		blobs:           deps.Blobs,
		logger:          deps.Logger,
	}
}

// EventCreateInput describes a new event.
type EventCreateInput struct {
	Title            string
	ShortDescription string
	LongDescription  string
	EventType        domain.EventType
	EventDate        time.Time
	MainImage        *FileUpload
	AdditionalImages []FileUpload
	Videos           []string
}

// EventUpdateInput carries the optional fields of a partial update. Nil
// means "leave unchanged".
type EventUpdateInput struct {
	Title            *string
	ShortDescription *string
	LongDescription  *string
	EventType        *domain.EventType
	EventDate        *time.Time
	MainImage        *FileUpload
	AdditionalImages []FileUpload
	Videos           []string
}

// CreateEvent uploads images and persists the event.
func (s *ContentService) CreateEvent(ctx context.Context, input EventCreateInput) (*domain.Event, error) {
	if !input.EventType.IsValid() {
		return nil, apperrors.NewValidationError("unknown event type", map[string]any{"eventType": input.EventType})
	}
	if input.MainImage == nil {
		return nil, apperrors.NewValidationError("main image required", nil)
	}

	pathHint := "events/" + strings.ToLower(string(input.EventType))
	mainKey, err := s.blobs.Upload(ctx, input.MainImage.Body, pathHint, input.MainImage.FileName, input.MainImage.ContentType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	additionalKeys, err := s.uploadAll(ctx, pathHint+"/images", input.AdditionalImages)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	event := &domain.Event{
		Title:               strings.TrimSpace(input.Title),
		ShortDescription:    strings.TrimSpace(input.ShortDescription),
		LongDescription:     input.LongDescription,
		EventType:           input.EventType,
		EventDate:           input.EventDate,
		MainImageKey:        mainKey,
		AdditionalImageKeys: additionalKeys,
		Videos:              input.Videos,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

// UpdateEvent merges supplied fields into the stored event.
func (s *ContentService) UpdateEvent(ctx context.Context, id string, input EventUpdateInput) (*domain.Event, error) {
	if invalidID(id) {
		return nil, apperrors.NewNotFound("event", nil)
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if input.Title != nil {
		event.Title = strings.TrimSpace(*input.Title)
	}
	if input.ShortDescription != nil {
		event.ShortDescription = strings.TrimSpace(*input.ShortDescription)
	}
	if input.LongDescription != nil {
		event.LongDescription = *input.LongDescription
	}
	if input.EventType != nil {
		if !input.EventType.IsValid() {
			return nil, apperrors.NewValidationError("unknown event type", map[string]any{"eventType": *input.EventType})
		}
		event.EventType = *input.EventType
	}
	if input.EventDate != nil {
		event.EventDate = *input.EventDate
	}
	if input.Videos != nil {
		event.Videos = input.Videos
	}

	pathHint := "events/" + strings.ToLower(string(event.EventType))
	oldBlobs := []string{}

	if input.MainImage != nil {
		key, err := s.blobs.Upload(ctx, input.MainImage.Body, pathHint, input.MainImage.FileName, input.MainImage.ContentType)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		oldBlobs = append(oldBlobs, event.MainImageKey)
		event.MainImageKey = key
	}
	if len(input.AdditionalImages) > 0 {
		keys, err := s.uploadAll(ctx, pathHint+"/images", input.AdditionalImages)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		oldBlobs = append(oldBlobs, event.AdditionalImageKeys...)
		event.AdditionalImageKeys = keys
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.deleteBlobs(ctx, oldBlobs)
	return event, nil
}

// GetEvent fetches a single event.
func (s *ContentService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if invalidID(id) {
		return nil, apperrors.NewNotFound("event", nil)
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

// ListEvents returns events with an optional type filter.
func (s *ContentService) ListEvents(ctx context.Context, eventType *domain.EventType) ([]domain.Event, int64, error) {
	total, err := s.events.Count(ctx, eventType)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	items, err := s.events.List(ctx, eventType)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// DeleteEvent removes the row, then its blobs.
func (s *ContentService) DeleteEvent(ctx context.Context, id string) error {
	if invalidID(id) {
		return apperrors.NewNotFound("event", nil)
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("event", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.deleteBlobs(ctx, append([]string{event.MainImageKey}, event.AdditionalImageKeys...))
	return nil
}

// SpiritualEventCreateInput describes a new spiritual event.
type SpiritualEventCreateInput struct {
	Title            string
	ShortDescription string
	LongDescription  string
	EventDate        time.Time
	MainImage        *FileUpload
	AdditionalImages []FileUpload
	Videos           []string
}

// CreateSpiritualEvent uploads images and persists the event.
func (s *ContentService) CreateSpiritualEvent(ctx context.Context, input SpiritualEventCreateInput) (*domain.SpiritualEvent, error) {
	if input.MainImage == nil {
		return nil, apperrors.NewValidationError("main image required", nil)
	}

	mainKey, err := s.blobs.Upload(ctx, input.MainImage.Body, "spiritual_events", input.MainImage.FileName, input.MainImage.ContentType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	additionalKeys, err := s.uploadAll(ctx, "spiritual_events/images", input.AdditionalImages)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	event := &domain.SpiritualEvent{
		Title:               strings.TrimSpace(input.Title),
		ShortDescription:    strings.TrimSpace(input.ShortDescription),
		LongDescription:     input.LongDescription,
		EventDate:           input.EventDate,
		MainImageKey:        mainKey,
		AdditionalImageKeys: additionalKeys,
		Videos:              input.Videos,
	}
	if err := s.spiritualEvents.Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

// SpiritualEventUpdateInput carries the optional fields of a partial update.
// Nil means "leave unchanged".
type SpiritualEventUpdateInput struct {
	Title            *string
	ShortDescription *string
	LongDescription  *string
	EventDate        *time.Time
	MainImage        *FileUpload
	AdditionalImages []FileUpload
	Videos           []string
}

// UpdateSpiritualEvent merges supplied fields into the stored event.
func (s *ContentService) UpdateSpiritualEvent(ctx context.Context, id string, input SpiritualEventUpdateInput) (*domain.SpiritualEvent, error) {
	if invalidID(id) {
		return nil, apperrors.NewNotFound("spiritual event", nil)
	}
	event, err := s.spiritualEvents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("spiritual event", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if input.Title != nil {
		event.Title = strings.TrimSpace(*input.Title)
	}
	if input.ShortDescription != nil {
		event.ShortDescription = strings.TrimSpace(*input.ShortDescription)
	}
	if input.LongDescription != nil {
		event.LongDescription = *input.LongDescription
	}
	if input.EventDate != nil {
		event.EventDate = *input.EventDate
	}
	if input.Videos != nil {
		event.Videos = input.Videos
	}

	oldBlobs := []string{}

	if input.MainImage != nil {
		key, err := s.blobs.Upload(ctx, input.MainImage.Body, "spiritual_events", input.MainImage.FileName, input.MainImage.ContentType)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		oldBlobs = append(oldBlobs, event.MainImageKey)
		event.MainImageKey = key
	}
	if len(input.AdditionalImages) > 0 {
		keys, err := s.uploadAll(ctx, "spiritual_events/images", input.AdditionalImages)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		oldBlobs = append(oldBlobs, event.AdditionalImageKeys...)
		event.AdditionalImageKeys = keys
	}

	if err := s.spiritualEvents.Update(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.deleteBlobs(ctx, oldBlobs)
	return event, nil
}

// GetSpiritualEvent fetches a single spiritual event.
func (s *ContentService) GetSpiritualEvent(ctx context.Context, id string) (*domain.SpiritualEvent, error) {
	if invalidID(id) {
		return nil, apperrors.NewNotFound("spiritual event", nil)
	}
	event, err := s.spiritualEvents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("spiritual event", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

// ListSpiritualEvents returns all spiritual events.
func (s *ContentService) ListSpiritualEvents(ctx context.Context) ([]domain.SpiritualEvent, int64, error) {
	total, err := s.spiritualEvents.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	items, err := s.spiritualEvents.List(ctx)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// DeleteSpiritualEvent removes the row, then its blobs.
func (s *ContentService) DeleteSpiritualEvent(ctx context.Context, id string) error {
	if invalidID(id) {
		return apperrors.NewNotFound("spiritual event", nil)
	}
	event, err := s.spiritualEvents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("spiritual event", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.spiritualEvents.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.deleteBlobs(ctx, append([]string{event.MainImageKey}, event.AdditionalImageKeys...))
	return nil
}

// TeamMemberCreateInput describes a new team member.
type TeamMemberCreateInput struct {
	Name        string
	Role        string
	Description string
	Image       *FileUpload
}

// TeamMemberUpdateInput carries optional fields of a partial update.
type TeamMemberUpdateInput struct {
	Name        *string
	Role        *string
	Description *string
	Image       *FileUpload
}

// CreateTeamMember uploads the profile image and persists the member.
func (s *ContentService) CreateTeamMember(ctx context.Context, input TeamMemberCreateInput) (*domain.TeamMember, error) {
	if input.Image == nil {
		return nil, apperrors.NewValidationError("image required", nil)
	}

	key, err := s.blobs.Upload(ctx, input.Image.Body, "team", input.Image.FileName, input.Image.ContentType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	member := &domain.TeamMember{
		Name:        strings.TrimSpace(input.Name),
		Role:        strings.TrimSpace(input.Role),
		Description: input.Description,
		ImageKey:    key,
	}
	if err := s.team.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// UpdateTeamMember merges supplied fields into the stored member.
func (s *ContentService) UpdateTeamMember(ctx context.Context, id string, input TeamMemberUpdateInput) (*domain.TeamMember, error) {
	if invalidID(id) {
		return nil, apperrors.NewNotFound("team member", nil)
	}
	member, err := s.team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team member", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if input.Name != nil {
		member.Name = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil {
		member.Role = strings.TrimSpace(*input.Role)
	}
	if input.Description != nil {
		member.Description = *input.Description
	}

	oldKey := ""
	if input.Image != nil {
		key, err := s.blobs.Upload(ctx, input.Image.Body, "team", input.Image.FileName, input.Image.ContentType)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		oldKey = member.ImageKey
		member.ImageKey = key
	}

	if err := s.team.Update(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	if oldKey != "" {
		s.deleteBlobs(ctx, []string{oldKey})
	}
	return member, nil
}

// GetTeamMember fetches a single team member.
func (s *ContentService) GetTeamMember(ctx context.Context, id string) (*domain.TeamMember, error) {
	if invalidID(id) {
		return nil, apperrors.NewNotFound("team member", nil)
	}
	member, err := s.team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team member", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// ListTeamMembers returns all team members.
func (s *ContentService) ListTeamMembers(ctx context.Context) ([]domain.TeamMember, int64, error) {
	total, err := s.team.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	items, err := s.team.List(ctx)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// DeleteTeamMember removes the row, then its blob.
func (s *ContentService) DeleteTeamMember(ctx context.Context, id string) error {
	if invalidID(id) {
		return apperrors.NewNotFound("team member", nil)
	}
	member, err := s.team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team member", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.team.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.deleteBlobs(ctx, []string{member.ImageKey})
	return nil
}

// PresignedURL resolves a blob key to a read URL for responses.
func (s *ContentService) PresignedURL(ctx context.Context, key string) string {
	url, err := s.blobs.PresignedURL(ctx, key)
	if err != nil {
		s.logger.Warn("presign failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func (s *ContentService) uploadAll(ctx context.Context, pathHint string, uploads []FileUpload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		key, err := s.blobs.Upload(ctx, upload.Body, pathHint, upload.FileName, upload.ContentType)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *ContentService) deleteBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("blob delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}
