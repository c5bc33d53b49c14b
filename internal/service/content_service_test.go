package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

type fakeBlobStore struct {
	uploads int
	deleted []string
}

func (b *fakeBlobStore) Upload(_ context.Context, _ io.Reader, pathHint, fileName, _ string) (string, error) {
	b.uploads++
	return fmt.Sprintf("%s/%d-%s", pathHint, b.uploads, fileName), nil
}

func (b *fakeBlobStore) Delete(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBlobStore) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://blobs.test/" + key, nil
}

type fakeEventRepo struct {
	items map[string]domain.Event
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.items[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	if _, ok := r.items[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	event.UpdatedAt = time.Now()
	r.items[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	event, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := event
	return &copied, nil
}

func (r *fakeEventRepo) List(_ context.Context, eventType *domain.EventType) ([]domain.Event, error) {
	var out []domain.Event
	for _, event := range r.items {
		if eventType == nil || event.EventType == *eventType {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Count(ctx context.Context, eventType *domain.EventType) (int64, error) {
	items, _ := r.List(ctx, eventType)
	return int64(len(items)), nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeSpiritualRepo struct {
	items map[string]domain.SpiritualEvent
}

func (r *fakeSpiritualRepo) Create(_ context.Context, event *domain.SpiritualEvent) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.items[event.ID] = *event
	return nil
}

func (r *fakeSpiritualRepo) Update(_ context.Context, event *domain.SpiritualEvent) error {
	if _, ok := r.items[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	event.UpdatedAt = time.Now()
	r.items[event.ID] = *event
	return nil
}

func (r *fakeSpiritualRepo) GetByID(_ context.Context, id string) (*domain.SpiritualEvent, error) {
	event, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := event
	return &copied, nil
}

func (r *fakeSpiritualRepo) List(_ context.Context) ([]domain.SpiritualEvent, error) {
	var out []domain.SpiritualEvent
	for _, event := range r.items {
		out = append(out, event)
	}
	return out, nil
}

func (r *fakeSpiritualRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeSpiritualRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeTeamRepo struct {
	items map[string]domain.TeamMember
}

func (r *fakeTeamRepo) Create(_ context.Context, member *domain.TeamMember) error {
	member.ID = uuid.NewString()
	r.items[member.ID] = *member
	return nil
}

func (r *fakeTeamRepo) Update(_ context.Context, member *domain.TeamMember) error {
	if _, ok := r.items[member.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.items[member.ID] = *member
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.TeamMember, error) {
	member, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := member
	return &copied, nil
}

func (r *fakeTeamRepo) List(_ context.Context) ([]domain.TeamMember, error) {
	var out []domain.TeamMember
	for _, member := range r.items {
		out = append(out, member)
	}
	return out, nil
}

func (r *fakeTeamRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type contentFixture struct {
	service   *ContentService
	events    *fakeEventRepo
	spiritual *fakeSpiritualRepo
	team      *fakeTeamRepo
	blobs     *fakeBlobStore
}

func newContentFixture() *contentFixture {
	f := &contentFixture{
		events:    &fakeEventRepo{items: map[string]domain.Event{}},
		spiritual: &fakeSpiritualRepo{items: map[string]domain.SpiritualEvent{}},
		team:      &fakeTeamRepo{items: map[string]domain.TeamMember{}},
		blobs:     &fakeBlobStore{},
	}
	f.service = NewContentService(ContentDependencies{
		EventRepo:          f.events,
		SpiritualEventRepo: f.spiritual,
		TeamMemberRepo:     f.team,
		Blobs:              f.blobs,
		Logger:             zap.NewNop(),
	})
	return f
}

func upload(name string) *FileUpload {
	return &FileUpload{Body: strings.NewReader("fake image bytes"), FileName: name, ContentType: "image/jpeg"}
}

func TestCreateEvent(t *testing.T) {
	f := newContentFixture()

	event, err := f.service.CreateEvent(context.Background(), EventCreateInput{
		Title:            " Health Camp ",
		ShortDescription: "free checkups",
		LongDescription:  "annual health camp for the village",
		EventType:        domain.EventTypeHealth,
		EventDate:        time.Now().Add(72 * time.Hour),
		MainImage:        upload("banner.jpg"),
		AdditionalImages: []FileUpload{*upload("a.jpg"), *upload("b.jpg")},
		Videos:           []string{"https://videos.test/v1"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "Health Camp", event.Title)
	assert.True(t, strings.HasPrefix(event.MainImageKey, "events/health/"), "key %q", event.MainImageKey)
	assert.Len(t, event.AdditionalImageKeys, 2)
	assert.Equal(t, 3, f.blobs.uploads)
}

func TestCreateEventValidation(t *testing.T) {
	f := newContentFixture()

	_, err := f.service.CreateEvent(context.Background(), EventCreateInput{
		Title: "x", EventType: "PARTY", MainImage: upload("a.jpg"),
	})
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = f.service.CreateEvent(context.Background(), EventCreateInput{
		Title: "x", EventType: domain.EventTypeDonation,
	})
	assertDomainCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateEventReplacesMainImage(t *testing.T) {
	f := newContentFixture()
	event, err := f.service.CreateEvent(context.Background(), EventCreateInput{
		Title: "Camp", ShortDescription: "s", LongDescription: "l",
		EventType: domain.EventTypeEducation, EventDate: time.Now(),
		MainImage: upload("old.jpg"),
	})
	require.NoError(t, err)
	oldKey := event.MainImageKey

	newTitle := "Renamed Camp"
	updated, err := f.service.UpdateEvent(context.Background(), event.ID, EventUpdateInput{
		Title:     &newTitle,
		MainImage: upload("new.jpg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed Camp", updated.Title)
	assert.NotEqual(t, oldKey, updated.MainImageKey)
	assert.Contains(t, f.blobs.deleted, oldKey, "old blob should be deleted after the row is saved")
}

func TestUpdateEventPartialKeepsOtherFields(t *testing.T) {
	f := newContentFixture()
	event, err := f.service.CreateEvent(context.Background(), EventCreateInput{
		Title: "Camp", ShortDescription: "short", LongDescription: "long",
		EventType: domain.EventTypeTraining, EventDate: time.Now(),
		MainImage: upload("img.jpg"),
	})
	require.NoError(t, err)

	short := "updated short"
	updated, err := f.service.UpdateEvent(context.Background(), event.ID, EventUpdateInput{
		ShortDescription: &short,
	})
	require.NoError(t, err)

	assert.Equal(t, "updated short", updated.ShortDescription)
	assert.Equal(t, "Camp", updated.Title)
	assert.Equal(t, event.MainImageKey, updated.MainImageKey)
	assert.Empty(t, f.blobs.deleted)
}

func TestDeleteEventRemovesBlobs(t *testing.T) {
	f := newContentFixture()
	event, err := f.service.CreateEvent(context.Background(), EventCreateInput{
		Title: "Camp", ShortDescription: "s", LongDescription: "l",
		EventType: domain.EventTypeHealth, EventDate: time.Now(),
		MainImage:        upload("img.jpg"),
		AdditionalImages: []FileUpload{*upload("a.jpg")},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteEvent(context.Background(), event.ID))
	assert.Len(t, f.blobs.deleted, 2)

	err = f.service.DeleteEvent(context.Background(), event.ID)
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestListEventsByType(t *testing.T) {
	f := newContentFixture()
	for _, eventType := range []domain.EventType{domain.EventTypeHealth, domain.EventTypeHealth, domain.EventTypeDonation} {
		_, err := f.service.CreateEvent(context.Background(), EventCreateInput{
			Title: "Camp", ShortDescription: "s", LongDescription: "l",
			EventType: eventType, EventDate: time.Now(), MainImage: upload("img.jpg"),
		})
		require.NoError(t, err)
	}

	health := domain.EventTypeHealth
	items, total, err := f.service.ListEvents(context.Background(), &health)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestUpdateSpiritualEventReplacesMainImage(t *testing.T) {
	f := newContentFixture()
	event, err := f.service.CreateSpiritualEvent(context.Background(), SpiritualEventCreateInput{
		Title: "Guru Purnima", ShortDescription: "short", LongDescription: "long",
		EventDate: time.Now().Add(48 * time.Hour),
		MainImage: upload("old.jpg"),
	})
	require.NoError(t, err)
	oldKey := event.MainImageKey

	newTitle := " Guru Purnima Satsang "
	updated, err := f.service.UpdateSpiritualEvent(context.Background(), event.ID, SpiritualEventUpdateInput{
		Title:     &newTitle,
		MainImage: upload("new.jpg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Guru Purnima Satsang", updated.Title)
	assert.NotEqual(t, oldKey, updated.MainImageKey)
	assert.Contains(t, f.blobs.deleted, oldKey, "old blob should be deleted after the row is saved")
}

func TestUpdateSpiritualEventPartialKeepsOtherFields(t *testing.T) {
	f := newContentFixture()
	event, err := f.service.CreateSpiritualEvent(context.Background(), SpiritualEventCreateInput{
		Title: "Aarti", ShortDescription: "short", LongDescription: "long",
		EventDate: time.Now(),
		MainImage: upload("img.jpg"),
		Videos:    []string{"https://videos.test/v1"},
	})
	require.NoError(t, err)

	long := "the evening aarti, with expanded notes"
	updated, err := f.service.UpdateSpiritualEvent(context.Background(), event.ID, SpiritualEventUpdateInput{
		LongDescription: &long,
	})
	require.NoError(t, err)

	assert.Equal(t, long, updated.LongDescription)
	assert.Equal(t, "Aarti", updated.Title)
	assert.Equal(t, event.MainImageKey, updated.MainImageKey)
	assert.Equal(t, []string{"https://videos.test/v1"}, updated.Videos)
	assert.Empty(t, f.blobs.deleted)
}

func TestTeamMemberLifecycle(t *testing.T) {
	f := newContentFixture()

	member, err := f.service.CreateTeamMember(context.Background(), TeamMemberCreateInput{
		Name: "Asha", Role: "Coordinator", Description: "runs the office", Image: upload("asha.jpg"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, member.ImageKey)

	role := "Trustee"
	updated, err := f.service.UpdateTeamMember(context.Background(), member.ID, TeamMemberUpdateInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Trustee", updated.Role)
	assert.Equal(t, member.ImageKey, updated.ImageKey)

	require.NoError(t, f.service.DeleteTeamMember(context.Background(), member.ID))
	assert.Contains(t, f.blobs.deleted, member.ImageKey)
}

func TestMalformedIDReadsNotFound(t *testing.T) {
	f := newContentFixture()

	_, err := f.service.GetEvent(context.Background(), "abc")
	assertDomainCode(t, err, "NOT_FOUND")

	_, err = f.service.UpdateSpiritualEvent(context.Background(), "abc", SpiritualEventUpdateInput{})
	assertDomainCode(t, err, "NOT_FOUND")

	err = f.service.DeleteTeamMember(context.Background(), "abc")
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestPresignedURL(t *testing.T) {
	f := newContentFixture()
	assert.Equal(t, "https://blobs.test/team/1-x.jpg", f.service.PresignedURL(context.Background(), "team/1-x.jpg"))
}
