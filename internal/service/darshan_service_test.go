package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/events"
	"github.com/seva-foundation/darshan-service/internal/repository"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

type fakeDarshanRepo struct {
	mu        sync.Mutex
	items     map[string]domain.DarshanRequest
	staleOnce bool
}

func newFakeDarshanRepo() *fakeDarshanRepo {
	return &fakeDarshanRepo{items: map[string]domain.DarshanRequest{}}
}

func (r *fakeDarshanRepo) Create(_ context.Context, req *domain.DarshanRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.items[req.ID] = *req
	return nil
}

func (r *fakeDarshanRepo) GetByID(_ context.Context, id string) (*domain.DarshanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := req
	return &copied, nil
}

func (r *fakeDarshanRepo) matches(req domain.DarshanRequest, filter repository.DarshanFilter) bool {
	if filter.LeadID != nil && req.LeadID != *filter.LeadID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if req.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeDarshanRepo) ListWithFilter(_ context.Context, filter repository.DarshanFilter) ([]domain.DarshanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DarshanRequest
	for _, req := range r.items {
		if r.matches(req, filter) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeDarshanRepo) Count(_ context.Context, filter repository.DarshanFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, req := range r.items {
		if r.matches(req, filter) {
			total++
		}
	}
	return total, nil
}

func (r *fakeDarshanRepo) UpdateStatusFrom(_ context.Context, req *domain.DarshanRequest, expected domain.DarshanStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleOnce {
		r.staleOnce = false
		return repository.ErrStaleStatus
	}
	stored, ok := r.items[req.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != expected {
		return repository.ErrStaleStatus
	}
	req.UpdatedAt = time.Now()
	r.items[req.ID] = *req
	return nil
}

func (r *fakeDarshanRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUserName(_ context.Context, userName string) (*domain.User, error) {
	for _, user := range r.users {
		if user.UserName == userName {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu          sync.Mutex
	store       map[string][]byte
	sets        int
	invalidates int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) GetCached(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.store[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return payload, nil
}

func (c *fakeCache) SetCached(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = payload
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.invalidates++
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type darshanFixture struct {
	service    *DarshanService
	requests   *fakeDarshanRepo
	users      *fakeUserRepo
	cache      *fakeCache
	dispatcher *recordingDispatcher
	leadID     string
}

func newDarshanFixture(t *testing.T) *darshanFixture {
	t.Helper()

	requests := newFakeDarshanRepo()
	users := &fakeUserRepo{users: map[string]domain.User{}}
	cache := newFakeCache()
	dispatcher := &recordingDispatcher{}

	lead := &domain.User{Name: "Lead One", UserName: "lead1", Role: domain.RoleLead, IsActive: true}
	require.NoError(t, users.Create(context.Background(), lead))

	svc := NewDarshanService(DarshanDependencies{
		RequestRepo: requests,
		UserRepo:    users,
		Dispatcher:  dispatcher,
		Cache:       cache,
		CacheTTL:    time.Minute,
	})
	return &darshanFixture{service: svc, requests: requests, users: users, cache: cache, dispatcher: dispatcher, leadID: lead.ID}
}

func (f *darshanFixture) createRequest(t *testing.T) *domain.DarshanRequest {
	t.Helper()
	req, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name:           "Visitor",
		PhoneNumber:    "9876543210",
		Address:        "12 Temple Road",
		ReasonToVisit:  "seeking blessings",
		NumberOfPeople: 3,
		LeadID:         f.leadID,
	})
	require.NoError(t, err)
	return req
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateRequest(t *testing.T) {
	f := newDarshanFixture(t)

	req, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name:           "  Visitor  ",
		PhoneNumber:    "9876543210",
		Address:        "12 Temple Road",
		ReasonToVisit:  "seeking blessings",
		NumberOfPeople: 2,
		LeadID:         f.leadID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Visitor", req.Name)
	assert.Equal(t, domain.DarshanStatusPendingLead, req.Status)
	assert.Equal(t, f.leadID, req.LeadID)

	require.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, events.EventDarshanRequestCreated, f.dispatcher.events[0].Type)
}

func TestCreateRequestValidation(t *testing.T) {
	f := newDarshanFixture(t)

	_, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name: "Visitor", NumberOfPeople: 0, LeadID: f.leadID,
	})
	assertDomainCode(t, err, "VALIDATION_FAILED")
}

func TestCreateRequestUnknownLead(t *testing.T) {
	f := newDarshanFixture(t)

	_, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name: "Visitor", NumberOfPeople: 1, LeadID: uuid.NewString(),
	})
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestCreateRequestLeadMustHoldLeadRole(t *testing.T) {
	f := newDarshanFixture(t)
	pa := &domain.User{Name: "PA One", UserName: "pa1", Role: domain.RolePA, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), pa))

	_, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name: "Visitor", NumberOfPeople: 1, LeadID: pa.ID,
	})
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestLeadActionApprove(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	updated, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, domain.DarshanStatusPendingPA, updated.Status)
	require.NotNil(t, updated.Reason)
	assert.Equal(t, "looks fine", *updated.Reason)
}

func TestLeadActionReject(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	updated, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, false, "no slots")
	require.NoError(t, err)
	assert.Equal(t, domain.DarshanStatusRejected, updated.Status)
}

func TestLeadActionOtherLeadReadsNotFound(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	other := &domain.User{Name: "Lead Two", UserName: "lead2", Role: domain.RoleLead, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))

	_, err := f.service.LeadAction(context.Background(), other.ID, req.ID, true, "")
	assertDomainCode(t, err, "NOT_FOUND")

	stored, getErr := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.DarshanStatusPendingLead, stored.Status)
}

func TestLeadActionWrongStatus(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	require.NoError(t, err)

	_, err = f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "again")
	assertDomainCode(t, err, "INVALID_STATE")
	assert.Contains(t, err.Error(), string(domain.DarshanStatusPendingPA))
}

func TestPAActionApprove(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)
	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	require.NoError(t, err)

	when := time.Now().Add(48 * time.Hour)
	where := "Main Hall"
	updated, err := f.service.PAAction(context.Background(), uuid.NewString(), req.ID, true, "confirmed", &when, &where)
	require.NoError(t, err)

	assert.Equal(t, domain.DarshanStatusApproved, updated.Status)
	require.NotNil(t, updated.ScheduledDateTime)
	assert.Equal(t, when, *updated.ScheduledDateTime)
	require.NotNil(t, updated.ScheduledLocation)
	assert.Equal(t, where, *updated.ScheduledLocation)
}

func TestPAActionApproveRequiresSchedule(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)
	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	require.NoError(t, err)

	where := "Main Hall"
	_, err = f.service.PAAction(context.Background(), uuid.NewString(), req.ID, true, "", nil, &where)
	assertDomainCode(t, err, "VALIDATION_FAILED")

	when := time.Now()
	_, err = f.service.PAAction(context.Background(), uuid.NewString(), req.ID, true, "", &when, nil)
	assertDomainCode(t, err, "VALIDATION_FAILED")

	stored, getErr := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.DarshanStatusPendingPA, stored.Status)
	assert.Nil(t, stored.ScheduledDateTime)
}

func TestPAActionRejectNeedsNoSchedule(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)
	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	require.NoError(t, err)

	updated, err := f.service.PAAction(context.Background(), uuid.NewString(), req.ID, false, "not possible", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DarshanStatusRejected, updated.Status)
	assert.Nil(t, updated.ScheduledDateTime)
}

func TestPAActionBeforeLeadDecision(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	when := time.Now()
	where := "Main Hall"
	_, err := f.service.PAAction(context.Background(), uuid.NewString(), req.ID, true, "", &when, &where)
	assertDomainCode(t, err, "INVALID_STATE")
	assert.Contains(t, err.Error(), string(domain.DarshanStatusPendingLead))
}

func TestConcurrentTransitionConflicts(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)
	f.requests.staleOnce = true

	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	assertDomainCode(t, err, "CONFLICT")
}

func TestListForCallerLeadScope(t *testing.T) {
	f := newDarshanFixture(t)
	mine := f.createRequest(t)

	other := &domain.User{Name: "Lead Two", UserName: "lead2", Role: domain.RoleLead, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))
	_, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name: "Other Visitor", NumberOfPeople: 1, LeadID: other.ID,
	})
	require.NoError(t, err)

	result, err := f.service.ListForCaller(context.Background(), f.leadID, domain.RoleLead, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, mine.ID, result.Items[0].ID)
	assert.Equal(t, int64(1), result.Total)
}

func TestListForCallerPAScope(t *testing.T) {
	f := newDarshanFixture(t)
	first := f.createRequest(t)
	f.createRequest(t)

	_, err := f.service.LeadAction(context.Background(), f.leadID, first.ID, true, "")
	require.NoError(t, err)

	result, err := f.service.ListForCaller(context.Background(), uuid.NewString(), domain.RolePA, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, first.ID, result.Items[0].ID)
	assert.Equal(t, domain.DarshanStatusPendingPA, result.Items[0].Status)
}

func TestListForCallerPAStatusFilterStaysScoped(t *testing.T) {
	f := newDarshanFixture(t)
	f.createRequest(t)

	pending := domain.DarshanStatusPendingLead
	result, err := f.service.ListForCaller(context.Background(), uuid.NewString(), domain.RolePA, &pending, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestListForCallerLeadStatusFilterKeepsOwnership(t *testing.T) {
	f := newDarshanFixture(t)

	other := &domain.User{Name: "Lead Two", UserName: "lead2", Role: domain.RoleLead, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))
	_, err := f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name: "Other Visitor", NumberOfPeople: 1, LeadID: other.ID,
	})
	require.NoError(t, err)

	pending := domain.DarshanStatusPendingLead
	result, err := f.service.ListForCaller(context.Background(), f.leadID, domain.RoleLead, &pending, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestGetForCallerLeadMismatchReadsNotFound(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	other := &domain.User{Name: "Lead Two", UserName: "lead2", Role: domain.RoleLead, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), other))

	_, err := f.service.GetForCaller(context.Background(), other.ID, domain.RoleLead, req.ID)
	assertDomainCode(t, err, "NOT_FOUND")

	got, err := f.service.GetForCaller(context.Background(), uuid.NewString(), domain.RoleAdmin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
}

func TestMalformedRequestIDReadsNotFound(t *testing.T) {
	f := newDarshanFixture(t)

	_, err := f.service.GetForCaller(context.Background(), uuid.NewString(), domain.RoleAdmin, "abc")
	assertDomainCode(t, err, "NOT_FOUND")

	_, err = f.service.LeadAction(context.Background(), f.leadID, "abc", true, "")
	assertDomainCode(t, err, "NOT_FOUND")

	err = f.service.DeleteRequest(context.Background(), uuid.NewString(), "abc")
	assertDomainCode(t, err, "NOT_FOUND")

	_, err = f.service.CreateRequest(context.Background(), DarshanCreateInput{
		Name: "Visitor", NumberOfPeople: 1, LeadID: "abc",
	})
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestListApprovedUsesCache(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)
	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	require.NoError(t, err)
	when := time.Now().Add(time.Hour)
	where := "Main Hall"
	_, err = f.service.PAAction(context.Background(), uuid.NewString(), req.ID, true, "", &when, &where)
	require.NoError(t, err)

	first, err := f.service.ListApproved(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.service.ListApproved(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, f.cache.sets, "second default page should be served from cache")

	// Explicit pagination bypasses the cache entirely.
	_, err = f.service.ListApproved(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
}

func TestTransitionsInvalidateApprovedCache(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	before := f.cache.invalidates
	_, err := f.service.LeadAction(context.Background(), f.leadID, req.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, before+1, f.cache.invalidates)
}

func TestDeleteRequest(t *testing.T) {
	f := newDarshanFixture(t)
	req := f.createRequest(t)

	adminID := uuid.NewString()
	require.NoError(t, f.service.DeleteRequest(context.Background(), adminID, req.ID))

	_, err := f.requests.GetByID(context.Background(), req.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	err = f.service.DeleteRequest(context.Background(), adminID, req.ID)
	assertDomainCode(t, err, "NOT_FOUND")
}
