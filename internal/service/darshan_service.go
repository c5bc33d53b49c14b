package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/events"
	"github.com/seva-foundation/darshan-service/internal/repository"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

const approvedCacheKey = "darshan:approved:v1"

// ApprovedCache is the optional read cache for the public approved listing.
type ApprovedCache interface {
	GetCached(ctx context.Context, key string) ([]byte, error)
	SetCached(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// DarshanService owns the darshan request lifecycle: role-gated transitions
// and role-scoped listing.
type DarshanService struct {
	requests   repository.DarshanRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	cache      ApprovedCache
	cacheTTL   time.Duration
}

// DarshanDependencies bundles collaborators for the service.
type DarshanDependencies struct {
	RequestRepo repository.DarshanRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Cache       ApprovedCache
	CacheTTL    time.Duration
}

// NewDarshanService constructs the service.
func NewDarshanService(deps DarshanDependencies) *DarshanService {
	return &DarshanService{
		requests:   deps.RequestRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
	}
}

// DarshanCreateInput describes the public creation payload.
type DarshanCreateInput struct {
	Name           string
	PhoneNumber    string
	Address        string
	ReasonToVisit  string
	NumberOfPeople int
	LeadID         string
}

// DarshanListResult pairs a page of requests with the total match count.
type DarshanListResult struct {
	Total int64
	Items []domain.DarshanRequest
}

// allowedTransitions is the forward-only transition table. Terminal states
// have no successors.
var allowedTransitions = map[domain.DarshanStatus][]domain.DarshanStatus{
	domain.DarshanStatusPendingLead: {domain.DarshanStatusPendingPA, domain.DarshanStatusRejected},
	domain.DarshanStatusPendingPA:   {domain.DarshanStatusApproved, domain.DarshanStatusRejected},
	domain.DarshanStatusApproved:    {},
	domain.DarshanStatusRejected:    {},
}

// invalidID reports a caller-supplied id that cannot be a stored key. The id
// columns are UUIDs; passing arbitrary strings through to the store would
// raise a cast error instead of a clean lookup miss.
func invalidID(id string) bool {
	_, err := uuid.Parse(id)
	return err != nil
}

func isValidTransition(current, next domain.DarshanStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreateRequest records a new darshan request. Open to anonymous callers;
// the referenced lead must exist and hold the lead role.
func (s *DarshanService) CreateRequest(ctx context.Context, input DarshanCreateInput) (*domain.DarshanRequest, error) {
	if input.NumberOfPeople <= 0 {
		return nil, apperrors.NewValidationError("number of people must be greater than 0", nil)
	}

	if invalidID(input.LeadID) {
		return nil, apperrors.NewNotFound("selected lead", nil)
	}
	lead, err := s.users.GetByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("selected lead", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if lead.Role != domain.RoleLead {
		return nil, apperrors.NewNotFound("selected lead", nil)
	}

	req := &domain.DarshanRequest{
		Name:           strings.TrimSpace(input.Name),
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		Address:        strings.TrimSpace(input.Address),
		ReasonToVisit:  strings.TrimSpace(input.ReasonToVisit),
		NumberOfPeople: input.NumberOfPeople,
		Status:         domain.DarshanStatusPendingLead,
		LeadID:         lead.ID,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDarshanRequestCreated,
		RequestID: req.ID,
		Payload: events.DarshanCreatedPayload{
			Name:           req.Name,
			LeadID:         req.LeadID,
			NumberOfPeople: req.NumberOfPeople,
		},
	})
	return req, nil
}

// ListForCaller returns requests scoped by the caller's role. A caller-supplied
// status filter is AND-ed with the role scope, never replaces it: a lead keeps
// the ownership filter, and a PA asking for anything but PENDING_PA gets an
// empty page.
func (s *DarshanService) ListForCaller(ctx context.Context, callerID string, role domain.Role, status *domain.DarshanStatus, limit, offset int) (*DarshanListResult, error) {
	filter := repository.DarshanFilter{Limit: limit, Offset: offset}

	switch role {
	case domain.RoleLead:
		leadID := callerID
		filter.LeadID = &leadID
		if status != nil {
			filter.Statuses = []domain.DarshanStatus{*status}
		}
	case domain.RolePA:
		if status != nil && *status != domain.DarshanStatusPendingPA {
			return &DarshanListResult{Total: 0, Items: []domain.DarshanRequest{}}, nil
		}
		filter.Statuses = []domain.DarshanStatus{domain.DarshanStatusPendingPA}
	default:
		if status != nil {
			filter.Statuses = []domain.DarshanStatus{*status}
		}
	}

	return s.list(ctx, filter)
}

// ListApproved returns the public listing of confirmed darshans. The first
// page is served from cache when available.
func (s *DarshanService) ListApproved(ctx context.Context, limit, offset int) (*DarshanListResult, error) {
	cacheable := s.cache != nil && s.cacheTTL > 0 && offset <= 0 && limit <= 0
	if cacheable {
		if payload, err := s.cache.GetCached(ctx, approvedCacheKey); err == nil {
			var cached DarshanListResult
			if json.Unmarshal(payload, &cached) == nil {
				return &cached, nil
			}
		}
	}

	result, err := s.list(ctx, repository.DarshanFilter{
		Statuses: []domain.DarshanStatus{domain.DarshanStatusApproved},
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(result); err == nil {
			_ = s.cache.SetCached(ctx, approvedCacheKey, payload, s.cacheTTL)
		}
	}
	return result, nil
}

// GetForCaller fetches a single request. Leads only see their own
// assignments; a mismatch reads as not found so existence does not leak.
func (s *DarshanService) GetForCaller(ctx context.Context, callerID string, role domain.Role, requestID string) (*domain.DarshanRequest, error) {
	if invalidID(requestID) {
		return nil, apperrors.NewNotFound("darshan request", nil)
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("darshan request", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if role == domain.RoleLead && req.LeadID != callerID {
		return nil, apperrors.NewNotFound("darshan request", nil)
	}
	return req, nil
}

// LeadAction records the assigned lead's decision: approve moves the request
// to the PA queue, reject terminates it. Reason is recorded either way.
func (s *DarshanService) LeadAction(ctx context.Context, leadID, requestID string, approve bool, reason string) (*domain.DarshanRequest, error) {
	if invalidID(requestID) {
		return nil, apperrors.NewNotFound("darshan request", nil)
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("darshan request", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if req.LeadID != leadID {
		return nil, apperrors.NewNotFound("darshan request", nil)
	}
	if req.Status != domain.DarshanStatusPendingLead {
		return nil, apperrors.NewInvalidState(string(req.Status))
	}

	next := domain.DarshanStatusRejected
	if approve {
		next = domain.DarshanStatusPendingPA
	}
	return s.transition(ctx, req, next, reason, leadID, domain.RoleLead)
}

// PAAction records the final decision by a PA. Approval requires both
// schedule fields and is validated before any mutation.
func (s *DarshanService) PAAction(ctx context.Context, paID, requestID string, approve bool, reason string, scheduledDateTime *time.Time, scheduledLocation *string) (*domain.DarshanRequest, error) {
	if invalidID(requestID) {
		return nil, apperrors.NewNotFound("darshan request", nil)
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("darshan request", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if req.Status != domain.DarshanStatusPendingPA {
		return nil, apperrors.NewInvalidState(string(req.Status))
	}

	next := domain.DarshanStatusRejected
	if approve {
		if scheduledDateTime == nil {
			return nil, apperrors.NewValidationError("scheduled date and time is required for approval", nil)
		}
		if scheduledLocation == nil || strings.TrimSpace(*scheduledLocation) == "" {
			return nil, apperrors.NewValidationError("scheduled location is required for approval", nil)
		}
		next = domain.DarshanStatusApproved
		req.ScheduledDateTime = scheduledDateTime
		req.ScheduledLocation = scheduledLocation
	}
	return s.transition(ctx, req, next, reason, paID, domain.RolePA)
}

// DeleteRequest removes a request permanently. Admin only, any status.
func (s *DarshanService) DeleteRequest(ctx context.Context, adminID, requestID string) error {
	if invalidID(requestID) {
		return apperrors.NewNotFound("darshan request", nil)
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("darshan request", nil)
		}
		return apperrors.MapError(err)
	}

	s.invalidateApprovedCache(ctx)
	s.publish(ctx, events.Event{
		Type:      events.EventDarshanRequestDeleted,
		RequestID: requestID,
		Actor:     events.Actor{UserID: &adminID, Role: domain.RoleAdmin},
	})
	return nil
}

func (s *DarshanService) transition(ctx context.Context, req *domain.DarshanRequest, next domain.DarshanStatus, reason, actorID string, actorRole domain.Role) (*domain.DarshanRequest, error) {
	if !isValidTransition(req.Status, next) {
		return nil, apperrors.NewInvalidState(string(req.Status))
	}

	expected := req.Status
	req.Status = next
	trimmed := strings.TrimSpace(reason)
	req.Reason = &trimmed

	if err := s.requests.UpdateStatusFrom(ctx, req, expected); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.NewConflict("request was modified concurrently", nil)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("darshan request", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateApprovedCache(ctx)
	s.publish(ctx, events.Event{
		Type:      events.EventDarshanStatusChanged,
		RequestID: req.ID,
		Actor:     events.Actor{UserID: &actorID, Role: actorRole},
		Payload: events.DarshanStatusChangedPayload{
			OldStatus: expected,
			NewStatus: next,
			Reason:    trimmed,
		},
	})
	return req, nil
}

func (s *DarshanService) list(ctx context.Context, filter repository.DarshanFilter) (*DarshanListResult, error) {
	total, err := s.requests.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items, err := s.requests.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.DarshanRequest{}
	}
	return &DarshanListResult{Total: total, Items: items}, nil
}

func (s *DarshanService) invalidateApprovedCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, approvedCacheKey)
	}
}

func (s *DarshanService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
