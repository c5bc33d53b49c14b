package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// ErrStaleStatus reports a compare-and-set update that found the row in a
// different status than expected, meaning a concurrent transition won.
var ErrStaleStatus = errors.New("request status changed concurrently")

// DarshanFilter captures list query parameters. Filters are AND-ed.
type DarshanFilter struct {
	LeadID   *string
	Statuses []domain.DarshanStatus
	Limit    int
	Offset   int
}

// DarshanRepository encapsulates darshan request persistence.
type DarshanRepository interface {
	Create(ctx context.Context, req *domain.DarshanRequest) error
	GetByID(ctx context.Context, id string) (*domain.DarshanRequest, error)
	ListWithFilter(ctx context.Context, filter DarshanFilter) ([]domain.DarshanRequest, error)
	Count(ctx context.Context, filter DarshanFilter) (int64, error)
	// UpdateStatusFrom persists status, reason and schedule fields only when
	// the stored status still equals expected. Returns ErrStaleStatus when a
	// concurrent writer moved the request first, pgx.ErrNoRows when the row
	// is gone.
	UpdateStatusFrom(ctx context.Context, req *domain.DarshanRequest, expected domain.DarshanStatus) error
	Delete(ctx context.Context, id string) error
}

type darshanRepository struct {
	pool *pgxpool.Pool
}

// NewDarshanRepository instantiates the repository.
func NewDarshanRepository(pool *pgxpool.Pool) DarshanRepository {
	return &darshanRepository{pool: pool}
}

const darshanColumns = `id, name, phone_number, address, reason_to_visit, number_of_people,
               status, scheduled_date_time, scheduled_location, reason, lead_id, created_at, updated_at`

func (r *darshanRepository) Create(ctx context.Context, req *domain.DarshanRequest) error {
	const query = `
        INSERT INTO darshan_requests (name, phone_number, address, reason_to_visit, number_of_people, status, lead_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.Name,
		req.PhoneNumber,
		req.Address,
		req.ReasonToVisit,
		req.NumberOfPeople,
		req.Status,
		req.LeadID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *darshanRepository) GetByID(ctx context.Context, id string) (*domain.DarshanRequest, error) {
	query := `SELECT ` + darshanColumns + ` FROM darshan_requests WHERE id=$1`
	var req domain.DarshanRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Name,
		&req.PhoneNumber,
		&req.Address,
		&req.ReasonToVisit,
		&req.NumberOfPeople,
		&req.Status,
		&req.ScheduledDateTime,
		&req.ScheduledLocation,
		&req.Reason,
		&req.LeadID,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *darshanRepository) ListWithFilter(ctx context.Context, filter DarshanFilter) ([]domain.DarshanRequest, error) {
	clauses, args := filterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM darshan_requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		darshanColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDarshanRequests(rows)
}

func (r *darshanRepository) Count(ctx context.Context, filter DarshanFilter) (int64, error) {
	clauses, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM darshan_requests WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *darshanRepository) UpdateStatusFrom(ctx context.Context, req *domain.DarshanRequest, expected domain.DarshanStatus) error {
	const query = `
        UPDATE darshan_requests
        SET status=$1, reason=$2, scheduled_date_time=$3, scheduled_location=$4, updated_at=NOW()
        WHERE id=$5 AND status=$6`
	cmd, err := r.pool.Exec(ctx, query,
		req.Status,
		req.Reason,
		req.ScheduledDateTime,
		req.ScheduledLocation,
		req.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Distinguish a vanished row from a concurrent transition.
		if _, getErr := r.GetByID(ctx, req.ID); getErr != nil {
			return getErr
		}
		return ErrStaleStatus
	}
	return nil
}

func (r *darshanRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM darshan_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func filterClauses(filter DarshanFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.LeadID != nil {
		args = append(args, *filter.LeadID)
		clauses = append(clauses, fmt.Sprintf("lead_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	return clauses, args
}

func scanDarshanRequests(rows pgx.Rows) ([]domain.DarshanRequest, error) {
	var result []domain.DarshanRequest
	for rows.Next() {
		var req domain.DarshanRequest
		if err := rows.Scan(
			&req.ID,
			&req.Name,
			&req.PhoneNumber,
			&req.Address,
			&req.ReasonToVisit,
			&req.NumberOfPeople,
			&req.Status,
			&req.ScheduledDateTime,
			&req.ScheduledLocation,
			&req.Reason,
			&req.LeadID,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
