package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, eventType *domain.EventType) ([]domain.Event, error)
	Count(ctx context.Context, eventType *domain.EventType) (int64, error)
	Delete(ctx context.Context, id string) error
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates the repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, title, short_description, long_description, event_type, event_date,
               main_image_key, additional_image_keys, videos, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, short_description, long_description, event_type, event_date, main_image_key, additional_image_keys, videos)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.ShortDescription,
		event.LongDescription,
		event.EventType,
		event.EventDate,
		event.MainImageKey,
		event.AdditionalImageKeys,
		event.Videos,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET title=$1, short_description=$2, long_description=$3, event_type=$4, event_date=$5,
            main_image_key=$6, additional_image_keys=$7, videos=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		event.Title,
		event.ShortDescription,
		event.LongDescription,
		event.EventType,
		event.EventDate,
		event.MainImageKey,
		event.AdditionalImageKeys,
		event.Videos,
		event.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id=$1`
	var event domain.Event
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.ShortDescription,
		&event.LongDescription,
		&event.EventType,
		&event.EventDate,
		&event.MainImageKey,
		&event.AdditionalImageKeys,
		&event.Videos,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, eventType *domain.EventType) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if eventType != nil {
		query += ` WHERE event_type=$1`
		args = append(args, *eventType)
	}
	query += ` ORDER BY event_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.ShortDescription,
			&event.LongDescription,
			&event.EventType,
			&event.EventDate,
			&event.MainImageKey,
			&event.AdditionalImageKeys,
			&event.Videos,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

func (r *eventRepository) Count(ctx context.Context, eventType *domain.EventType) (int64, error) {
	query := `SELECT COUNT(*) FROM events`
	args := []any{}
	if eventType != nil {
		query += ` WHERE event_type=$1`
		args = append(args, *eventType)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
