package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// SpiritualEventRepository encapsulates spiritual event persistence.
type SpiritualEventRepository interface {
	Create(ctx context.Context, event *domain.SpiritualEvent) error
	Update(ctx context.Context, event *domain.SpiritualEvent) error
	GetByID(ctx context.Context, id string) (*domain.SpiritualEvent, error)
	List(ctx context.Context) ([]domain.SpiritualEvent, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type spiritualEventRepository struct {
	pool *pgxpool.Pool
}

// NewSpiritualEventRepository instantiates the repository.
func NewSpiritualEventRepository(pool *pgxpool.Pool) SpiritualEventRepository {
	return &spiritualEventRepository{pool: pool}
}

const spiritualEventColumns = `id, title, short_description, long_description, event_date,
               main_image_key, additional_image_keys, videos, created_at, updated_at`

func (r *spiritualEventRepository) Create(ctx context.Context, event *domain.SpiritualEvent) error {
	const query = `
        INSERT INTO spiritual_events (title, short_description, long_description, event_date, main_image_key, additional_image_keys, videos)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.ShortDescription,
		event.LongDescription,
		event.EventDate,
		event.MainImageKey,
		event.AdditionalImageKeys,
		event.Videos,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *spiritualEventRepository) Update(ctx context.Context, event *domain.SpiritualEvent) error {
	const query = `
        UPDATE spiritual_events SET title=$1, short_description=$2, long_description=$3, event_date=$4,
            main_image_key=$5, additional_image_keys=$6, videos=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		event.Title,
		event.ShortDescription,
		event.LongDescription,
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

func (r *spiritualEventRepository) GetByID(ctx context.Context, id string) (*domain.SpiritualEvent, error) {
	query := `SELECT ` + spiritualEventColumns + ` FROM spiritual_events WHERE id=$1`
	var event domain.SpiritualEvent
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.ShortDescription,
		&event.LongDescription,
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

func (r *spiritualEventRepository) List(ctx context.Context) ([]domain.SpiritualEvent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+spiritualEventColumns+` FROM spiritual_events ORDER BY event_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SpiritualEvent
	for rows.Next() {
		var event domain.SpiritualEvent
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.ShortDescription,
			&event.LongDescription,
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

func (r *spiritualEventRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM spiritual_events`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *spiritualEventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM spiritual_events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
