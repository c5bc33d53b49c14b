package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// TeamMemberRepository encapsulates team member persistence.
type TeamMemberRepository interface {
	Create(ctx context.Context, member *domain.TeamMember) error
	Update(ctx context.Context, member *domain.TeamMember) error
	GetByID(ctx context.Context, id string) (*domain.TeamMember, error)
	List(ctx context.Context) ([]domain.TeamMember, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type teamMemberRepository struct {
	pool *pgxpool.Pool
}

// NewTeamMemberRepository instantiates the repository.
func NewTeamMemberRepository(pool *pgxpool.Pool) TeamMemberRepository {
	return &teamMemberRepository{pool: pool}
}

func (r *teamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        INSERT INTO team_members (name, role, description, image_key)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		member.Name,
		member.Role,
		member.Description,
		member.ImageKey,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *teamMemberRepository) Update(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        UPDATE team_members SET name=$1, role=$2, description=$3, image_key=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		member.Name,
		member.Role,
		member.Description,
		member.ImageKey,
		member.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamMemberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	const query = `
        SELECT id, name, role, description, image_key, created_at, updated_at
        FROM team_members WHERE id=$1`
	var member domain.TeamMember
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.Name,
		&member.Role,
		&member.Description,
		&member.ImageKey,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamMemberRepository) List(ctx context.Context) ([]domain.TeamMember, error) {
	const query = `
        SELECT id, name, role, description, image_key, created_at, updated_at
        FROM team_members ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamMember
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.Role,
			&member.Description,
			&member.ImageKey,
			&member.CreatedAt,
			&member.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}

func (r *teamMemberRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_members`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *teamMemberRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
