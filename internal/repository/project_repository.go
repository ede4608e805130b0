package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// ProjectRepository manages projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository constructs repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, p *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, status, start_date, end_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, p.Name, p.Description, p.Status, p.StartDate, p.EndDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapWriteError(err)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, name, description, status, start_date, end_date, created_at, updated_at
        FROM projects WHERE id=$1`
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	const query = `
        SELECT id, name, description, status, start_date, end_date, created_at, updated_at
        FROM projects ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanProject(row pgx.Row) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
