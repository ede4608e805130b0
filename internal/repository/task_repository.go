package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// TaskRepository manages task persistence.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	CountByStatus(ctx context.Context, filter TaskFilter) (map[domain.TaskStatus]int, error)
	Delete(ctx context.Context, id string) error
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	ProjectID *string
	Status    *domain.TaskStatus
	Priority  *domain.TaskPriority
	Search    string
	Limit     int
	Offset    int
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository constructs repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, project_id, title, description, status, priority, due_date, assignees, tags, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, t *domain.Task) error {
	const query = `
        INSERT INTO tasks (project_id, title, description, status, priority, due_date, assignees, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.DueDate,
		nonNil(t.Assignees),
		nonNil(t.Tags),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapWriteError(err)
}

func (r *taskRepository) Update(ctx context.Context, t *domain.Task) error {
	const query = `
        UPDATE tasks
        SET project_id=$1, title=$2, description=$3, status=$4, priority=$5, due_date=$6,
            assignees=$7, tags=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	if !validID(t.ID) {
		return pgx.ErrNoRows
	}
	err := r.pool.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.DueDate,
		nonNil(t.Assignees),
		nonNil(t.Tags),
		t.ID,
	).Scan(&t.UpdatedAt)
	return mapWriteError(err)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	where, args := taskWhere(filter, true)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY due_date ASC NULLS LAST, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// CountByStatus ignores the status filter so the board totals stay complete.
func (r *taskRepository) CountByStatus(ctx context.Context, filter TaskFilter) (map[domain.TaskStatus]int, error) {
	where, args := taskWhere(filter, false)
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.TaskStatus]int{}
	for rows.Next() {
		var status domain.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func taskWhere(filter TaskFilter, withStatus bool) (string, []any) {
	args := []any{}
	clauses := []string{}
	if filter.ProjectID != nil {
		clauses = append(clauses, idClause("project_id", *filter.ProjectID, &args))
	}
	if withStatus && filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR $%d ILIKE ANY(tags))", n, n))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.Assignees,
		&t.Tags,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
