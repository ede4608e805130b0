package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	GetStats(ctx context.Context, id string) (*domain.DepartmentStats, error)
	List(ctx context.Context, status *domain.Status) ([]domain.Department, error)
	ListStats(ctx context.Context, status *domain.Status) ([]domain.DepartmentStats, error)
	Delete(ctx context.Context, id string) error
	Reassign(ctx context.Context, sourceID, targetID string) error
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

const departmentStatsSelect = `
        SELECT d.id, d.name, d.status, d.created_at, d.updated_at,
            (SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id),
            (SELECT COUNT(*) FROM designations g WHERE g.department_id = d.id),
            (SELECT COUNT(DISTINCT pa.policy_id) FROM policy_assignments pa WHERE pa.department_id = d.id)
        FROM departments d`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, status)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, dept.Name, dept.Status).
		Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	return mapWriteError(err)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, status=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	if !validID(dept.ID) {
		return pgx.ErrNoRows
	}
	err := r.pool.QueryRow(ctx, query, dept.Name, dept.Status, dept.ID).Scan(&dept.UpdatedAt)
	return mapWriteError(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `
        SELECT id, name, status, created_at, updated_at
        FROM departments WHERE id=$1`
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Status,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

// GetByName matches case-insensitively, mirroring the unique index.
func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	const query = `
        SELECT id, name, status, created_at, updated_at
        FROM departments WHERE LOWER(name)=LOWER($1)`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Status,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) GetStats(ctx context.Context, id string) (*domain.DepartmentStats, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	row := r.pool.QueryRow(ctx, departmentStatsSelect+` WHERE d.id=$1`, id)
	stats, err := scanDepartmentStats(row)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *departmentRepository) List(ctx context.Context, status *domain.Status) ([]domain.Department, error) {
	query := `
        SELECT id, name, status, created_at, updated_at
        FROM departments`
	args := []any{}
	if status != nil {
		query += ` WHERE status=$1`
		args = append(args, *status)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Status, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) ListStats(ctx context.Context, status *domain.Status) ([]domain.DepartmentStats, error) {
	query := departmentStatsSelect
	args := []any{}
	if status != nil {
		query += ` WHERE d.status=$1`
		args = append(args, *status)
	}
	query += ` ORDER BY d.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DepartmentStats
	for rows.Next() {
		stats, err := scanDepartmentStats(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	return result, rows.Err()
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Reassign moves employees, designations and policy assignments from source
// to target and removes source, all in one transaction. A source designation
// whose name already exists in target is merged into that designation.
func (r *departmentRepository) Reassign(ctx context.Context, sourceID, targetID string) error {
	if !validID(sourceID) || !validID(targetID) {
		return pgx.ErrNoRows
	}
	both := []any{sourceID, targetID}
	steps := []struct {
		query string
		args  []any
	}{
		{`UPDATE employees SET department_id=$2, updated_at=NOW() WHERE department_id=$1`, both},
		{`UPDATE employees e SET designation_id=t.id, updated_at=NOW()
            FROM designations s
            JOIN designations t ON t.department_id=$2 AND LOWER(t.name)=LOWER(s.name)
            WHERE s.department_id=$1 AND e.designation_id=s.id`, both},
		{`INSERT INTO policy_assignments (policy_id, department_id, designation_id)
            SELECT pa.policy_id, $2, COALESCE(t.id, pa.designation_id)
            FROM policy_assignments pa
            LEFT JOIN designations s ON s.id=pa.designation_id
            LEFT JOIN designations t ON t.department_id=$2 AND LOWER(t.name)=LOWER(s.name)
            WHERE pa.department_id=$1
            ON CONFLICT DO NOTHING`, both},
		{`DELETE FROM policy_assignments WHERE department_id=$1`, both[:1]},
		{`DELETE FROM designations s USING designations t
            WHERE s.department_id=$1 AND t.department_id=$2 AND LOWER(t.name)=LOWER(s.name)`, both},
		{`UPDATE designations SET department_id=$2, updated_at=NOW() WHERE department_id=$1`, both},
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, step := range steps {
			if _, err := tx.Exec(ctx, step.query, step.args...); err != nil {
				return err
			}
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM departments WHERE id=$1`, sourceID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	return mapWriteError(err)
}

func scanDepartmentStats(row pgx.Row) (domain.DepartmentStats, error) {
	var stats domain.DepartmentStats
	err := row.Scan(
		&stats.ID,
		&stats.Name,
		&stats.Status,
		&stats.CreatedAt,
		&stats.UpdatedAt,
		&stats.EmployeeCount,
		&stats.DesignationCount,
		&stats.PolicyCount,
	)
	return stats, err
}
