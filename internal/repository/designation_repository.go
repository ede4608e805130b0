package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// DesignationRepository manages persistence for designations.
type DesignationRepository interface {
	Create(ctx context.Context, d *domain.Designation) error
	Update(ctx context.Context, d *domain.Designation) error
	GetByID(ctx context.Context, id string) (*domain.Designation, error)
	GetStats(ctx context.Context, id string) (*domain.DesignationStats, error)
	ListStats(ctx context.Context, filter DesignationFilter) ([]domain.DesignationStats, error)
	ListByDepartments(ctx context.Context, departmentIDs []string) ([]domain.Designation, error)
	ExistsInDepartment(ctx context.Context, name, departmentID, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
	Reassign(ctx context.Context, sourceID, targetID string) error
}

// DesignationFilter narrows designation listings.
type DesignationFilter struct {
	DepartmentID *string
	Status       *domain.Status
	Search       string
}

type designationRepository struct {
	pool *pgxpool.Pool
}

// NewDesignationRepository constructs repository.
func NewDesignationRepository(pool *pgxpool.Pool) DesignationRepository {
	return &designationRepository{pool: pool}
}

const designationStatsSelect = `
        SELECT g.id, g.name, g.department_id, g.status, g.created_at, g.updated_at,
            d.name,
            (SELECT COUNT(*) FROM employees e WHERE e.designation_id = g.id)
        FROM designations g
        JOIN departments d ON d.id = g.department_id`

func (r *designationRepository) Create(ctx context.Context, d *domain.Designation) error {
	const query = `
        INSERT INTO designations (name, department_id, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, d.Name, d.DepartmentID, d.Status).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapWriteError(err)
}

func (r *designationRepository) Update(ctx context.Context, d *domain.Designation) error {
	const query = `
        UPDATE designations SET name=$1, department_id=$2, status=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	if !validID(d.ID) || !validID(d.DepartmentID) {
		return pgx.ErrNoRows
	}
	err := r.pool.QueryRow(ctx, query, d.Name, d.DepartmentID, d.Status, d.ID).Scan(&d.UpdatedAt)
	return mapWriteError(err)
}

func (r *designationRepository) GetByID(ctx context.Context, id string) (*domain.Designation, error) {
	const query = `
        SELECT id, name, department_id, status, created_at, updated_at
        FROM designations WHERE id=$1`
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	var d domain.Designation
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.DepartmentID,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *designationRepository) GetStats(ctx context.Context, id string) (*domain.DesignationStats, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	stats, err := scanDesignationStats(r.pool.QueryRow(ctx, designationStatsSelect+` WHERE g.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *designationRepository) ListStats(ctx context.Context, filter DesignationFilter) ([]domain.DesignationStats, error) {
	query := designationStatsSelect
	args := []any{}
	clauses := []string{}

	if filter.DepartmentID != nil {
		if !validID(*filter.DepartmentID) {
			return nil, nil
		}
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("g.department_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("g.status=$%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("g.name ILIKE $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY g.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DesignationStats
	for rows.Next() {
		stats, err := scanDesignationStats(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	return result, rows.Err()
}

func (r *designationRepository) ListByDepartments(ctx context.Context, departmentIDs []string) ([]domain.Designation, error) {
	query := `
        SELECT id, name, department_id, status, created_at, updated_at
        FROM designations`
	args := []any{}
	if departmentIDs != nil {
		query += ` WHERE department_id = ANY($1::uuid[])`
		args = append(args, validIDs(departmentIDs))
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Designation
	for rows.Next() {
		var d domain.Designation
		if err := rows.Scan(&d.ID, &d.Name, &d.DepartmentID, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// ExistsInDepartment reports whether another designation of the department
// already uses name. excludeID may be empty.
func (r *designationRepository) ExistsInDepartment(ctx context.Context, name, departmentID, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM designations
            WHERE department_id=$1 AND LOWER(name)=LOWER($2) AND ($3 = '' OR id::text <> $3)
        )`
	if !validID(departmentID) {
		return false, nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx, query, departmentID, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *designationRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM designations WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Reassign moves employees and policy assignments from source to target and
// removes source in one transaction.
func (r *designationRepository) Reassign(ctx context.Context, sourceID, targetID string) error {
	if !validID(sourceID) || !validID(targetID) {
		return pgx.ErrNoRows
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE employees SET designation_id=$2, updated_at=NOW() WHERE designation_id=$1`,
			sourceID, targetID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO policy_assignments (policy_id, department_id, designation_id)
            SELECT policy_id, department_id, $2 FROM policy_assignments WHERE designation_id=$1
            ON CONFLICT DO NOTHING`,
			sourceID, targetID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM policy_assignments WHERE designation_id=$1`, sourceID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM designations WHERE id=$1`, sourceID)
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

func scanDesignationStats(row pgx.Row) (domain.DesignationStats, error) {
	var stats domain.DesignationStats
	err := row.Scan(
		&stats.ID,
		&stats.Name,
		&stats.DepartmentID,
		&stats.Status,
		&stats.CreatedAt,
		&stats.UpdatedAt,
		&stats.DepartmentName,
		&stats.EmployeeCount,
	)
	return stats, err
}
