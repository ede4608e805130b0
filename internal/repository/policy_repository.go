package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// PolicyRepository manages policies and their department/designation assignments.
type PolicyRepository interface {
	Create(ctx context.Context, p *domain.Policy) error
	Update(ctx context.Context, p *domain.Policy) error
	GetByID(ctx context.Context, id string) (*domain.Policy, error)
	List(ctx context.Context, filter PolicyFilter) ([]domain.Policy, error)
	Delete(ctx context.Context, id string) error
}

// PolicyFilter restricts listings to policies applicable to a placement.
type PolicyFilter struct {
	DepartmentID  *string
	DesignationID *string
	Search        string
}

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository constructs repository.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

func (r *policyRepository) Create(ctx context.Context, p *domain.Policy) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO policies (name, description, effective_date, apply_to_all)
            VALUES ($1,$2,$3,$4)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query, p.Name, p.Description, p.EffectiveDate, p.ApplyToAll).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return insertAssignments(ctx, tx, p.ID, p.Assignments)
	})
	return mapWriteError(err)
}

func (r *policyRepository) Update(ctx context.Context, p *domain.Policy) error {
	if !validID(p.ID) {
		return pgx.ErrNoRows
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            UPDATE policies SET name=$1, description=$2, effective_date=$3, apply_to_all=$4, updated_at=NOW()
            WHERE id=$5
            RETURNING updated_at`
		if err := tx.QueryRow(ctx, query, p.Name, p.Description, p.EffectiveDate, p.ApplyToAll, p.ID).
			Scan(&p.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM policy_assignments WHERE policy_id=$1`, p.ID); err != nil {
			return err
		}
		return insertAssignments(ctx, tx, p.ID, p.Assignments)
	})
	return mapWriteError(err)
}

func (r *policyRepository) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	const query = `
        SELECT id, name, description, effective_date, apply_to_all, created_at, updated_at
        FROM policies WHERE id=$1`
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	p, err := scanPolicy(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	policies := []domain.Policy{p}
	if err := r.attachAssignments(ctx, policies); err != nil {
		return nil, err
	}
	return &policies[0], nil
}

func (r *policyRepository) List(ctx context.Context, filter PolicyFilter) ([]domain.Policy, error) {
	query := `
        SELECT p.id, p.name, p.description, p.effective_date, p.apply_to_all, p.created_at, p.updated_at
        FROM policies p`
	args := []any{}
	clauses := []string{}

	if filter.DepartmentID != nil {
		scope := idClause("pa.department_id", *filter.DepartmentID, &args)
		if filter.DesignationID != nil {
			scope += " AND (pa.designation_id IS NULL OR " + idClause("pa.designation_id", *filter.DesignationID, &args) + ")"
		}
		clauses = append(clauses, `(p.apply_to_all OR EXISTS (
            SELECT 1 FROM policy_assignments pa WHERE pa.policy_id = p.id AND `+scope+`))`)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY p.effective_date DESC, p.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachAssignments(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *policyRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM policies WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *policyRepository) attachAssignments(ctx context.Context, policies []domain.Policy) error {
	if len(policies) == 0 {
		return nil
	}
	ids := make([]string, len(policies))
	index := make(map[string]int, len(policies))
	for i, p := range policies {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
        SELECT policy_id, department_id, designation_id
        FROM policy_assignments WHERE policy_id = ANY($1::uuid[])
        ORDER BY department_id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var policyID, departmentID string
		var designationID *string
		if err := rows.Scan(&policyID, &departmentID, &designationID); err != nil {
			return err
		}
		p := &policies[index[policyID]]
		p.Assignments = appendAssignment(p.Assignments, departmentID, designationID)
	}
	return rows.Err()
}

func appendAssignment(list []domain.PolicyAssignment, departmentID string, designationID *string) []domain.PolicyAssignment {
	for i := range list {
		if list[i].DepartmentID != departmentID {
			continue
		}
		if designationID == nil {
			list[i].AllDesignations = true
			list[i].DesignationIDs = nil
		} else if !list[i].AllDesignations {
			list[i].DesignationIDs = append(list[i].DesignationIDs, *designationID)
		}
		return list
	}
	a := domain.PolicyAssignment{DepartmentID: departmentID, AllDesignations: designationID == nil}
	if designationID != nil {
		a.DesignationIDs = []string{*designationID}
	}
	return append(list, a)
}

func insertAssignments(ctx context.Context, tx pgx.Tx, policyID string, assignments []domain.PolicyAssignment) error {
	batch := &pgx.Batch{}
	const query = `INSERT INTO policy_assignments (policy_id, department_id, designation_id) VALUES ($1,$2,$3)`
	for _, a := range assignments {
		if a.AllDesignations || len(a.DesignationIDs) == 0 {
			batch.Queue(query, policyID, a.DepartmentID, nil)
			continue
		}
		for _, designationID := range a.DesignationIDs {
			batch.Queue(query, policyID, a.DepartmentID, designationID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}

func scanPolicy(row pgx.Row) (domain.Policy, error) {
	var p domain.Policy
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.EffectiveDate, &p.ApplyToAll, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
