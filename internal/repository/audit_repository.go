package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// AuditRepository stores administrative change records.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByTarget(ctx context.Context, target string) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (actor, action, target, before, after)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.Actor,
		entry.Action,
		entry.Target,
		entry.Before,
		entry.After,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByTarget(ctx context.Context, target string) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, actor, action, target, before, after, created_at
        FROM audit_log WHERE target=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Actor,
			&entry.Action,
			&entry.Target,
			&entry.Before,
			&entry.After,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
