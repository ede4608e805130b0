package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// ConsoleUserRepository handles persistence for console operators.
type ConsoleUserRepository interface {
	Create(ctx context.Context, user *domain.ConsoleUser) error
	Update(ctx context.Context, user *domain.ConsoleUser) error
	GetByID(ctx context.Context, id string) (*domain.ConsoleUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.ConsoleUser, error)
	List(ctx context.Context, filter ConsoleUserFilter) ([]domain.ConsoleUser, error)
}

// ConsoleUserFilter defines query params for operator listing.
type ConsoleUserFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

type consoleUserRepository struct {
	pool *pgxpool.Pool
}

// NewConsoleUserRepository instantiates the repository.
func NewConsoleUserRepository(pool *pgxpool.Pool) ConsoleUserRepository {
	return &consoleUserRepository{pool: pool}
}

const consoleUserColumns = `id, name, email, password_hash, role, active_flag, created_at, updated_at`

func (r *consoleUserRepository) Create(ctx context.Context, user *domain.ConsoleUser) error {
	const query = `
        INSERT INTO console_users (name, email, password_hash, role, active_flag)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapWriteError(err)
}

func (r *consoleUserRepository) Update(ctx context.Context, user *domain.ConsoleUser) error {
	const query = `
        UPDATE console_users
        SET name=$1, email=$2, password_hash=$3, role=$4, active_flag=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *consoleUserRepository) GetByID(ctx context.Context, id string) (*domain.ConsoleUser, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	user, err := scanConsoleUser(r.pool.QueryRow(ctx, `SELECT `+consoleUserColumns+` FROM console_users WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *consoleUserRepository) GetByEmail(ctx context.Context, email string) (*domain.ConsoleUser, error) {
	user, err := scanConsoleUser(r.pool.QueryRow(ctx,
		`SELECT `+consoleUserColumns+` FROM console_users WHERE LOWER(email)=LOWER($1)`, email))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *consoleUserRepository) List(ctx context.Context, filter ConsoleUserFilter) ([]domain.ConsoleUser, error) {
	query := `SELECT ` + consoleUserColumns + ` FROM console_users`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
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

	var result []domain.ConsoleUser
	for rows.Next() {
		user, err := scanConsoleUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func scanConsoleUser(row pgx.Row) (domain.ConsoleUser, error) {
	var user domain.ConsoleUser
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
