package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-console/internal/domain"
)

// EmployeeSection names a profile section stored in its own column.
type EmployeeSection string

const (
	SectionPersonal    EmployeeSection = "personal"
	SectionBank        EmployeeSection = "bank"
	SectionFamily      EmployeeSection = "family"
	SectionEducation   EmployeeSection = "education"
	SectionExperience  EmployeeSection = "experience"
	SectionEmergency   EmployeeSection = "emergency"
	SectionAbout       EmployeeSection = "about"
	SectionPermissions EmployeeSection = "permissions"
)

var sectionColumns = map[EmployeeSection]string{
	SectionPersonal:    "personal",
	SectionBank:        "bank",
	SectionFamily:      "family",
	SectionEducation:   "education",
	SectionExperience:  "experience",
	SectionEmergency:   "emergency",
	SectionAbout:       "about",
	SectionPermissions: "permissions",
}

// EmployeeRepository handles persistence for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	UpdateProfile(ctx context.Context, e *domain.Employee) error
	UpdateSection(ctx context.Context, id string, section EmployeeSection, value any) error
	Delete(ctx context.Context, id string) error
}

// EmployeeFilter defines query params for employee listing.
type EmployeeFilter struct {
	DepartmentID  *string
	DesignationID *string
	Status        *domain.EmployeeStatus
	Search        string
	Limit         int
	Offset        int
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `
        id, employee_code, first_name, last_name, email, phone, gender, birthday, address,
        date_of_joining, department_id, designation_id, status, about, avatar_url,
        personal, bank, family, education, experience, emergency, assets, statutory, permissions,
        created_at, updated_at`

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	const query = `
        INSERT INTO employees (employee_code, first_name, last_name, email, phone, gender, birthday, address,
            date_of_joining, department_id, designation_id, status, about, avatar_url, permissions)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		e.EmployeeCode,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		e.Gender,
		e.Birthday,
		e.Address,
		e.DateOfJoining,
		e.DepartmentID,
		e.DesignationID,
		e.Status,
		e.About,
		e.AvatarURL,
		e.Permissions,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return mapWriteError(err)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	e, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	args := []any{}
	clauses := []string{}

	if filter.DepartmentID != nil {
		clauses = append(clauses, idClause("department_id", *filter.DepartmentID, &args))
	}
	if filter.DesignationID != nil {
		clauses = append(clauses, idClause("designation_id", *filter.DesignationID, &args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR employee_code ILIKE $%d)", n, n, n, n))
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

	var result []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *employeeRepository) UpdateProfile(ctx context.Context, e *domain.Employee) error {
	const query = `
        UPDATE employees
        SET employee_code=$1, first_name=$2, last_name=$3, email=$4, phone=$5, gender=$6, birthday=$7,
            address=$8, date_of_joining=$9, department_id=$10, designation_id=$11, status=$12,
            avatar_url=$13, updated_at=NOW()
        WHERE id=$14
        RETURNING updated_at`
	if !validID(e.ID) {
		return pgx.ErrNoRows
	}
	err := r.pool.QueryRow(ctx, query,
		e.EmployeeCode,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		e.Gender,
		e.Birthday,
		e.Address,
		e.DateOfJoining,
		e.DepartmentID,
		e.DesignationID,
		e.Status,
		e.AvatarURL,
		e.ID,
	).Scan(&e.UpdatedAt)
	return mapWriteError(err)
}

func (r *employeeRepository) UpdateSection(ctx context.Context, id string, section EmployeeSection, value any) error {
	column, ok := sectionColumns[section]
	if !ok {
		return fmt.Errorf("unknown employee section %q", section)
	}
	if !validID(id) {
		return pgx.ErrNoRows
	}
	query := fmt.Sprintf(`UPDATE employees SET %s=$1, updated_at=NOW() WHERE id=$2`, column)
	cmd, err := r.pool.Exec(ctx, query, value, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID,
		&e.EmployeeCode,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&e.Gender,
		&e.Birthday,
		&e.Address,
		&e.DateOfJoining,
		&e.DepartmentID,
		&e.DesignationID,
		&e.Status,
		&e.About,
		&e.AvatarURL,
		&e.Personal,
		&e.Bank,
		&e.Family,
		&e.Education,
		&e.Experience,
		&e.Emergency,
		&e.Assets,
		&e.Statutory,
		&e.Permissions,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}
