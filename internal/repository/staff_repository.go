package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-admin/internal/domain"
)

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, name, role, department_id, email, phone, password_hash`

func (r *staffRepository) Create(ctx context.Context, staff domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (id, name, role, department_id, email, phone, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		staff.ID,
		staff.Name,
		staff.Role,
		staff.DepartmentID,
		staff.Email,
		staff.Phone,
		staff.PasswordHash,
	)
	return mapPgError(err, "staff member", map[string]any{"staff_id": staff.ID, "department_id": staff.DepartmentID})
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	return r.fetchSingle(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE id=$1`, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return r.fetchSingle(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	staff, err := scanStaff(rows)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return nil, mapPgError(pgx.ErrNoRows, "staff", nil)
	}
	return &staff[0], nil
}

func (r *staffRepository) List(ctx context.Context) ([]domain.StaffMember, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+staffColumns+` FROM staff_members ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStaff(rows)
}

func scanStaff(rows pgx.Rows) ([]domain.StaffMember, error) {
	var result []domain.StaffMember
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(
			&staff.ID,
			&staff.Name,
			&staff.Role,
			&staff.DepartmentID,
			&staff.Email,
			&staff.Phone,
			&staff.PasswordHash,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}
