package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/issue-admin/internal/domain"
)

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept domain.Department) error {
	const query = `INSERT INTO departments (id, name, description) VALUES ($1,$2,$3)`
	_, err := r.pool.Exec(ctx, query, dept.ID, dept.Name, dept.Description)
	return mapPgError(err, "department", map[string]any{"department_id": dept.ID})
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `SELECT id, name, description FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(&dept.ID, &dept.Name, &dept.Description); err != nil {
		return nil, mapPgError(err, "department", map[string]any{"department_id": id})
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM departments ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Description); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) CategoryOwners(ctx context.Context) (domain.CategoryDepartments, error) {
	rows, err := r.pool.Query(ctx, `SELECT category, department_id FROM category_departments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owners := domain.CategoryDepartments{}
	for rows.Next() {
		var category, deptID string
		if err := rows.Scan(&category, &deptID); err != nil {
			return nil, err
		}
		owners[category] = deptID
	}
	return owners, rows.Err()
}

func (r *departmentRepository) SetCategoryOwner(ctx context.Context, category, departmentID string) error {
	const query = `
        INSERT INTO category_departments (category, department_id) VALUES ($1,$2)
        ON CONFLICT (category) DO UPDATE SET department_id = EXCLUDED.department_id`
	_, err := r.pool.Exec(ctx, query, category, departmentID)
	return mapPgError(err, "category", map[string]any{"category": category, "department_id": departmentID})
}
