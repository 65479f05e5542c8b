package repository

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresStore wires every repository to the same pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Issues:        NewIssueRepository(pool),
		Departments:   NewDepartmentRepository(pool),
		Staff:         NewStaffRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}
