package repository

import (
	"context"
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// IssueRepository persists issues. List returns issues in intake order.
type IssueRepository interface {
	Create(ctx context.Context, issue domain.Issue) error
	// Save replaces a stored issue. When expectedUpdatedAt is set and differs
	// from the stored value the write is rejected with a conflict.
	Save(ctx context.Context, issue domain.Issue, expectedUpdatedAt *time.Time) error
	// AppendNote adds an internal note atomically without touching status,
	// timeline or updatedAt.
	AppendNote(ctx context.Context, issueID string, note domain.InternalNote) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context) ([]domain.Issue, error)
}

// DepartmentRepository manages departments and category ownership.
type DepartmentRepository interface {
	Create(ctx context.Context, dept domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	CategoryOwners(ctx context.Context) (domain.CategoryDepartments, error)
	SetCategoryOwner(ctx context.Context, category, departmentID string) error
}

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	// Create rejects members whose department does not exist.
	Create(ctx context.Context, staff domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	List(ctx context.Context) ([]domain.StaffMember, error)
}

// NotificationRepository stores the admin notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, item domain.NotificationItem) error
	// List returns newest first.
	List(ctx context.Context, limit int) ([]domain.NotificationItem, error)
	MarkRead(ctx context.Context, id string) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Issues        IssueRepository
	Departments   DepartmentRepository
	Staff         StaffRepository
	Notifications NotificationRepository
}
