package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// memoryState is shared by the in-memory repositories so staff writes can
// check departments under the same lock.
type memoryState struct {
	mu            sync.RWMutex
	issues        map[string]domain.Issue
	issueOrder    []string
	departments   map[string]domain.Department
	deptOrder     []string
	owners        domain.CategoryDepartments
	staff         map[string]domain.StaffMember
	staffOrder    []string
	notifications []domain.NotificationItem
}

// NewMemoryStore returns an empty store kept in process memory.
func NewMemoryStore() *Store {
	state := &memoryState{
		issues:      map[string]domain.Issue{},
		departments: map[string]domain.Department{},
		owners:      domain.CategoryDepartments{},
		staff:       map[string]domain.StaffMember{},
	}
	return &Store{
		Issues:        &memoryIssues{state},
		Departments:   &memoryDepartments{state},
		Staff:         &memoryStaff{state},
		Notifications: &memoryNotifications{state},
	}
}

type memoryIssues struct{ *memoryState }

func (r *memoryIssues) Create(_ context.Context, issue domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.issues[issue.ID]; exists {
		return apperrors.NewConflict("issue already exists", map[string]any{"issue_id": issue.ID})
	}
	r.issues[issue.ID] = issue.Clone()
	r.issueOrder = append(r.issueOrder, issue.ID)
	return nil
}

func (r *memoryIssues) Save(_ context.Context, issue domain.Issue, expectedUpdatedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.issues[issue.ID]
	if !ok {
		return apperrors.NewNotFound("issue", map[string]any{"issue_id": issue.ID})
	}
	if expectedUpdatedAt != nil && !current.UpdatedAt.Equal(*expectedUpdatedAt) {
		return staleWrite(issue.ID, current.UpdatedAt)
	}
	r.issues[issue.ID] = issue.Clone()
	return nil
}

func (r *memoryIssues) AppendNote(_ context.Context, issueID string, note domain.InternalNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.issues[issueID]
	if !ok {
		return apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
	}
	current = current.Clone()
	if note.By != nil {
		by := *note.By
		note.By = &by
	}
	current.Notes = append(current.Notes, note)
	r.issues[issueID] = current
	return nil
}

func (r *memoryIssues) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": id})
	}
	out := issue.Clone()
	return &out, nil
}

func (r *memoryIssues) List(_ context.Context) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Issue, 0, len(r.issueOrder))
	for _, id := range r.issueOrder {
		out = append(out, r.issues[id].Clone())
	}
	return out, nil
}

type memoryDepartments struct{ *memoryState }

func (r *memoryDepartments) Create(_ context.Context, dept domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.departments[dept.ID]; exists {
		return apperrors.NewConflict("department already exists", map[string]any{"department_id": dept.ID})
	}
	r.departments[dept.ID] = dept
	r.deptOrder = append(r.deptOrder, dept.ID)
	return nil
}

func (r *memoryDepartments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dept, ok := r.departments[id]
	if !ok {
		return nil, apperrors.NewNotFound("department", map[string]any{"department_id": id})
	}
	return &dept, nil
}

func (r *memoryDepartments) List(_ context.Context) ([]domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Department, 0, len(r.deptOrder))
	for _, id := range r.deptOrder {
		out = append(out, r.departments[id])
	}
	return out, nil
}

func (r *memoryDepartments) CategoryOwners(_ context.Context) (domain.CategoryDepartments, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(domain.CategoryDepartments, len(r.owners))
	for k, v := range r.owners {
		out[k] = v
	}
	return out, nil
}

func (r *memoryDepartments) SetCategoryOwner(_ context.Context, category, departmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[departmentID]; !ok {
		return unknownDepartment(departmentID)
	}
	r.owners[category] = departmentID
	return nil
}

type memoryStaff struct{ *memoryState }

func (r *memoryStaff) Create(_ context.Context, staff domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[staff.DepartmentID]; !ok {
		return unknownDepartment(staff.DepartmentID)
	}
	if _, exists := r.staff[staff.ID]; exists {
		return apperrors.NewConflict("staff member already exists", map[string]any{"staff_id": staff.ID})
	}
	for _, existing := range r.staff {
		if strings.EqualFold(existing.Email, staff.Email) {
			return apperrors.NewConflict("email already registered", map[string]any{"email": staff.Email})
		}
	}
	staff.Stats = nil
	r.staff[staff.ID] = staff
	r.staffOrder = append(r.staffOrder, staff.ID)
	return nil
}

func (r *memoryStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	staff, ok := r.staff[id]
	if !ok {
		return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
	}
	return &staff, nil
}

func (r *memoryStaff) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.staffOrder {
		if staff := r.staff[id]; strings.EqualFold(staff.Email, email) {
			return &staff, nil
		}
	}
	return nil, apperrors.NewNotFound("staff", nil)
}

func (r *memoryStaff) List(_ context.Context) ([]domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StaffMember, 0, len(r.staffOrder))
	for _, id := range r.staffOrder {
		out = append(out, r.staff[id])
	}
	return out, nil
}

type memoryNotifications struct{ *memoryState }

func (r *memoryNotifications) Create(_ context.Context, item domain.NotificationItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, item)
	return nil
}

func (r *memoryNotifications) List(_ context.Context, limit int) ([]domain.NotificationItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.notifications)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.NotificationItem, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.notifications[i])
	}
	return out, nil
}

func (r *memoryNotifications) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
			return nil
		}
	}
	return apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
}

func unknownDepartment(id string) error {
	return apperrors.NewValidationError("department does not exist", map[string]any{"department_id": id})
}

func staleWrite(id string, current time.Time) error {
	return apperrors.NewConflict("issue was modified by another request", map[string]any{
		"issue_id":   id,
		"updated_at": current,
	})
}
