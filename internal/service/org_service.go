package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/analytics"
	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/repository"
)

// OrgService manages departments, staff and category ownership.
type OrgService struct {
	store      *repository.Store
	bcryptCost int
	logger     *zap.Logger
}

// NewOrgService builds the service.
func NewOrgService(store *repository.Store, bcryptCost int, logger *zap.Logger) *OrgService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{store: store, bcryptCost: bcryptCost, logger: logger}
}

// DepartmentInput describes a new department.
type DepartmentInput struct {
	ID          string `validate:"required,max=40,alphanum"`
	Name        string `validate:"required,max=80"`
	Description string `validate:"max=500"`
}

// StaffInput describes a new staff member.
type StaffInput struct {
	ID           string      `validate:"required,max=40"`
	Name         string      `validate:"required,max=80"`
	Role         domain.Role `validate:"required,oneof=ADMIN DEPT_HEAD STAFF"`
	DepartmentID string      `validate:"required"`
	Email        string      `validate:"required,email"`
	Phone        string      `validate:"max=30"`
	Password     string      `validate:"required,min=6"`
}

// ListDepartments returns departments in creation order.
func (s *OrgService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.store.Departments.List(ctx)
}

// CreateDepartment adds a department.
func (s *OrgService) CreateDepartment(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	input.ID = strings.ToLower(strings.TrimSpace(input.ID))
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	dept := domain.Department{ID: input.ID, Name: input.Name, Description: strings.TrimSpace(input.Description)}
	if err := s.store.Departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	s.logger.Info("department created", zap.String("department_id", dept.ID))
	return &dept, nil
}

// ListStaff returns staff with stats derived from the issue store.
func (s *OrgService) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	staff, err := s.store.Staff.List(ctx)
	if err != nil {
		return nil, err
	}
	issues, err := s.store.Issues.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := analytics.StaffStats(issues, staff)
	for i := range staff {
		st := stats[staff[i].ID]
		staff[i].Stats = &st
		staff[i].PasswordHash = ""
	}
	return staff, nil
}

// CreateStaff adds a staff member. The department must exist.
func (s *OrgService) CreateStaff(ctx context.Context, input StaffInput) (*domain.StaffMember, error) {
	input.ID = strings.TrimSpace(input.ID)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	member := domain.StaffMember{
		ID:           input.ID,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
	}
	if err := s.store.Staff.Create(ctx, member); err != nil {
		return nil, err
	}
	s.logger.Info("staff created", zap.String("staff_id", member.ID), zap.String("department_id", member.DepartmentID))
	member.PasswordHash = ""
	member.Stats = &domain.StaffStats{}
	return &member, nil
}

// StaffNames maps staff ids to display names.
func (s *OrgService) StaffNames(ctx context.Context) (map[string]string, error) {
	staff, err := s.store.Staff.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(staff))
	for _, member := range staff {
		out[member.ID] = member.Name
	}
	return out, nil
}

// CategoryOwners returns the category to department table.
func (s *OrgService) CategoryOwners(ctx context.Context) (domain.CategoryDepartments, error) {
	return s.store.Departments.CategoryOwners(ctx)
}

// SetCategoryOwner routes a category to a department.
func (s *OrgService) SetCategoryOwner(ctx context.Context, category, departmentID string) error {
	category = strings.TrimSpace(category)
	if err := validateStruct(struct {
		Category     string `validate:"required"`
		DepartmentID string `validate:"required"`
	}{category, departmentID}); err != nil {
		return err
	}
	return s.store.Departments.SetCategoryOwner(ctx, category, departmentID)
}

// Audit logs and returns dangling references. They are never fatal.
func (s *OrgService) Audit(ctx context.Context) ([]domain.IntegrityWarning, error) {
	warnings, err := repository.Audit(ctx, s.store)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn("referential integrity",
			zap.String("kind", string(w.Kind)),
			zap.String("entity_id", w.EntityID),
			zap.String("ref", w.Ref))
	}
	return warnings, nil
}
