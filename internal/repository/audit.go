package repository

import (
	"context"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// Audit lists weak references that no longer resolve: issue assignees and
// timeline actors without a staff member, and staff or category owners
// pointing at a missing department.
func Audit(ctx context.Context, store *Store) ([]domain.IntegrityWarning, error) {
	issues, err := store.Issues.List(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := store.Staff.List(ctx)
	if err != nil {
		return nil, err
	}
	depts, err := store.Departments.List(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := store.Departments.CategoryOwners(ctx)
	if err != nil {
		return nil, err
	}

	staffIDs := make(map[string]struct{}, len(staff))
	for _, member := range staff {
		staffIDs[member.ID] = struct{}{}
	}
	deptIDs := make(map[string]struct{}, len(depts))
	for _, dept := range depts {
		deptIDs[dept.ID] = struct{}{}
	}

	var warnings []domain.IntegrityWarning
	for _, issue := range issues {
		if issue.AssignedTo != nil {
			if _, ok := staffIDs[*issue.AssignedTo]; !ok {
				warnings = append(warnings, domain.IntegrityWarning{Kind: domain.IntegrityUnknownAssignee, EntityID: issue.ID, Ref: *issue.AssignedTo})
			}
		}
		for _, entry := range issue.Timeline {
			if entry.By == nil {
				continue
			}
			if _, ok := staffIDs[*entry.By]; !ok {
				warnings = append(warnings, domain.IntegrityWarning{Kind: domain.IntegrityUnknownActor, EntityID: issue.ID, Ref: *entry.By})
			}
		}
	}
	for _, member := range staff {
		if _, ok := deptIDs[member.DepartmentID]; !ok {
			warnings = append(warnings, domain.IntegrityWarning{Kind: domain.IntegrityUnknownDepartment, EntityID: member.ID, Ref: member.DepartmentID})
		}
	}
	for category, deptID := range owners {
		if _, ok := deptIDs[deptID]; !ok {
			warnings = append(warnings, domain.IntegrityWarning{Kind: domain.IntegrityUnknownDepartment, EntityID: category, Ref: deptID})
		}
	}
	return warnings, nil
}
