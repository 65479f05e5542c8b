package triage

import (
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// CanTransition reports whether an issue in status from may move to status to.
// RESOLVED is terminal; every other pair, including same-state, is allowed.
func CanTransition(from, to domain.IssueStatus) bool {
	if !to.Valid() {
		return false
	}
	return !from.Terminal()
}

// Transition returns a copy of issue moved to status to with a new timeline entry.
// The input is never modified.
func Transition(issue domain.Issue, to domain.IssueStatus, actorID *string, note string, now time.Time) (domain.Issue, error) {
	if !to.Valid() {
		return issue, apperrors.NewValidationError("invalid status", map[string]any{"status": to})
	}
	if !CanTransition(issue.Status, to) {
		return issue, apperrors.NewInvalidTransition("issue is resolved and cannot change status", map[string]any{
			"issue_id": issue.ID,
			"from":     issue.Status,
			"to":       to,
		})
	}

	updated := issue.Clone()
	at := clampAfter(now, issue)
	updated.Status = to
	updated.UpdatedAt = at
	entry := domain.TimelineEntry{At: at, Status: to, Note: note}
	if actorID != nil && *actorID != "" {
		by := *actorID
		entry.By = &by
	}
	updated.Timeline = append(updated.Timeline, entry)
	return updated, nil
}

// Assign returns a copy of issue assigned to staff. No timeline entry is added.
// An actor without assign_any_department may only pick staff from the department
// that owns the issue's category.
func Assign(issue domain.Issue, actor domain.Role, staff *domain.StaffMember, owners domain.CategoryDepartments, now time.Time) (domain.Issue, error) {
	if staff == nil {
		return issue, apperrors.NewNotFound("staff", nil)
	}
	if issue.Status.Terminal() {
		return issue, apperrors.NewInvalidTransition("issue is resolved and cannot be reassigned", map[string]any{"issue_id": issue.ID})
	}
	if deptID, ok := owners[issue.Category]; ok && deptID != staff.DepartmentID && !actor.Can(domain.CapAssignAnyDepartment) {
		return issue, apperrors.NewValidationError("staff member is outside the department that owns this category", map[string]any{
			"category":      issue.Category,
			"department_id": deptID,
			"staff_id":      staff.ID,
		})
	}

	updated := issue.Clone()
	id := staff.ID
	updated.AssignedTo = &id
	updated.UpdatedAt = clampAfter(now, issue)
	return updated, nil
}

// CheckInvariants verifies the timeline and timestamp invariants of an issue.
func CheckInvariants(issue domain.Issue) error {
	fail := func(msg string) error {
		return apperrors.NewValidationError(msg, map[string]any{"issue_id": issue.ID})
	}
	if issue.UpdatedAt.Before(issue.CreatedAt) {
		return fail("updated_at precedes created_at")
	}
	if len(issue.Timeline) == 0 {
		return fail("timeline is empty")
	}
	if issue.Timeline[0].Status != domain.IssueStatusPending {
		return fail("timeline must start with PENDING")
	}
	if issue.Timeline[len(issue.Timeline)-1].Status != issue.Status {
		return fail("last timeline entry does not match status")
	}
	for i := 1; i < len(issue.Timeline); i++ {
		if issue.Timeline[i].At.Before(issue.Timeline[i-1].At) {
			return fail("timeline is not chronological")
		}
	}
	return nil
}

// clampAfter keeps updatedAt and timeline order monotonic under clock skew.
func clampAfter(now time.Time, issue domain.Issue) time.Time {
	floor := issue.UpdatedAt
	if issue.CreatedAt.After(floor) {
		floor = issue.CreatedAt
	}
	if n := len(issue.Timeline); n > 0 && issue.Timeline[n-1].At.After(floor) {
		floor = issue.Timeline[n-1].At
	}
	if now.Before(floor) {
		return floor
	}
	return now
}
