package triage

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// All is the sentinel that disables a status or category constraint.
const All = "all"

// FilterSpec combines the constraints used to query issues.
type FilterSpec struct {
	Status     string
	Category   string
	Text       string
	AssignedTo string
	Ward       string
}

// Validate rejects unknown status values.
func (f FilterSpec) Validate() error {
	if unconstrained(f.Status) {
		return nil
	}
	if !domain.IssueStatus(f.Status).Valid() {
		return apperrors.NewValidationError("invalid status filter", map[string]any{"status": f.Status})
	}
	return nil
}

// Filter returns the issues matching every constraint of spec, in input order.
func Filter(issues []domain.Issue, spec FilterSpec) []domain.Issue {
	needle := strings.TrimSpace(spec.Text)
	caser := cases.Fold()
	if needle != "" {
		needle = caser.String(needle)
	}

	result := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if !unconstrained(spec.Status) && string(issue.Status) != spec.Status {
			continue
		}
		if !unconstrained(spec.Category) && issue.Category != spec.Category {
			continue
		}
		if spec.AssignedTo != "" && (issue.AssignedTo == nil || *issue.AssignedTo != spec.AssignedTo) {
			continue
		}
		if spec.Ward != "" && issue.Location.Ward != spec.Ward {
			continue
		}
		if needle != "" && !matchesText(caser, issue, needle) {
			continue
		}
		result = append(result, issue)
	}
	return result
}

// Categories lists distinct categories in first-seen order.
func Categories(issues []domain.Issue) []string {
	seen := make(map[string]struct{}, len(issues))
	out := []string{}
	for _, issue := range issues {
		if _, ok := seen[issue.Category]; ok {
			continue
		}
		seen[issue.Category] = struct{}{}
		out = append(out, issue.Category)
	}
	return out
}

func matchesText(caser cases.Caser, issue domain.Issue, needle string) bool {
	if strings.Contains(caser.String(issue.Description), needle) {
		return true
	}
	return issue.Location.Address != "" && strings.Contains(caser.String(issue.Location.Address), needle)
}

func unconstrained(v string) bool {
	return v == "" || v == All
}
