package analytics

import (
	"sort"
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// CategoryCount is one segment of the category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// WardCount is one cell of the ward heat map.
type WardCount struct {
	Ward  string `json:"ward"`
	Count int    `json:"count"`
}

// DepartmentResponse is the average resolution time for one department.
type DepartmentResponse struct {
	DepartmentID string  `json:"department_id"`
	Name         string  `json:"name"`
	Hours        float64 `json:"hours"`
	Resolved     int     `json:"resolved"`
}

// Summary backs the dashboard stat cards.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Critical   int `json:"critical"`
}

// TrendPoint counts issues reported in the week starting at WeekStart.
type TrendPoint struct {
	WeekStart time.Time `json:"week_start"`
	Count     int       `json:"count"`
}

// CountsByStatus tallies every status, including those with no issues.
func CountsByStatus(issues []domain.Issue) map[domain.IssueStatus]int {
	counts := make(map[domain.IssueStatus]int, len(domain.IssueStatuses))
	for _, status := range domain.IssueStatuses {
		counts[status] = 0
	}
	for _, issue := range issues {
		counts[issue.Status]++
	}
	return counts
}

// CountsByCategory groups by exact category in first-seen order.
func CountsByCategory(issues []domain.Issue) []CategoryCount {
	index := map[string]int{}
	out := []CategoryCount{}
	for _, issue := range issues {
		pos, ok := index[issue.Category]
		if !ok {
			pos = len(out)
			index[issue.Category] = pos
			out = append(out, CategoryCount{Category: issue.Category})
		}
		out[pos].Count++
	}
	return out
}

// HeatByWard groups by ward in first-seen order, skipping issues without one.
func HeatByWard(issues []domain.Issue) []WardCount {
	index := map[string]int{}
	out := []WardCount{}
	for _, issue := range issues {
		ward := issue.Location.Ward
		if ward == "" {
			continue
		}
		pos, ok := index[ward]
		if !ok {
			pos = len(out)
			index[ward] = pos
			out = append(out, WardCount{Ward: ward})
		}
		out[pos].Count++
	}
	return out
}

// AvgResponseTimeByDepartment averages createdAt→updatedAt hours over resolved
// issues whose assignee belongs to each department. Every department is
// present; departments without resolved issues report 0.
func AvgResponseTimeByDepartment(issues []domain.Issue, staff []domain.StaffMember, departments []domain.Department) map[string]float64 {
	rows := ResponseTimes(issues, staff, departments)
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.DepartmentID] = row.Hours
	}
	return out
}

// ResponseTimes is AvgResponseTimeByDepartment as rows in department order.
func ResponseTimes(issues []domain.Issue, staff []domain.StaffMember, departments []domain.Department) []DepartmentResponse {
	deptOf := make(map[string]string, len(staff))
	for _, member := range staff {
		deptOf[member.ID] = member.DepartmentID
	}

	type acc struct {
		hours float64
		n     int
	}
	totals := map[string]*acc{}
	for _, issue := range issues {
		if issue.Status != domain.IssueStatusResolved || issue.AssignedTo == nil {
			continue
		}
		deptID, ok := deptOf[*issue.AssignedTo]
		if !ok {
			continue
		}
		a := totals[deptID]
		if a == nil {
			a = &acc{}
			totals[deptID] = a
		}
		a.hours += elapsedHours(issue)
		a.n++
	}

	out := make([]DepartmentResponse, 0, len(departments))
	for _, dept := range departments {
		row := DepartmentResponse{DepartmentID: dept.ID, Name: dept.Name}
		if a := totals[dept.ID]; a != nil && a.n > 0 {
			row.Hours = a.hours / float64(a.n)
			row.Resolved = a.n
		}
		out = append(out, row)
	}
	return out
}

// StaffStats derives each staff member's resolved count and mean resolution hours.
func StaffStats(issues []domain.Issue, staff []domain.StaffMember) map[string]domain.StaffStats {
	out := make(map[string]domain.StaffStats, len(staff))
	hours := make(map[string]float64, len(staff))
	for _, member := range staff {
		out[member.ID] = domain.StaffStats{}
	}
	for _, issue := range issues {
		if issue.Status != domain.IssueStatusResolved || issue.AssignedTo == nil {
			continue
		}
		id := *issue.AssignedTo
		stats, ok := out[id]
		if !ok {
			continue
		}
		stats.Resolved++
		hours[id] += elapsedHours(issue)
		out[id] = stats
	}
	for id, stats := range out {
		if stats.Resolved > 0 {
			stats.AvgTimeHours = hours[id] / float64(stats.Resolved)
			out[id] = stats
		}
	}
	return out
}

// Summarize builds the dashboard counters.
func Summarize(issues []domain.Issue) Summary {
	counts := CountsByStatus(issues)
	return Summary{
		Total:      len(issues),
		Pending:    counts[domain.IssueStatusPending],
		InProgress: counts[domain.IssueStatusInProgress],
		Resolved:   counts[domain.IssueStatusResolved],
		Critical:   counts[domain.IssueStatusCritical],
	}
}

// WeeklyTrend counts issues per week (Monday 00:00 UTC), oldest first.
func WeeklyTrend(issues []domain.Issue) []TrendPoint {
	counts := map[time.Time]int{}
	for _, issue := range issues {
		counts[weekStart(issue.CreatedAt)]++
	}
	out := make([]TrendPoint, 0, len(counts))
	for week, n := range counts {
		out = append(out, TrendPoint{WeekStart: week, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func elapsedHours(issue domain.Issue) float64 {
	return issue.UpdatedAt.Sub(issue.CreatedAt).Hours()
}
