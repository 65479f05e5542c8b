package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/issue-admin/internal/domain"
)

var base = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC) // Wednesday

func strPtr(s string) *string { return &s }

func issue(id, category, ward string, status domain.IssueStatus, assignee string, took time.Duration) domain.Issue {
	i := domain.Issue{
		ID:        id,
		Category:  category,
		CreatedAt: base,
		UpdatedAt: base.Add(took),
		Location:  domain.Location{Ward: ward},
		Status:    status,
	}
	if assignee != "" {
		i.AssignedTo = strPtr(assignee)
	}
	return i
}

func directory() ([]domain.StaffMember, []domain.Department) {
	staff := []domain.StaffMember{
		{ID: "u1", Name: "Anita Sharma", Role: domain.RoleAdmin, DepartmentID: "sanitation"},
		{ID: "u3", Name: "Sunil Das", Role: domain.RoleStaff, DepartmentID: "roads"},
	}
	depts := []domain.Department{
		{ID: "sanitation", Name: "Sanitation"},
		{ID: "roads", Name: "Roads"},
		{ID: "power", Name: "Power"},
	}
	return staff, depts
}

func TestCountsByStatusZeroFilled(t *testing.T) {
	issues := []domain.Issue{
		issue("i1", "Pothole", "Ward 1", domain.IssueStatusPending, "", 0),
		issue("i2", "Pothole", "Ward 1", domain.IssueStatusPending, "", 0),
		issue("i3", "Garbage", "Ward 2", domain.IssueStatusCritical, "", 0),
	}
	counts := CountsByStatus(issues)
	assert.Equal(t, map[domain.IssueStatus]int{
		domain.IssueStatusPending:    2,
		domain.IssueStatusInProgress: 0,
		domain.IssueStatusResolved:   0,
		domain.IssueStatusCritical:   1,
	}, counts)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, len(issues), total)
}

func TestCountsByStatusEmpty(t *testing.T) {
	counts := CountsByStatus(nil)
	assert.Len(t, counts, 4)
	for _, n := range counts {
		assert.Zero(t, n)
	}
}

func TestCountsByCategoryFirstSeenOrder(t *testing.T) {
	issues := []domain.Issue{
		issue("i1", "Pothole", "", domain.IssueStatusPending, "", 0),
		issue("i2", "Garbage", "", domain.IssueStatusPending, "", 0),
		issue("i3", "Pothole", "", domain.IssueStatusPending, "", 0),
	}
	assert.Equal(t, []CategoryCount{{Category: "Pothole", Count: 2}, {Category: "Garbage", Count: 1}}, CountsByCategory(issues))
}

func TestHeatByWardDropsEmptyWard(t *testing.T) {
	issues := []domain.Issue{
		issue("i1", "Pothole", "Ward 12", domain.IssueStatusPending, "", 0),
		issue("i2", "Pothole", "", domain.IssueStatusPending, "", 0),
		issue("i3", "Garbage", "Ward 6", domain.IssueStatusPending, "", 0),
		issue("i4", "Garbage", "Ward 12", domain.IssueStatusPending, "", 0),
	}
	assert.Equal(t, []WardCount{{Ward: "Ward 12", Count: 2}, {Ward: "Ward 6", Count: 1}}, HeatByWard(issues))
}

func TestAvgResponseTimeByDepartment(t *testing.T) {
	staff, depts := directory()
	issues := []domain.Issue{
		issue("i1", "Pothole", "", domain.IssueStatusResolved, "u3", 10*time.Hour),
		issue("i2", "Pothole", "", domain.IssueStatusResolved, "u3", 20*time.Hour),
		issue("i3", "Pothole", "", domain.IssueStatusInProgress, "u3", 100*time.Hour),
		issue("i4", "Garbage", "", domain.IssueStatusResolved, "ghost", 50*time.Hour),
		issue("i5", "Garbage", "", domain.IssueStatusResolved, "", 50*time.Hour),
	}

	got := AvgResponseTimeByDepartment(issues, staff, depts)
	assert.Equal(t, map[string]float64{"sanitation": 0, "roads": 15, "power": 0}, got)

	rows := ResponseTimes(issues, staff, depts)
	require.Len(t, rows, 3)
	assert.Equal(t, DepartmentResponse{DepartmentID: "roads", Name: "Roads", Hours: 15, Resolved: 2}, rows[1])
}

func TestStaffStatsDerived(t *testing.T) {
	staff, _ := directory()
	issues := []domain.Issue{
		issue("i1", "Garbage", "", domain.IssueStatusResolved, "u1", 4*time.Hour),
		issue("i2", "Garbage", "", domain.IssueStatusResolved, "u1", 8*time.Hour),
		issue("i3", "Pothole", "", domain.IssueStatusPending, "u3", 0),
	}
	stats := StaffStats(issues, staff)
	assert.Equal(t, domain.StaffStats{Resolved: 2, AvgTimeHours: 6}, stats["u1"])
	assert.Equal(t, domain.StaffStats{}, stats["u3"])
}

func TestSummarize(t *testing.T) {
	issues := []domain.Issue{
		issue("i1", "Pothole", "", domain.IssueStatusPending, "", 0),
		issue("i2", "Pothole", "", domain.IssueStatusResolved, "", 0),
		issue("i3", "Pothole", "", domain.IssueStatusCritical, "", 0),
	}
	assert.Equal(t, Summary{Total: 3, Pending: 1, Resolved: 1, Critical: 1}, Summarize(issues))
}

func TestWeeklyTrend(t *testing.T) {
	a := issue("i1", "Pothole", "", domain.IssueStatusPending, "", 0)
	b := issue("i2", "Pothole", "", domain.IssueStatusPending, "", 0)
	b.CreatedAt = base.AddDate(0, 0, -7)
	c := issue("i3", "Pothole", "", domain.IssueStatusPending, "", 0)
	c.CreatedAt = base.AddDate(0, 0, 2) // Friday, same week as base

	trend := WeeklyTrend([]domain.Issue{a, b, c})
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []TrendPoint{
		{WeekStart: monday.AddDate(0, 0, -7), Count: 1},
		{WeekStart: monday, Count: 2},
	}, trend)
}

func TestEncodeDelimitedQuotesEveryValue(t *testing.T) {
	out, err := EncodeDelimited([]Record{
		{{Name: "name", Value: "Pothole"}, {Name: "value", Value: 3}},
		{{Name: "name", Value: `He said "hi", twice`}, {Name: "value", Value: nil}},
	})
	require.NoError(t, err)
	assert.Equal(t, "name,value\n\"Pothole\",\"3\"\n\"He said \\\"hi\\\", twice\",\"\"", out)
}

func TestEncodeDelimitedKeepsHTMLCharacters(t *testing.T) {
	records := []Record{{{Name: "category", Value: "Roads & Drains <urgent>"}, {Name: "hrs", Value: 5}}}
	out, err := EncodeDelimited(records)
	require.NoError(t, err)
	assert.Equal(t, "category,hrs\n\"Roads & Drains <urgent>\",\"5\"", out)

	decoded, err := DecodeDelimited(out)
	require.NoError(t, err)
	value, ok := decoded[0].Get("category")
	require.True(t, ok)
	assert.Equal(t, "Roads & Drains <urgent>", value)
}

func TestEncodeDelimitedEmpty(t *testing.T) {
	out, err := EncodeDelimited(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDelimitedRoundTrip(t *testing.T) {
	records := []Record{
		{{Name: "id", Value: "i1001"}, {Name: "description", Value: "line one\nline two, with comma"}},
		{{Name: "id", Value: "i1002"}, {Name: "description", Value: "कूड़ा \"bin\""}},
	}
	encoded, err := EncodeDelimited(records)
	require.NoError(t, err)

	decoded, err := DecodeDelimited(encoded)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestDecodeDelimitedRejectsMalformedRow(t *testing.T) {
	_, err := DecodeDelimited("a,b\n\"x\",\"y\"\n\"only one\"")
	require.Error(t, err)
}

func TestIssueRecordsUnassigned(t *testing.T) {
	issues := []domain.Issue{
		issue("i1", "Pothole", "Ward 1", domain.IssueStatusPending, "ghost", 0),
		issue("i2", "Pothole", "Ward 1", domain.IssueStatusPending, "u3", 0),
	}
	records := IssueRecords(issues, map[string]string{"u3": "Sunil Das"})
	first, _ := records[0].Get("assignedTo")
	second, _ := records[1].Get("assignedTo")
	assert.Equal(t, Unassigned, first)
	assert.Equal(t, "Sunil Das", second)
}
