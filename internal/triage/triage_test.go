package triage

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func issueFixture(id, category string, status domain.IssueStatus, description, address string) domain.Issue {
	timeline := []domain.TimelineEntry{{At: base, Status: domain.IssueStatusPending}}
	if status != domain.IssueStatusPending {
		timeline = append(timeline, domain.TimelineEntry{At: base.Add(time.Hour), Status: status})
	}
	return domain.Issue{
		ID:          id,
		Category:    category,
		Description: description,
		CreatedAt:   base,
		UpdatedAt:   timeline[len(timeline)-1].At,
		Location:    domain.Location{Ward: "Ward 12", Address: address},
		Status:      status,
		Timeline:    timeline,
	}
}

func sampleIssues() []domain.Issue {
	return []domain.Issue{
		issueFixture("i1001", "Pothole", domain.IssueStatusPending, "Large pothole near Sector 4 market", "Sector 4, Bokaro Steel City"),
		issueFixture("i1002", "Garbage", domain.IssueStatusCritical, "Overflowing garbage bin behind community hall", "Ashok Nagar, Ranchi"),
		issueFixture("i1003", "Streetlight", domain.IssueStatusResolved, "Streetlight flickering near Block B", "Sakchi, Jamshedpur"),
		issueFixture("i1004", "Pothole", domain.IssueStatusInProgress, "सड़क पर गड्ढा", ""),
	}
}

func ids(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.ID)
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	issues := []domain.Issue{
		issueFixture("i1001", "Pothole", domain.IssueStatusPending, "Pothole", ""),
		issueFixture("i1002", "Garbage", domain.IssueStatusCritical, "Garbage", ""),
	}
	got := Filter(issues, FilterSpec{Status: string(domain.IssueStatusCritical)})
	assert.Equal(t, []string{"i1002"}, ids(got))
}

func TestFilterIdentity(t *testing.T) {
	issues := sampleIssues()
	got := Filter(issues, FilterSpec{Status: All, Category: All, Text: ""})
	assert.Equal(t, issues, got)
}

func TestFilterEmptyInput(t *testing.T) {
	assert.Empty(t, Filter(nil, FilterSpec{Text: "pothole"}))
}

func TestFilterText(t *testing.T) {
	tests := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{name: "case insensitive description", spec: FilterSpec{Text: "POTHOLE"}, want: []string{"i1001"}},
		{name: "matches address", spec: FilterSpec{Text: "ranchi"}, want: []string{"i1002"}},
		{name: "whitespace only is absent", spec: FilterSpec{Text: "   "}, want: []string{"i1001", "i1002", "i1003", "i1004"}},
		{name: "trimmed needle", spec: FilterSpec{Text: "  sakchi  "}, want: []string{"i1003"}},
		{name: "devanagari", spec: FilterSpec{Text: "गड्ढा"}, want: []string{"i1004"}},
		{name: "and with category", spec: FilterSpec{Category: "Pothole", Text: "sector"}, want: []string{"i1001"}},
		{name: "no match", spec: FilterSpec{Category: "Garbage", Text: "sector"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleIssues(), tt.spec)))
		})
	}
}

func TestFilterUnicodeFolding(t *testing.T) {
	issues := []domain.Issue{issueFixture("i1", "Road", domain.IssueStatusPending, "Straße blockiert", "")}
	assert.Len(t, Filter(issues, FilterSpec{Text: "STRASSE"}), 1)
}

func TestFilterPreservesOrder(t *testing.T) {
	issues := sampleIssues()
	specs := []FilterSpec{
		{Category: "Pothole"},
		{Status: string(domain.IssueStatusResolved)},
		{Text: "near"},
		{Ward: "Ward 12"},
	}
	for _, spec := range specs {
		got := Filter(issues, spec)
		pos := -1
		for _, g := range got {
			next := -1
			for idx := range issues {
				if issues[idx].ID == g.ID {
					next = idx
				}
			}
			require.Greater(t, next, pos, "result must be an ordered subsequence")
			pos = next
		}
	}
}

func TestFilterAssignedTo(t *testing.T) {
	issues := sampleIssues()
	issues[1].AssignedTo = strPtr("u4")
	assert.Equal(t, []string{"i1002"}, ids(Filter(issues, FilterSpec{AssignedTo: "u4"})))
}

func TestFilterSpecValidate(t *testing.T) {
	assert.NoError(t, FilterSpec{Status: "all"}.Validate())
	assert.NoError(t, FilterSpec{Status: "IN_PROGRESS"}.Validate())
	err := FilterSpec{Status: "DONE"}.Validate()
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCategoriesFirstSeen(t *testing.T) {
	assert.Equal(t, []string{"Pothole", "Garbage", "Streetlight"}, Categories(sampleIssues()))
}

func TestTransitionResolvesIssue(t *testing.T) {
	issue := issueFixture("i1001", "Pothole", domain.IssueStatusInProgress, "Pothole", "")
	before := len(issue.Timeline)

	updated, err := Transition(issue, domain.IssueStatusResolved, strPtr("u2"), "Fixed pothole", base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, updated.Status)
	require.Len(t, updated.Timeline, before+1)
	last := updated.Timeline[len(updated.Timeline)-1]
	assert.Equal(t, domain.IssueStatusResolved, last.Status)
	assert.Equal(t, "Fixed pothole", last.Note)
	require.NotNil(t, last.By)
	assert.Equal(t, "u2", *last.By)
	assert.Equal(t, base.Add(48*time.Hour), updated.UpdatedAt)

	assert.Equal(t, domain.IssueStatusInProgress, issue.Status, "input must not be mutated")
	assert.Len(t, issue.Timeline, before)

	_, err = Transition(updated, domain.IssueStatusPending, nil, "", base.Add(49*time.Hour))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestTransitionOnResolvedLeavesIssueUnchanged(t *testing.T) {
	issue := issueFixture("i1003", "Streetlight", domain.IssueStatusResolved, "Streetlight", "")
	snapshot := issue.Clone()
	for _, to := range domain.IssueStatuses {
		result, err := Transition(issue, to, strPtr("u1"), "again", base.Add(72*time.Hour))
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
		assert.True(t, reflect.DeepEqual(snapshot, issue))
		assert.True(t, reflect.DeepEqual(snapshot, result))
	}
}

func TestTransitionSequenceKeepsInvariants(t *testing.T) {
	issue := issueFixture("i9", "Water", domain.IssueStatusPending, "Leak", "")
	steps := []domain.IssueStatus{
		domain.IssueStatusCritical,
		domain.IssueStatusInProgress,
		domain.IssueStatusInProgress,
		domain.IssueStatusCritical,
		domain.IssueStatusResolved,
	}
	now := base
	for _, to := range steps {
		now = now.Add(time.Hour)
		var err error
		issue, err = Transition(issue, to, nil, "", now)
		require.NoError(t, err)
		require.NoError(t, CheckInvariants(issue))
		assert.Equal(t, domain.IssueStatusPending, issue.Timeline[0].Status)
		assert.Equal(t, issue.Status, issue.Timeline[len(issue.Timeline)-1].Status)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	issue := issueFixture("i1", "Road", domain.IssueStatusPending, "x", "")
	_, err := Transition(issue, domain.IssueStatus("CLOSED"), nil, "", base)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestTransitionClampsClockSkew(t *testing.T) {
	issue := issueFixture("i1", "Road", domain.IssueStatusInProgress, "x", "")
	updated, err := Transition(issue, domain.IssueStatusCritical, nil, "", base.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	require.NoError(t, CheckInvariants(updated))
}

func TestAssignDoesNotTouchTimeline(t *testing.T) {
	issue := issueFixture("i1001", "Pothole", domain.IssueStatusInProgress, "Pothole", "")
	staff := &domain.StaffMember{ID: "u3", Role: domain.RoleStaff, DepartmentID: "roads"}
	owners := domain.CategoryDepartments{"Pothole": "roads"}

	updated, err := Assign(issue, domain.RoleStaff, staff, owners, base.Add(3*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "u3", *updated.AssignedTo)
	assert.Equal(t, issue.Timeline, updated.Timeline)
	assert.Equal(t, issue.Status, updated.Status)
	assert.Equal(t, base.Add(3*time.Hour), updated.UpdatedAt)
	assert.Nil(t, issue.AssignedTo)
}

func TestAssignDepartmentMapping(t *testing.T) {
	issue := issueFixture("i1002", "Garbage", domain.IssueStatusCritical, "Garbage", "")
	owners := domain.CategoryDepartments{"Garbage": "sanitation"}
	roadsStaff := &domain.StaffMember{ID: "u3", Role: domain.RoleStaff, DepartmentID: "roads"}
	roadsHead := &domain.StaffMember{ID: "u2", Role: domain.RoleDeptHead, DepartmentID: "roads"}

	tests := []struct {
		name    string
		actor   domain.Role
		staff   *domain.StaffMember
		owners  domain.CategoryDepartments
		wantErr bool
	}{
		{name: "staff actor cross department", actor: domain.RoleStaff, staff: roadsStaff, owners: owners, wantErr: true},
		{name: "staff actor picks dept head elsewhere", actor: domain.RoleStaff, staff: roadsHead, owners: owners, wantErr: true},
		{name: "admin actor cross department", actor: domain.RoleAdmin, staff: roadsStaff, owners: owners},
		{name: "dept head actor cross department", actor: domain.RoleDeptHead, staff: roadsStaff, owners: owners},
		{name: "staff actor same department", actor: domain.RoleStaff, staff: &domain.StaffMember{ID: "u4", Role: domain.RoleStaff, DepartmentID: "sanitation"}, owners: owners},
		{name: "unmapped category", actor: domain.RoleStaff, staff: &domain.StaffMember{ID: "u9", Role: domain.RoleStaff, DepartmentID: "water"}, owners: domain.CategoryDepartments{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := Assign(issue, tt.actor, tt.staff, tt.owners, base)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.staff.ID, *updated.AssignedTo)
		})
	}
}

func TestAssignResolvedFails(t *testing.T) {
	issue := issueFixture("i1003", "Streetlight", domain.IssueStatusResolved, "x", "")
	_, err := Assign(issue, domain.RoleAdmin, &domain.StaffMember{ID: "u1", Role: domain.RoleAdmin}, nil, base)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
}

func TestAssignUnknownStaff(t *testing.T) {
	issue := issueFixture("i1", "Road", domain.IssueStatusPending, "x", "")
	_, err := Assign(issue, domain.RoleAdmin, nil, nil, base)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestNewIssue(t *testing.T) {
	issue, err := NewIssue("i2000", ReportInput{
		Category:    " Water ",
		Description: "Pipe burst",
		Location:    domain.Location{Lat: 23.3, Lng: 85.3, Ward: "Ward 6"},
		Reporter:    &domain.CitizenInfo{Name: "Sita", Phone: "+91 99887 77665", Language: domain.LanguageHindi},
	}, base)
	require.NoError(t, err)
	assert.Equal(t, "Water", issue.Category)
	assert.Equal(t, domain.IssueStatusPending, issue.Status)
	require.NoError(t, CheckInvariants(issue))

	_, err = NewIssue("i2001", ReportInput{Category: "Water"}, base)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = NewIssue("i2002", ReportInput{Category: "Water", Description: "x", Reporter: &domain.CitizenInfo{Language: "fr"}}, base)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCheckInvariants(t *testing.T) {
	issue := issueFixture("i1", "Road", domain.IssueStatusInProgress, "x", "")
	issue.Status = domain.IssueStatusCritical
	assert.Error(t, CheckInvariants(issue))

	issue = issueFixture("i1", "Road", domain.IssueStatusInProgress, "x", "")
	issue.Timeline[0].Status = domain.IssueStatusCritical
	assert.Error(t, CheckInvariants(issue))

	issue = issueFixture("i1", "Road", domain.IssueStatusPending, "x", "")
	issue.UpdatedAt = base.Add(-time.Minute)
	assert.Error(t, CheckInvariants(issue))
}
