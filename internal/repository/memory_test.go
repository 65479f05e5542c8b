package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

var created = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newIssue(id string) domain.Issue {
	return domain.Issue{
		ID:        id,
		Category:  "Pothole",
		CreatedAt: created,
		UpdatedAt: created,
		Status:    domain.IssueStatusPending,
		Timeline:  []domain.TimelineEntry{{At: created, Status: domain.IssueStatusPending}},
	}
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Departments.Create(ctx, domain.Department{ID: "roads", Name: "Roads"}))
	require.NoError(t, store.Staff.Create(ctx, domain.StaffMember{ID: "u3", Name: "Sunil Das", Role: domain.RoleStaff, DepartmentID: "roads", Email: "sunil@city.gov"}))
	return store
}

func TestMemoryIssuesPreserveInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, id := range []string{"i3", "i1", "i2"} {
		require.NoError(t, store.Issues.Create(ctx, newIssue(id)))
	}
	issues, err := store.Issues.List(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, "i3", issues[0].ID)
	assert.Equal(t, "i1", issues[1].ID)
	assert.Equal(t, "i2", issues[2].ID)
}

func TestMemoryIssuesReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Issues.Create(ctx, newIssue("i1")))

	got, err := store.Issues.GetByID(ctx, "i1")
	require.NoError(t, err)
	got.Timeline[0].Note = "tampered"
	got.Status = domain.IssueStatusResolved

	again, err := store.Issues.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, again.Timeline[0].Note)
	assert.Equal(t, domain.IssueStatusPending, again.Status)
}

func TestMemoryIssueSaveDetectsStaleWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Issues.Create(ctx, newIssue("i1")))

	next := newIssue("i1")
	next.UpdatedAt = created.Add(time.Hour)
	stale := created.Add(-time.Minute)

	err := store.Issues.Save(ctx, next, &stale)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	expected := created
	require.NoError(t, store.Issues.Save(ctx, next, &expected))

	err = store.Issues.Save(ctx, next, &expected)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestMemoryIssueErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Issues.GetByID(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	err = store.Issues.Save(ctx, newIssue("missing"), nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	require.NoError(t, store.Issues.Create(ctx, newIssue("i1")))
	err = store.Issues.Create(ctx, newIssue("i1"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestMemoryStaffRequiresDepartment(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	err := store.Staff.Create(ctx, domain.StaffMember{ID: "u9", DepartmentID: "water", Email: "x@city.gov"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	err = store.Staff.Create(ctx, domain.StaffMember{ID: "u9", DepartmentID: "roads", Email: "SUNIL@city.gov"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	staff, err := store.Staff.List(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, 1)
}

func TestMemoryStaffLookupByEmailIgnoresCase(t *testing.T) {
	store := seededStore(t)
	staff, err := store.Staff.GetByEmail(context.Background(), "Sunil@City.gov")
	require.NoError(t, err)
	assert.Equal(t, "u3", staff.ID)
}

func TestMemoryCategoryOwners(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	require.NoError(t, store.Departments.SetCategoryOwner(ctx, "Pothole", "roads"))
	err := store.Departments.SetCategoryOwner(ctx, "Water", "water")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	owners, err := store.Departments.CategoryOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryDepartments{"Pothole": "roads"}, owners)
}

func TestMemoryNotificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, store.Notifications.Create(ctx, domain.NotificationItem{ID: id}))
	}
	items, err := store.Notifications.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n3", items[0].ID)
	assert.Equal(t, "n2", items[1].ID)

	require.NoError(t, store.Notifications.MarkRead(ctx, "n1"))
	all, err := store.Notifications.List(ctx, 0)
	require.NoError(t, err)
	assert.True(t, all[2].Read)

	err = store.Notifications.MarkRead(ctx, "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestMemoryConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Issues.Create(ctx, newIssue("i1")))

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			issue, err := store.Issues.GetByID(ctx, "i1")
			if err != nil {
				return
			}
			issue.UpdatedAt = issue.UpdatedAt.Add(time.Duration(n+1) * time.Second)
			_ = store.Issues.Save(ctx, *issue, nil)
		}(n)
	}
	wg.Wait()

	issues, err := store.Issues.List(ctx)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestAuditReportsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	orphan := newIssue("i1")
	orphan.AssignedTo = strPtr("ghost")
	orphan.Timeline = append(orphan.Timeline, domain.TimelineEntry{At: created, Status: domain.IssueStatusPending, By: strPtr("u3")})
	require.NoError(t, store.Issues.Create(ctx, orphan))

	clean := newIssue("i2")
	clean.AssignedTo = strPtr("u3")
	require.NoError(t, store.Issues.Create(ctx, clean))

	warnings, err := Audit(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []domain.IntegrityWarning{
		{Kind: domain.IntegrityUnknownAssignee, EntityID: "i1", Ref: "ghost"},
	}, warnings)
}

func TestMemoryAppendNoteKeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Issues.Create(ctx, newIssue("i1")))

	note := domain.InternalNote{ID: "note1", At: created.Add(time.Hour), By: strPtr("u3"), Body: "Crew dispatched"}
	require.NoError(t, store.Issues.AppendNote(ctx, "i1", note))

	got, err := store.Issues.GetByID(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Crew dispatched", got.Notes[0].Body)
	assert.Equal(t, created, got.UpdatedAt)
	assert.Len(t, got.Timeline, 1)

	err = store.Issues.AppendNote(ctx, "missing", note)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
