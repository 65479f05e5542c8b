package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/repository"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDefaultDatasetBuilds(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	fx, err := ds.Build(now, "hash")
	require.NoError(t, err)
	assert.Len(t, fx.Departments, 4)
	assert.Len(t, fx.Staff, 4)
	assert.Len(t, fx.Issues, 3)
	assert.Len(t, fx.Notifications, 3)
	assert.Equal(t, "roads", fx.Owners["Pothole"])
	assert.Equal(t, "Sunil Das", fx.StaffNames()["u3"])

	i1001 := fx.Issues[0]
	assert.Equal(t, "i1001", i1001.ID)
	assert.Equal(t, domain.IssueStatusInProgress, i1001.Status)
	assert.Equal(t, now.Add(-120*time.Hour), i1001.CreatedAt)
	require.NotNil(t, i1001.AssignedTo)
	assert.Equal(t, "u3", *i1001.AssignedTo)
	require.Len(t, i1001.Timeline, 2)
	require.NotNil(t, i1001.Timeline[1].By)
	assert.Equal(t, "u2", *i1001.Timeline[1].By)
	assert.Equal(t, domain.LanguageHindi, fx.Issues[1].Reporter.Language)
	assert.Equal(t, "hash", fx.Staff[0].PasswordHash)
}

func TestBuildRejectsBrokenTimeline(t *testing.T) {
	ds, err := Parse([]byte(`
issues:
  - id: bad
    category: Pothole
    description: x
    created_ago: 1h
    updated_ago: 1h
    status: RESOLVED
    timeline:
      - ago: 1h
        status: PENDING
`))
	require.NoError(t, err)
	_, err = ds.Build(now, "")
	require.Error(t, err)
}

func TestApplyIntoMemoryStore(t *testing.T) {
	ctx := context.Background()
	ds, err := Default()
	require.NoError(t, err)
	fx, err := ds.Build(now, "")
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	require.NoError(t, Apply(ctx, store, fx))

	issues, err := store.Issues.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "i1001", issues[0].ID)

	feed, err := store.Notifications.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "n1", feed[0].ID)

	warnings, err := repository.Audit(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
