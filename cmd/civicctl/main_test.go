package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/issue-admin/internal/analytics"
	"github.com/civicdesk/issue-admin/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExportIssues(t *testing.T) {
	out, err := run(t, "export", "--dataset", "issues")
	require.NoError(t, err)

	records, err := analytics.DecodeDelimited(strings.TrimSuffix(out, "\n"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	id, ok := records[0].Get("id")
	require.True(t, ok)
	assert.Equal(t, "i1001", id)
}

func TestExportRejectsUnknownDataset(t *testing.T) {
	_, err := run(t, "export", "--dataset", "bogus")
	assert.Error(t, err)
}

func TestAnalyticsPrintsSummary(t *testing.T) {
	out, err := run(t, "analytics")
	require.NoError(t, err)

	var report struct {
		Summary analytics.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Resolved)
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "--cost", "4", "civic123")
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(strings.TrimSpace(out), "civic123"))

	_, err = run(t, "hash-password", "short")
	assert.Error(t, err)
}

func TestAuditCleanSeed(t *testing.T) {
	out, err := run(t, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "no integrity warnings")
}
