package service

import (
	"context"

	"github.com/civicdesk/issue-admin/internal/analytics"
	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/repository"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// Export datasets.
const (
	DatasetIssues        = "issues"
	DatasetCategories    = "categories"
	DatasetWards         = "wards"
	DatasetResponseTimes = "response-times"
)

// AnalyticsService computes aggregates over a store snapshot.
type AnalyticsService struct {
	store *repository.Store
}

// NewAnalyticsService builds the service.
func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

type snapshot struct {
	issues      []domain.Issue
	staff       []domain.StaffMember
	departments []domain.Department
}

func (s *AnalyticsService) load(ctx context.Context, withOrg bool) (snapshot, error) {
	var snap snapshot
	var err error
	if snap.issues, err = s.store.Issues.List(ctx); err != nil {
		return snap, err
	}
	if !withOrg {
		return snap, nil
	}
	if snap.staff, err = s.store.Staff.List(ctx); err != nil {
		return snap, err
	}
	if snap.departments, err = s.store.Departments.List(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *AnalyticsService) Summary(ctx context.Context) (analytics.Summary, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(snap.issues), nil
}

func (s *AnalyticsService) StatusCounts(ctx context.Context) (map[domain.IssueStatus]int, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return analytics.CountsByStatus(snap.issues), nil
}

func (s *AnalyticsService) Categories(ctx context.Context) ([]analytics.CategoryCount, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return analytics.CountsByCategory(snap.issues), nil
}

func (s *AnalyticsService) Wards(ctx context.Context) ([]analytics.WardCount, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return analytics.HeatByWard(snap.issues), nil
}

func (s *AnalyticsService) ResponseTimes(ctx context.Context) ([]analytics.DepartmentResponse, error) {
	snap, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}
	return analytics.ResponseTimes(snap.issues, snap.staff, snap.departments), nil
}

func (s *AnalyticsService) Trend(ctx context.Context) ([]analytics.TrendPoint, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return analytics.WeeklyTrend(snap.issues), nil
}

// Export renders a dataset in the delimited export format.
func (s *AnalyticsService) Export(ctx context.Context, dataset string) (string, error) {
	snap, err := s.load(ctx, true)
	if err != nil {
		return "", err
	}
	var records []analytics.Record
	switch dataset {
	case DatasetIssues, "":
		names := make(map[string]string, len(snap.staff))
		for _, member := range snap.staff {
			names[member.ID] = member.Name
		}
		records = analytics.IssueRecords(snap.issues, names)
	case DatasetCategories:
		records = analytics.CategoryRecords(analytics.CountsByCategory(snap.issues))
	case DatasetWards:
		records = analytics.WardRecords(analytics.HeatByWard(snap.issues))
	case DatasetResponseTimes:
		records = analytics.ResponseTimeRecords(analytics.ResponseTimes(snap.issues, snap.staff, snap.departments))
	default:
		return "", apperrors.NewValidationError("unknown dataset", map[string]any{"dataset": dataset})
	}
	return analytics.EncodeDelimited(records)
}
