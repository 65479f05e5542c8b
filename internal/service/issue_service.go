package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/events"
	"github.com/civicdesk/issue-admin/internal/observability"
	"github.com/civicdesk/issue-admin/internal/repository"
	"github.com/civicdesk/issue-admin/internal/triage"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// casRetries bounds re-reads when a concurrent writer wins and the caller
// did not pin a version.
const casRetries = 3

// IssueService coordinates intake, triage and note-taking.
type IssueService struct {
	issues      repository.IssueRepository
	staff       repository.StaffRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         Clock
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	Store      *repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      Clock
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:      deps.Store.Issues,
		staff:       deps.Store.Staff,
		departments: deps.Store.Departments,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         clockOrNow(deps.Clock),
	}
}

// TransitionInput describes a status change request.
type TransitionInput struct {
	IssueID           string
	Status            domain.IssueStatus
	Note              string
	ExpectedUpdatedAt *time.Time
}

// AssignInput describes an assignment request.
type AssignInput struct {
	IssueID           string
	StaffID           string
	ExpectedUpdatedAt *time.Time
}

// NoteInput describes an internal note.
type NoteInput struct {
	IssueID string
	Body    string
}

// Report records a new citizen report as a PENDING issue.
func (s *IssueService) Report(ctx context.Context, input triage.ReportInput) (*domain.Issue, error) {
	issue, err := triage.NewIssue(newID(), input, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	s.logger.Info("issue reported", zap.String("issue_id", issue.ID), zap.String("category", issue.Category))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventIssueReported,
		IssueID:   issue.ID,
		Timestamp: issue.CreatedAt,
		Payload: events.IssueReportedPayload{
			Category: issue.Category,
			Ward:     issue.Location.Ward,
			Address:  issue.Location.Address,
		},
	})
	return &issue, nil
}

// Get returns one issue.
func (s *IssueService) Get(ctx context.Context, id string) (*domain.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

// List returns the issues matching spec in store order.
func (s *IssueService) List(ctx context.Context, spec triage.FilterSpec) ([]domain.Issue, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, err
	}
	return triage.Filter(issues, spec), nil
}

// Categories lists distinct categories in first-seen order.
func (s *IssueService) Categories(ctx context.Context) ([]string, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, err
	}
	return triage.Categories(issues), nil
}

// Transition moves an issue to a new status on behalf of actor.
func (s *IssueService) Transition(ctx context.Context, actor domain.Session, input TransitionInput) (*domain.Issue, error) {
	var previous domain.IssueStatus
	updated, err := s.mutate(ctx, input.IssueID, input.ExpectedUpdatedAt, func(current domain.Issue) (domain.Issue, error) {
		previous = current.Status
		var actorID *string
		if actor.StaffID != "" {
			actorID = &actor.StaffID
		}
		return triage.Transition(current, input.Status, actorID, strings.TrimSpace(input.Note), s.now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(previous), string(updated.Status))
	s.logger.Info("issue transitioned",
		zap.String("issue_id", updated.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(updated.Status)),
		zap.String("actor", actor.StaffID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventIssueStatusChanged,
		IssueID:   updated.ID,
		Actor:     staffActor(actor),
		Timestamp: updated.UpdatedAt,
		Payload: events.IssueStatusChangedPayload{
			Category:  updated.Category,
			OldStatus: previous,
			NewStatus: updated.Status,
			Note:      strings.TrimSpace(input.Note),
		},
	})
	return &updated, nil
}

// Assign routes an issue to a staff member.
func (s *IssueService) Assign(ctx context.Context, actor domain.Session, input AssignInput) (*domain.Issue, error) {
	staff, err := s.staff.GetByID(ctx, input.StaffID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": input.StaffID})
		}
		return nil, err
	}
	owners, err := s.departments.CategoryOwners(ctx)
	if err != nil {
		return nil, err
	}

	var previous *string
	updated, err := s.mutate(ctx, input.IssueID, input.ExpectedUpdatedAt, func(current domain.Issue) (domain.Issue, error) {
		previous = current.AssignedTo
		return triage.Assign(current, actor.Role, staff, owners, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("issue assigned",
		zap.String("issue_id", updated.ID),
		zap.String("staff_id", staff.ID),
		zap.String("actor", actor.StaffID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventIssueAssigned,
		IssueID:   updated.ID,
		Actor:     staffActor(actor),
		Timestamp: updated.UpdatedAt,
		Payload: events.IssueAssignedPayload{
			Category:         updated.Category,
			Address:          updated.Location.Address,
			AssigneeStaffID:  staff.ID,
			AssigneeName:     staff.Name,
			PreviousAssignee: previous,
		},
	})
	return &updated, nil
}

// AddNote attaches an internal note. Notes are allowed on resolved issues
// and never change status, timeline or updatedAt.
func (s *IssueService) AddNote(ctx context.Context, actor domain.Session, input NoteInput) (*domain.InternalNote, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("note body required", nil)
	}
	note := domain.InternalNote{ID: newID(), At: s.now(), Body: body}
	if actor.StaffID != "" {
		by := actor.StaffID
		note.By = &by
	}
	if err := s.issues.AppendNote(ctx, input.IssueID, note); err != nil {
		return nil, err
	}
	s.logger.Info("issue note added",
		zap.String("issue_id", input.IssueID),
		zap.String("note_id", note.ID),
		zap.String("actor", actor.StaffID))
	return &note, nil
}

// mutate applies fn as a compare-and-swap on updatedAt. A caller-supplied
// expected version must match the stored one; without it, lost races are
// retried against the fresh value.
func (s *IssueService) mutate(ctx context.Context, id string, expected *time.Time, fn func(domain.Issue) (domain.Issue, error)) (domain.Issue, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.issues.GetByID(ctx, id)
		if err != nil {
			return domain.Issue{}, err
		}
		if expected != nil && !current.UpdatedAt.Equal(*expected) {
			return domain.Issue{}, apperrors.NewConflict("issue was modified by another request", map[string]any{
				"issue_id":   id,
				"updated_at": current.UpdatedAt,
			})
		}
		updated, err := fn(*current)
		if err != nil {
			return domain.Issue{}, err
		}
		version := current.UpdatedAt
		err = s.issues.Save(ctx, updated, &version)
		if err == nil {
			return updated, nil
		}
		if !apperrors.HasCode(err, apperrors.CodeConflict) || expected != nil || attempt+1 >= casRetries {
			return domain.Issue{}, err
		}
	}
}
