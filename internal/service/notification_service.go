package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/events"
	"github.com/civicdesk/issue-admin/internal/notify"
	"github.com/civicdesk/issue-admin/internal/observability"
	"github.com/civicdesk/issue-admin/internal/repository"
)

// NotificationService turns domain events into feed items and hands them to
// the delivery publisher.
type NotificationService struct {
	dispatcher events.Dispatcher
	feed       repository.NotificationRepository
	publisher  notify.Publisher
	metrics    *observability.Metrics
	logger     *zap.Logger
	feedLimit  int
}

// NotificationDependencies bundles collaborators for the service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Feed       repository.NotificationRepository
	Publisher  notify.Publisher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	FeedLimit  int
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = notify.NewLogPublisher(logger)
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		feed:       deps.Feed,
		publisher:  publisher,
		metrics:    deps.Metrics,
		logger:     logger,
		feedLimit:  deps.FeedLimit,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueReported, n.handleIssueReported)
	n.dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleIssueStatusChanged)
	n.dispatcher.Subscribe(events.EventIssueAssigned, n.handleIssueAssigned)
}

// List returns the newest feed items.
func (n *NotificationService) List(ctx context.Context) ([]domain.NotificationItem, error) {
	return n.feed.List(ctx, n.feedLimit)
}

// MarkRead flags a feed item as read.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	return n.feed.MarkRead(ctx, id)
}

func (n *NotificationService) handleIssueReported(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueReportedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	where := firstNonEmpty(payload.Address, payload.Ward)
	message := payload.Category + " reported"
	if where != "" {
		message += " in " + where
	}
	return n.emit(ctx, event, domain.NotificationNewIssue, "New issue reported", message)
}

func (n *NotificationService) handleIssueStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	message := fmt.Sprintf("%s issue moved to %s", payload.Category, statusLabel(payload.NewStatus))
	if payload.NewStatus == domain.IssueStatusResolved {
		message = payload.Category + " issue resolved"
	}
	return n.emit(ctx, event, domain.NotificationStatusUpdate, "Status updated", message)
}

func (n *NotificationService) handleIssueAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	message := payload.Category
	if payload.Address != "" {
		message += " near " + payload.Address
	}
	message += " to " + payload.AssigneeName
	return n.emit(ctx, event, domain.NotificationAssignment, "Task assigned", message)
}

// emit stores the item first; delivery failure leaves it in the feed.
func (n *NotificationService) emit(ctx context.Context, event events.Event, kind domain.NotificationType, title, message string) error {
	issueID := event.IssueID
	item := domain.NotificationItem{
		ID:        newID(),
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: event.Timestamp,
		IssueID:   &issueID,
	}
	if err := n.feed.Create(ctx, item); err != nil {
		n.metrics.RecordNotification(string(kind), "store_failed")
		return fmt.Errorf("store notification: %w", err)
	}
	if err := n.publisher.Publish(ctx, item); err != nil {
		n.metrics.RecordNotification(string(kind), "delivery_failed")
		return fmt.Errorf("deliver notification: %w", err)
	}
	n.metrics.RecordNotification(string(kind), "delivered")
	return nil
}

func statusLabel(status domain.IssueStatus) string {
	return strings.ReplaceAll(strings.ToLower(string(status)), "_", " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
