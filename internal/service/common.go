package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/events"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// clockOrNow defaults to UTC wall time at Postgres timestamp precision, so a
// version handed to a client compares equal after a round trip.
func clockOrNow(c Clock) Clock {
	if c == nil {
		return func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
	}
	return c
}

func newID() string {
	return uuid.NewString()
}

func staffActor(session domain.Session) events.Actor {
	actor := events.Actor{Role: session.Role}
	if session.StaffID != "" {
		id := session.StaffID
		actor.StaffID = &id
	}
	return actor
}

// publishEvent dispatches after the mutation is stored. Handler failures are
// logged and never undo the mutation.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("issue_id", event.IssueID),
			zap.Error(err))
	}
}
