package worker

import (
	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/notify"
	"github.com/civicdesk/issue-admin/internal/service"
)

// NotificationWorker owns the event subscriptions that feed notifications and
// the publisher they are delivered through.
type NotificationWorker struct {
	publisher notify.Publisher
	logger    *zap.Logger
}

// StartNotificationWorker registers notification handlers. The returned
// worker must be stopped on shutdown so queued deliveries are flushed.
func StartNotificationWorker(notificationService *service.NotificationService, publisher notify.Publisher, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
		logger.Info("notification worker started")
	}
	return &NotificationWorker{publisher: publisher, logger: logger}
}

// Stop closes the delivery publisher.
func (w *NotificationWorker) Stop() {
	if w == nil || w.publisher == nil {
		return
	}
	w.publisher.Close()
	w.logger.Info("notification worker stopped")
}
