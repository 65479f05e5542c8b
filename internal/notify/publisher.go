// Package notify delivers notification feed items to out-of-process consumers.
package notify

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// Publisher hands a notification to a delivery channel.
type Publisher interface {
	Publish(ctx context.Context, item domain.NotificationItem) error
	Close()
}

// Subject returns the NATS subject for an item, e.g. "civic.notifications.status_update".
func Subject(prefix string, item domain.NotificationItem) string {
	return prefix + "." + strings.ToLower(string(item.Type))
}

// NATSPublisher publishes JSON-encoded items on core NATS subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, prefix, clientName string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("connected to nats", zap.String("url", conn.ConnectedUrl()))
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, item domain.NotificationItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	subject := Subject(p.prefix, item)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages.
func (p *NATSPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// LogPublisher writes items to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher builds a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(_ context.Context, item domain.NotificationItem) error {
	fields := []zap.Field{
		zap.String("notification_id", item.ID),
		zap.String("type", string(item.Type)),
		zap.String("title", item.Title),
		zap.String("message", item.Message),
	}
	if item.IssueID != nil {
		fields = append(fields, zap.String("issue_id", *item.IssueID))
	}
	p.logger.Info("notification", fields...)
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() {}
