package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Malinda-kawshalya/issue-web/internal/events"
)

// NotificationService emits notifications for issue domain events. The
// current transport is the structured log; the subscription surface is what
// matters to callers.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueCreated, n.handleIssueCreated)
	n.dispatcher.Subscribe(events.EventIssueUpdated, n.handleIssueUpdated)
	n.dispatcher.Subscribe(events.EventIssueDeleted, n.handleIssueDeleted)
	n.dispatcher.Subscribe(events.EventIssueCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleIssueCreated(_ context.Context, event events.Event) error {
	n.logger.Info("notify: issue created",
		zap.String("issue_id", event.IssueID),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}

func (n *NotificationService) handleIssueUpdated(_ context.Context, event events.Event) error {
	n.logger.Info("notify: issue updated",
		zap.String("issue_id", event.IssueID),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}

func (n *NotificationService) handleIssueDeleted(_ context.Context, event events.Event) error {
	n.logger.Info("notify: issue deleted",
		zap.String("issue_id", event.IssueID),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}

func (n *NotificationService) handleCommentAdded(_ context.Context, event events.Event) error {
	n.logger.Info("notify: comment added",
		zap.String("issue_id", event.IssueID),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}
