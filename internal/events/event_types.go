package events

import (
	"time"

	"github.com/Malinda-kawshalya/issue-web/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated      EventType = "issue_created"
	EventIssueUpdated      EventType = "issue_updated"
	EventIssueDeleted      EventType = "issue_deleted"
	EventIssueCommentAdded EventType = "issue_comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title    string               `json:"title"`
	Status   domain.IssueStatus   `json:"status"`
	Priority domain.IssuePriority `json:"priority"`
}

// IssueUpdatedPayload payload.
type IssueUpdatedPayload struct {
	Status   domain.IssueStatus   `json:"status"`
	Priority domain.IssuePriority `json:"priority"`
}

// IssueDeletedPayload payload.
type IssueDeletedPayload struct {
	CommentsDeleted int64 `json:"comments_deleted"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	ContentPreview string `json:"content_preview"`
}
