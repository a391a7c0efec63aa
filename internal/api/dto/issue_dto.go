package dto

import (
	"github.com/Malinda-kawshalya/issue-web/internal/domain"
)

// CreateIssueRequest payload. Any caller-supplied author field is ignored:
// the author is always the authenticated user.
type CreateIssueRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      domain.IssueStatus   `json:"status"`
	Priority    domain.IssuePriority `json:"priority"`
	Assignee    string               `json:"assignee"`
}

// UpdateIssueRequest carries a partial update; absent fields stay untouched.
type UpdateIssueRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Status      *domain.IssueStatus   `json:"status"`
	Priority    *domain.IssuePriority `json:"priority"`
	Assignee    *string               `json:"assignee"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}
