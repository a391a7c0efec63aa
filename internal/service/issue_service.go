package service

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Malinda-kawshalya/issue-web/internal/domain"
	"github.com/Malinda-kawshalya/issue-web/internal/events"
	"github.com/Malinda-kawshalya/issue-web/internal/repository"
	apperrors "github.com/Malinda-kawshalya/issue-web/pkg/util"
)

// IssueService coordinates issue and comment workflows for authenticated
// users. Every operation assumes the acting user was resolved by the auth
// middleware.
type IssueService struct {
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	policy     MutationPolicy
	statsCache *StatsCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Policy      MutationPolicy
	StatsCache  *StatsCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	Title       string               `validate:"required,min=3,max=200"`
	Description string               `validate:"max=2000"`
	Status      domain.IssueStatus   `validate:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	Priority    domain.IssuePriority `validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Assignee    string               `validate:"max=100"`
}

// IssueUpdateInput carries a partial update; only present fields are
// re-validated and applied. The author is not patchable.
type IssueUpdateInput struct {
	Title       *string               `validate:"omitempty,min=3,max=200"`
	Description *string               `validate:"omitempty,max=2000"`
	Status      *domain.IssueStatus   `validate:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	Priority    *domain.IssuePriority `validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Assignee    *string               `validate:"omitempty,max=100"`
}

// AuthorInfo is the joined author shape embedded in views.
type AuthorInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IssueView is the boundary read-shape: stored fields plus joined author and
// derived values.
type IssueView struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Status       domain.IssueStatus   `json:"status"`
	Priority     domain.IssuePriority `json:"priority"`
	Assignee     string               `json:"assignee,omitempty"`
	Author       AuthorInfo           `json:"author"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
	AgeInDays    int                  `json:"ageInDays"`
	IsOverdue    bool                 `json:"isOverdue"`
	CommentCount int64                `json:"commentCount"`
}

// CommentView is the boundary read-shape for comments.
type CommentView struct {
	ID        string     `json:"id"`
	Issue     string     `json:"issue"`
	Author    AuthorInfo `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	policy := deps.Policy
	if policy == nil {
		policy = AllowAllPolicy{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		policy:     policy,
		statsCache: deps.StatsCache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListAllIssues returns every issue, newest first. Any authenticated caller
// may read any issue.
func (s *IssueService) ListAllIssues(ctx context.Context) ([]IssueView, error) {
	issues, err := s.issues.List(ctx, repository.IssueFilter{})
	if err != nil {
		return nil, err
	}
	return s.buildIssueViews(ctx, issues)
}

// ListMyIssues returns issues authored by the user, newest first.
func (s *IssueService) ListMyIssues(ctx context.Context, userID primitive.ObjectID) ([]IssueView, error) {
	issues, err := s.issues.List(ctx, repository.IssueFilter{AuthorID: &userID})
	if err != nil {
		return nil, err
	}
	return s.buildIssueViews(ctx, issues)
}

// Statistics computes per-author issue counts, consulting the cache first.
func (s *IssueService) Statistics(ctx context.Context, userID primitive.ObjectID) (domain.IssueStats, error) {
	if cached, ok := s.statsCache.Get(ctx, userID); ok {
		return *cached, nil
	}

	counts, err := s.issues.StatusCountsByAuthor(ctx, userID)
	if err != nil {
		return domain.IssueStats{}, err
	}
	stats := domain.DeriveStats(counts)
	s.statsCache.Set(ctx, userID, stats)
	return stats, nil
}

// GetIssue fetches one issue by its hex id.
func (s *IssueService) GetIssue(ctx context.Context, rawID string) (*IssueView, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.buildIssueViews(ctx, []domain.Issue{*issue})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreateIssue validates the draft and persists it with the author forced to
// the acting user, regardless of any caller-supplied author.
func (s *IssueService) CreateIssue(ctx context.Context, actor *domain.User, input IssueCreateInput) (*IssueView, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Assignee = strings.TrimSpace(input.Assignee)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Assignee:    input.Assignee,
		Author:      actor.ID,
	}
	if issue.Status == "" {
		issue.Status = domain.IssueStatusOpen
	}
	if issue.Priority == "" {
		issue.Priority = domain.IssuePriorityLow
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(ctx, actor.ID)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID.Hex(),
		ActorID: actor.ID.Hex(),
		Payload: events.IssueCreatedPayload{
			Title:    issue.Title,
			Status:   issue.Status,
			Priority: issue.Priority,
		},
	})

	view := s.issueView(issue, authorInfo(actor), 0, time.Now())
	return &view, nil
}

// UpdateIssue applies a partial update. The author field is never touched.
func (s *IssueService) UpdateIssue(ctx context.Context, actor *domain.User, rawID string, input IssueUpdateInput) (*IssueView, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	trimPtr(input.Title)
	trimPtr(input.Description)
	trimPtr(input.Assignee)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanMutate(actor, existing) {
		return nil, apperrors.NewForbidden("not allowed to modify this issue")
	}

	updated, err := s.issues.UpdateFields(ctx, id, repository.IssuePatch{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Assignee:    input.Assignee,
	})
	if err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(ctx, updated.Author)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueUpdated,
		IssueID: updated.ID.Hex(),
		ActorID: actor.ID.Hex(),
		Payload: events.IssueUpdatedPayload{
			Status:   updated.Status,
			Priority: updated.Priority,
		},
	})

	views, err := s.buildIssueViews(ctx, []domain.Issue{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteIssue removes the issue, then cascades to its comments. The issue
// record goes first so a failure in comment cleanup leaves orphaned comments
// rather than a resurrected issue; cleanup is best effort and never rolled
// back.
func (s *IssueService) DeleteIssue(ctx context.Context, actor *domain.User, rawID string) error {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return apperrors.MapError(err)
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanMutate(actor, issue) {
		return apperrors.NewForbidden("not allowed to delete this issue")
	}

	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}

	deleted, err := s.comments.DeleteAllForIssue(ctx, id)
	if err != nil {
		s.logger.Error("cascade comment cleanup failed",
			zap.String("issue_id", id.Hex()), zap.Error(err))
		deleted = 0
	}

	s.statsCache.Invalidate(ctx, issue.Author)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueDeleted,
		IssueID: id.Hex(),
		ActorID: actor.ID.Hex(),
		Payload: events.IssueDeletedPayload{CommentsDeleted: deleted},
	})
	return nil
}

// ListComments returns an issue's comments, newest first. The issue is
// looked up explicitly so "no comments" and "no such issue" stay distinct.
func (s *IssueService) ListComments(ctx context.Context, rawID string) ([]CommentView, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if _, err := s.issues.GetByID(ctx, id); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildCommentViews(ctx, comments)
}

// AddComment attaches a comment to an existing issue.
func (s *IssueService) AddComment(ctx context.Context, actor *domain.User, rawID, content string) (*CommentView, error) {
	id, err := domain.ParseID(rawID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{
			"content": "is required",
		})
	}

	if _, err := s.issues.GetByID(ctx, id); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		Issue:   id,
		Author:  actor.ID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCommentAdded,
		IssueID: id.Hex(),
		ActorID: actor.ID.Hex(),
		Payload: events.CommentAddedPayload{
			CommentID:      comment.ID.Hex(),
			ContentPreview: contentPreview(comment.Content, 120),
		},
	})

	view := s.commentView(comment, authorInfo(actor))
	return &view, nil
}

// buildIssueViews batch-resolves comment counts and authors, then recombines
// by issue id. The two fan-out queries run concurrently; a missing comment
// count is 0 and a missing author degrades to an id-only stub.
func (s *IssueService) buildIssueViews(ctx context.Context, issues []domain.Issue) ([]IssueView, error) {
	views := make([]IssueView, 0, len(issues))
	if len(issues) == 0 {
		return views, nil
	}

	issueIDs := lo.Map(issues, func(i domain.Issue, _ int) primitive.ObjectID { return i.ID })
	authorIDs := lo.Uniq(lo.Map(issues, func(i domain.Issue, _ int) primitive.ObjectID { return i.Author }))

	var (
		counts  map[primitive.ObjectID]int64
		authors map[primitive.ObjectID]domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.comments.CountByIssueIDs(gctx, issueIDs)
		return err
	})
	g.Go(func() error {
		var err error
		authors, err = s.users.GetByIDs(gctx, authorIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range issues {
		issue := issues[i]
		info := AuthorInfo{ID: issue.Author.Hex()}
		if author, ok := authors[issue.Author]; ok {
			info.Name = author.Name
			info.Email = author.Email
		}
		views = append(views, s.issueView(&issue, info, counts[issue.ID], now))
	}
	return views, nil
}

func (s *IssueService) buildCommentViews(ctx context.Context, comments []domain.Comment) ([]CommentView, error) {
	views := make([]CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	authorIDs := lo.Uniq(lo.Map(comments, func(c domain.Comment, _ int) primitive.ObjectID { return c.Author }))
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range comments {
		comment := comments[i]
		info := AuthorInfo{ID: comment.Author.Hex()}
		if author, ok := authors[comment.Author]; ok {
			info.Name = author.Name
			info.Email = author.Email
		}
		views = append(views, s.commentView(&comment, info))
	}
	return views, nil
}

func (s *IssueService) issueView(issue *domain.Issue, author AuthorInfo, commentCount int64, now time.Time) IssueView {
	return IssueView{
		ID:           issue.ID.Hex(),
		Title:        issue.Title,
		Description:  issue.Description,
		Status:       issue.Status,
		Priority:     issue.Priority,
		Assignee:     issue.Assignee,
		Author:       author,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
		AgeInDays:    issue.AgeInDays(now),
		IsOverdue:    issue.IsOverdue(now),
		CommentCount: commentCount,
	}
}

func (s *IssueService) commentView(comment *domain.Comment, author AuthorInfo) CommentView {
	return CommentView{
		ID:        comment.ID.Hex(),
		Issue:     comment.Issue.Hex(),
		Author:    author,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func authorInfo(user *domain.User) AuthorInfo {
	if user == nil {
		return AuthorInfo{}
	}
	return AuthorInfo{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func contentPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
