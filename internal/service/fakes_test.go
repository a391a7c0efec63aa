package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Malinda-kawshalya/issue-web/internal/domain"
	"github.com/Malinda-kawshalya/issue-web/internal/repository"
)

// In-memory repository fakes mirroring the Mongo-backed behavior, including
// the ErrNoDocuments sentinel and newest-first ordering.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[primitive.ObjectID]domain.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

type fakeIssueRepo struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]domain.Issue
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: make(map[primitive.ObjectID]domain.Issue)}
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	r.issues[issue.ID] = *issue
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &issue, nil
}

func (r *fakeIssueRepo) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Issue
	for _, issue := range r.issues {
		if filter.AuthorID != nil && issue.Author != *filter.AuthorID {
			continue
		}
		result = append(result, issue)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeIssueRepo) UpdateFields(_ context.Context, id primitive.ObjectID, patch repository.IssuePatch) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.Status != nil {
		issue.Status = *patch.Status
	}
	if patch.Priority != nil {
		issue.Priority = *patch.Priority
	}
	if patch.Assignee != nil {
		issue.Assignee = *patch.Assignee
	}
	issue.UpdatedAt = time.Now().UTC()
	r.issues[id] = issue
	return &issue, nil
}

func (r *fakeIssueRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.issues, id)
	return nil
}

func (r *fakeIssueRepo) StatusCountsByAuthor(_ context.Context, authorID primitive.ObjectID) (map[domain.IssueStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.IssueStatus]int64)
	for _, issue := range r.issues {
		if issue.Author == authorID {
			counts[issue.Status]++
		}
	}
	return counts, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) ListByIssue(_ context.Context, issueID primitive.ObjectID) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.Issue == issueID {
			result = append(result, comment)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeCommentRepo) CountByIssueIDs(_ context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[primitive.ObjectID]int64)
	for _, comment := range r.comments {
		for _, id := range issueIDs {
			if comment.Issue == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (r *fakeCommentRepo) DeleteAllForIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, comment := range r.comments {
		if comment.Issue == issueID {
			delete(r.comments, id)
			deleted++
		}
	}
	return deleted, nil
}
