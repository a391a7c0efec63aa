package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Malinda-kawshalya/issue-web/internal/api/http/handlers"
	"github.com/Malinda-kawshalya/issue-web/internal/auth"
	"github.com/Malinda-kawshalya/issue-web/internal/config"
	"github.com/Malinda-kawshalya/issue-web/internal/domain"
	"github.com/Malinda-kawshalya/issue-web/internal/observability"
	"github.com/Malinda-kawshalya/issue-web/internal/repository"
	"github.com/Malinda-kawshalya/issue-web/internal/service"
)

// In-memory repositories backing the end-to-end tests.

type memUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error) {
	result := make(map[primitive.ObjectID]domain.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

type memIssueRepo struct {
	issues map[primitive.ObjectID]domain.Issue
}

func (r *memIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	issue.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	r.issues[issue.ID] = *issue
	return nil
}

func (r *memIssueRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Issue, error) {
	issue, ok := r.issues[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &issue, nil
}

func (r *memIssueRepo) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
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

func (r *memIssueRepo) UpdateFields(_ context.Context, id primitive.ObjectID, patch repository.IssuePatch) (*domain.Issue, error) {
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

func (r *memIssueRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.issues[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.issues, id)
	return nil
}

func (r *memIssueRepo) StatusCountsByAuthor(_ context.Context, authorID primitive.ObjectID) (map[domain.IssueStatus]int64, error) {
	counts := make(map[domain.IssueStatus]int64)
	for _, issue := range r.issues {
		if issue.Author == authorID {
			counts[issue.Status]++
		}
	}
	return counts, nil
}

type memCommentRepo struct {
	comments map[primitive.ObjectID]domain.Comment
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	r.comments[comment.ID] = *comment
	return nil
}

func (r *memCommentRepo) ListByIssue(_ context.Context, issueID primitive.ObjectID) ([]domain.Comment, error) {
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

func (r *memCommentRepo) CountByIssueIDs(_ context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
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

func (r *memCommentRepo) DeleteAllForIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, comment := range r.comments {
		if comment.Issue == issueID {
			delete(r.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	userRepo := &memUserRepo{users: make(map[primitive.ObjectID]domain.User)}
	issueRepo := &memIssueRepo{issues: make(map[primitive.ObjectID]domain.Issue)}
	commentRepo := &memCommentRepo{comments: make(map[primitive.ObjectID]domain.Comment)}

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, userRepo)

	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   issueRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		Policy:      service.AllowAllPolicy{},
	})

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0, false)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("issue-web", "test", nil, nil),
		Users:          handlers.NewUsersHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Admin:          handlers.NewAdminHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func registerUser(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	authData := data["auth"].(map[string]any)
	return authData["token"].(string)
}

func TestIssueLifecycleEndToEnd(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	// create an issue
	status, body := doJSON(t, app, http.MethodPost, "/api/issues", token, map[string]any{
		"title":    "Bug X",
		"priority": "HIGH",
	})
	require.Equal(t, http.StatusCreated, status)
	issue := body["data"].(map[string]any)
	issueID := issue["id"].(string)
	assert.Equal(t, "Bug X", issue["title"])
	assert.Equal(t, "OPEN", issue["status"])

	// listed under my issues with zero comments
	status, body = doJSON(t, app, http.MethodGet, "/api/issues/my", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
	mine := body["data"].([]any)
	require.Len(t, mine, 1)
	assert.Equal(t, issueID, mine[0].(map[string]any)["id"])
	assert.Equal(t, float64(0), mine[0].(map[string]any)["commentCount"])

	// add a comment, count becomes 1
	status, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/issues/%s/comments", issueID), token, map[string]string{
		"content": "reproduced on main",
	})
	require.Equal(t, http.StatusCreated, status)
	comment := body["data"].(map[string]any)
	assert.Equal(t, "reproduced on main", comment["content"])

	status, body = doJSON(t, app, http.MethodGet, "/api/issues/"+issueID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["commentCount"])

	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/issues/%s/comments", issueID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	// delete the issue; its comments are gone with it
	status, body = doJSON(t, app, http.MethodDelete, "/api/issues/"+issueID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/issues/%s/comments", issueID), token, nil)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/issues", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/issues", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestErrorTaxonomyOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	// malformed id is a format error
	status, body := doJSON(t, app, http.MethodGet, "/api/issues/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_ID", errBody["code"])

	// well-formed but absent id is not found
	status, body = doJSON(t, app, http.MethodGet, "/api/issues/507f1f77bcf86cd799439011", token, nil)
	require.Equal(t, http.StatusNotFound, status)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])

	// itemized validation details
	status, body = doJSON(t, app, http.MethodPost, "/api/issues", token, map[string]string{"title": "ab"})
	require.Equal(t, http.StatusBadRequest, status)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	details := errBody["details"].(map[string]any)
	assert.Contains(t, details, "title")

	// blank comment content
	status, body = doJSON(t, app, http.MethodPost, "/api/issues", token, map[string]string{"title": "valid title"})
	require.Equal(t, http.StatusCreated, status)
	issueID := body["data"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/issues/%s/comments", issueID), token, map[string]string{"content": "   "})
	require.Equal(t, http.StatusBadRequest, status)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	assert.Contains(t, errBody["details"].(map[string]any), "content")
}

func TestMyStatisticsEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	for _, status := range []string{"OPEN", "RESOLVED", "CLOSED", "CLOSED"} {
		code, _ := doJSON(t, app, http.MethodPost, "/api/issues", token, map[string]string{
			"title":  "stats seed",
			"status": status,
		})
		require.Equal(t, http.StatusCreated, code)
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/issues/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["data"].(map[string]any)
	assert.Equal(t, float64(4), stats["total"])
	assert.Equal(t, float64(3), stats["solved"])
	assert.Equal(t, float64(1), stats["ongoing"])
	assert.Equal(t, 75.0, stats["completionRate"])
}

func TestAdminMetricsRequiresRole(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	status, _ := doJSON(t, app, http.MethodGet, "/api/admin/metrics", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
