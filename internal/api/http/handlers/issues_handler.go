package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Malinda-kawshalya/issue-web/internal/api/dto"
	"github.com/Malinda-kawshalya/issue-web/internal/auth"
	"github.com/Malinda-kawshalya/issue-web/internal/service"
	apperrors "github.com/Malinda-kawshalya/issue-web/pkg/util"
)

// IssuesHandler manages issue and comment endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// ListIssues GET /api/issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views, err := h.service.ListAllIssues(c.Context())
	if err != nil {
		return err
	}
	return respondList(c, len(views), views)
}

// ListMyIssues GET /api/issues/my.
func (h *IssuesHandler) ListMyIssues(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views, err := h.service.ListMyIssues(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return respondList(c, len(views), views)
}

// MyStatistics GET /api/issues/stats.
func (h *IssuesHandler) MyStatistics(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.service.Statistics(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, stats)
}

// GetIssue GET /api/issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	view, err := h.service.GetIssue(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, view)
}

// CreateIssue POST /api/issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.CreateIssue(c.Context(), user, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
	})
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, view)
}

// UpdateIssue PUT /api/issues/:id.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.UpdateIssue(c.Context(), user, c.Params("id"), service.IssueUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
	})
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, view)
}

// DeleteIssue DELETE /api/issues/:id.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.DeleteIssue(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return respondMessage(c, "issue deleted")
}

// ListComments GET /api/issues/:id/comments.
func (h *IssuesHandler) ListComments(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views, err := h.service.ListComments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return respondList(c, len(views), views)
}

// AddComment POST /api/issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.AddComment(c.Context(), user, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, view)
}
