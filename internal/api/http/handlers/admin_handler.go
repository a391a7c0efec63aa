package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Malinda-kawshalya/issue-web/internal/observability"
)

// AdminHandler exposes operational endpoints for admin users.
type AdminHandler struct {
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{metrics: metrics}
}

// Metrics GET /api/admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	requests, errCounts := h.metrics.Snapshot()
	return respondData(c, http.StatusOK, fiber.Map{
		"requests": requests,
		"errors":   errCounts,
	})
}
