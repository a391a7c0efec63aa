package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Success envelope helpers. Every success response carries success:true;
// list responses additionally carry a count.

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondList(c *fiber.Ctx, count int, data any) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}
