package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Malinda-kawshalya/issue-web/internal/observability"
	apperrors "github.com/Malinda-kawshalya/issue-web/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, development bool) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, development))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every error through the DomainError
// taxonomy. Internal causes are only exposed in development mode.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, development bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				var fiberErr *fiber.Error
				if e, ok := err.(*fiber.Error); ok {
					fiberErr = e
				}

				var status int
				errBody := fiber.Map{}
				if fiberErr != nil {
					status = fiberErr.Code
					errBody["code"] = "REQUEST_FAILED"
					errBody["message"] = fiberErr.Message
				} else {
					domainErr := apperrors.ToDomainError(err)
					status = domainErr.HTTPStatus
					errBody["code"] = domainErr.Code
					errBody["message"] = domainErr.Message
					if len(domainErr.Details) > 0 {
						errBody["details"] = domainErr.Details
					}
					if development && domainErr.Err != nil {
						errBody["cause"] = domainErr.Err.Error()
					}
					if status >= 500 {
						logger.Error("request failed", zap.Error(domainErr))
					}
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}

				c.Status(status)
				_ = c.JSON(fiber.Map{
					"success": false,
					"error":   errBody,
				})
				err = nil
			}
		}()
		return c.Next()
	}
}
