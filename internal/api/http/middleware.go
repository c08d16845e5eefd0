package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/observability"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				fault := toFault(err)
				metrics.RecordError(c.Path(), c.Method(), fault.Code)
				if fault.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(fault))
				}
				err = handlers.Render(c, fault.HTTPStatus, dto.FaultDocument(fault))
			}
		}()
		return c.Next()
	}
}

// toFault also covers errors raised by Fiber itself, such as unmatched routes.
func toFault(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusNotFound:
			return apperrors.NewNotFound("resource", nil)
		case fe.Code == fiber.StatusMethodNotAllowed:
			return apperrors.NewDomainError(apperrors.KindBadRequest, "badMethod", fe.Message, nil)
		case fe.Code < fiber.StatusInternalServerError:
			return apperrors.NewBadRequest(fe.Message, nil)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewServiceUnavailable(err)
	}
	return apperrors.ToDomainError(err)
}
