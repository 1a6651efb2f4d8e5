package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/opsdesk/ticket-service/internal/config"
	"github.com/opsdesk/ticket-service/internal/observability"
	"github.com/opsdesk/ticket-service/internal/persistence"
	apperrors "github.com/opsdesk/ticket-service/pkg/util"
)

// MiddlewareConfig bundles dependencies for global middlewares.
type MiddlewareConfig struct {
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Redis     *persistence.Redis
	App       config.AppConfig
	RateLimit config.RateLimitConfig
	CORS      config.CORSConfig
}

// RegisterMiddlewares attaches global middlewares: request ids, CORS, rate
// limiting, error handling and request logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(observability.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.Origins, ","),
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Content-Type," + observability.HeaderRequestID,
	}))
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(RateLimiter(cfg.Redis, cfg.RateLimit, cfg.Logger))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics, cfg.App.IsProduction()))
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware recovers panics and translates errors to the
// external response bodies. Production mode suppresses internal messages.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, production bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				logger.Error("request failed",
					zap.String("url", c.OriginalURL()),
					zap.String("method", c.Method()),
					zap.String("ip", c.IP()),
					zap.Error(domainErr))

				message := domainErr.Message
				if domainErr.HTTPStatus >= 500 && production {
					message = "Internal server error"
				}
				response := fiber.Map{
					"error":   domainErr.Code,
					"message": message,
				}
				if domainErr.Field != "" {
					response["field"] = domainErr.Field
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}
