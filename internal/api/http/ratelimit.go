package http

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/opsdesk/ticket-service/internal/config"
	"github.com/opsdesk/ticket-service/internal/persistence"
)

// RateLimiter enforces a fixed-window request limit per client address,
// backed by Redis. It fails open when Redis is unavailable.
func RateLimiter(store *persistence.Redis, cfg config.RateLimitConfig, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil || store.Client == nil || cfg.MaxRequests <= 0 {
			return c.Next()
		}

		ctx := c.UserContext()
		key := fmt.Sprintf("ratelimit:%s", c.IP())

		count, err := store.Client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			if err := store.Client.Expire(ctx, key, cfg.Window()).Err(); err != nil {
				logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}
		if count > int64(cfg.MaxRequests) {
			return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too Many Requests",
				"message": "rate limit exceeded, try again later",
			})
		}
		return c.Next()
	}
}
