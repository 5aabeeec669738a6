package middleware

import (
	"time"

	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// OutreachRateLimiter caps outreach sends per signed-in user per minute.
// A nil storage keeps counters in memory.
func OutreachRateLimiter(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		max = 30
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			sess := CurrentSession(c)
			if sess.Email != "" {
				return "outreach:" + sess.Email
			}
			return "outreach:ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent("rate_limit_hit", map[string]interface{}{
				"actor":      CurrentSession(c).Email,
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get(fiber.HeaderUserAgent),
			})
			c.Set(fiber.HeaderRetryAfter, "60")
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many outreach requests. Please wait a minute before sending again.", nil)
		},
		Storage: storage,
	})
}
