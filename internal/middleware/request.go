package middleware

import (
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// RequestID tags every request with the caller's X-Request-ID or a fresh
// uuid, and exposes it through fiber locals and the user context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Locals(CtxRequestIDKey, reqID)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), reqID))
		c.Set(HeaderRequestID, reqID)

		return c.Next()
	}
}

// AccessLog writes one line per request. Errors from the chain are rendered
// here through the app's ErrorHandler so the logged status is the real one.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.FromCtx(c.UserContext()).Info("incoming request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.String("ip", c.IP()),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}
