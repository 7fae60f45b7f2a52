package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request once it has been handled.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		entry := logger.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Error("Request completed")
		} else {
			entry.Info("Request completed")
		}
		return err
	}
}
