package helper

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler untuk fiber.Config: semua error yang lolos dari handler
// (termasuk *fiber.Error dari routing/limiter) dibungkus ke shape ErrorResponse.
func ErrorHandler(logger log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return JsonError(c, fe.Code, fe.Message)
		}
		level.Error(logger).Log("msg", "unhandled error", "path", c.Path(), "err", err)
		return JsonServiceError(c, err)
	}
}
