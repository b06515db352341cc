package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/viewvault/viewvault/internal/metrics"
)

// Metrics records request counts and latency per route. The route pattern
// (not the raw path) is used so ids do not explode label cardinality.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Route().Path
		method := c.Method()
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().StatusCode())).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}
