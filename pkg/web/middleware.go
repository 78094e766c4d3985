package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/teslashibe/go-sensesafe/internal/metrics"
)

// observe logs each request and records it in http_requests_total.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	route := c.Route().Path
	metrics.ObserveHTTP(c.Method(), route, status)

	s.logger.Debug("request",
		"method", c.Method(),
		"route", route,
		"status", status,
		"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}
