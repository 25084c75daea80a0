// Package handler contains the worker's small ops HTTP surface.  It is not
// the reservation API, which lives in a separate service; the only route
// here is a health check for process supervisors and monitoring.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger verifies database liveness; satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BrokerStatus reports broker connection state; satisfied by *queue.Consumer.
type BrokerStatus interface {
	IsClosed() bool
}

// Health reports the liveness of the worker's collaborators.  Redis is
// optional: a nil client means retry accounting is disabled, which is a
// degraded mode rather than a failure, so it reports "disabled".
type Health struct {
	DB     Pinger
	Broker BrokerStatus
	Redis  *redis.Client
}

type healthReport struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Broker string `json:"broker"`
	Redis  string `json:"redis"`
}

// Check handles GET /healthz.  It returns 200 when the broker and database
// are reachable, 503 otherwise.
func (h *Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	rep := healthReport{Status: "ok", DB: "up", Broker: "up", Redis: "disabled"}
	if err := h.DB.PingContext(ctx); err != nil {
		rep.DB = "down"
		rep.Status = "degraded"
	}
	if h.Broker.IsClosed() {
		rep.Broker = "down"
		rep.Status = "degraded"
	}
	if h.Redis != nil {
		rep.Redis = "up"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			rep.Redis = "down"
		}
	}

	code := http.StatusOK
	if rep.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, rep)
}
