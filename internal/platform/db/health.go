package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// ConnReport summarizes connection-pool pressure for the readiness endpoint.
type ConnReport struct {
	Open      int32  `json:"open"`
	Idle      int32  `json:"idle"`
	InUse     int32  `json:"in_use"`
	Max       int32  `json:"max"`
	TotalWait string `json:"total_wait"`
}

func newConnReport(open, idle, inUse, max int32, wait time.Duration) ConnReport {
	return ConnReport{
		Open:      open,
		Idle:      idle,
		InUse:     inUse,
		Max:       max,
		TotalWait: wait.String(),
	}
}

// Saturated reports whether every pooled connection is checked out.
func (r ConnReport) Saturated() bool {
	return r.Max > 0 && r.InUse >= r.Max
}

// HealthHandler pings the database and reports pool pressure; a failed ping
// answers 503 so load balancers stop routing here.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"database": "unreachable",
				"error":    err.Error(),
			})
		}

		stat := pool.Stat()
		report := newConnReport(stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns(), stat.MaxConns(), stat.AcquireDuration())
		return c.JSON(http.StatusOK, map[string]interface{}{
			"database":  "ok",
			"pool":      report,
			"saturated": report.Saturated(),
		})
	}
}
