package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 5 * time.Second

// PoolStats summarizes connection pool usage for the health endpoint.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
	AcquireCount  int64 `json:"acquire_count"`
}

func poolStats(pool *pgxpool.Pool) PoolStats {
	s := pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
		AcquireCount:  s.AcquireCount(),
	}
}

// HealthHandler reports database reachability and pool usage. A failed ping
// answers 503 so load balancers stop routing to this instance.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		start := time.Now()
		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status": "unhealthy",
				"error":  err.Error(),
				"pool":   poolStats(pool),
			})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"ping_ms": time.Since(start).Milliseconds(),
			"pool":    poolStats(pool),
		})
	}
}
