package db

import (
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	prommetrics "github.com/movstream/backend/internal/common/prometheus"
)

func StartPoolMetrics(pool *pgxpool.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			stat := pool.Stat()
			prommetrics.DBPoolAcquiredConnections.Set(float64(stat.AcquiredConns()))
			prommetrics.DBPoolIdleConnections.Set(float64(stat.IdleConns()))
			prommetrics.DBPoolMaxConnections.Set(float64(stat.MaxConns()))
			prommetrics.DBPoolTotalConnections.Set(float64(stat.TotalConns()))
		}
	}()
}
