package metrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/logging"
)

// StatsFunc reports pool statistics; (*sql.DB).Stats satisfies it.
type StatsFunc func() sql.DBStats

// MonitorPool refreshes the connection gauges every interval until ctx is done.
func MonitorPool(ctx context.Context, stats StatsFunc, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report := func() {
		s := stats()
		DBOpenConnections.Set(float64(s.OpenConnections))
		DBInUseConnections.Set(float64(s.InUse))
		logger.Debug(ctx, "database connection stats",
			"open", s.OpenConnections,
			"in_use", s.InUse,
			"idle", s.Idle,
			"max", s.MaxOpenConnections,
		)
	}

	report()
	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, "stopping pool monitor")
			return
		case <-ticker.C:
			report()
		}
	}
}
