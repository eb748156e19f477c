package metrics

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitorPool_SetsGaugesAndStops(t *testing.T) {
	var calls atomic.Int32
	stats := func() sql.DBStats {
		calls.Add(1)
		return sql.DBStats{OpenConnections: 4, InUse: 3, Idle: 1, MaxOpenConnections: 10}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorPool(ctx, stats, time.Millisecond, logging.Nop{})
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}

	assert.Equal(t, float64(4), testutil.ToFloat64(DBOpenConnections))
	assert.Equal(t, float64(3), testutil.ToFloat64(DBInUseConnections))
}
