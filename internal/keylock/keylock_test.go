package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SerializesSameKey(t *testing.T) {
	var m Map
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "S1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, m.Len(), "locks must be dropped when unused")
}

func TestMap_DifferentKeysDoNotBlock(t *testing.T) {
	var m Map

	unlockA, err := m.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, "B")
	require.NoError(t, err)
	unlockB()

	assert.Equal(t, 1, m.Len())
}

func TestMap_ContextCancelWhileWaiting(t *testing.T) {
	var m Map

	unlock, err := m.Lock(context.Background(), "S1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "S1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Zero(t, m.Len())
}

func TestMap_UnlockIsIdempotent(t *testing.T) {
	var m Map

	unlock, err := m.Lock(context.Background(), "S1")
	require.NoError(t, err)
	unlock()
	unlock()

	unlock2, err := m.Lock(context.Background(), "S1")
	require.NoError(t, err)
	unlock2()
	assert.Zero(t, m.Len())
}
