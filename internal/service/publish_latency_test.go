package service

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/queue"
)

// mute accepts broker connections and never completes the handshake.
func mute(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestReserveSeat_UnresponsiveBrokerDoesNotDelayCallers(t *testing.T) {
	pub := queue.NewPublisher(mute(t))
	defer pub.Close()

	store := newMemStore(freeSeat(1), freeSeat(2))
	svc := NewReservationService(store, pub, time.Second)

	var wg sync.WaitGroup
	elapsed := make([]time.Duration, 2)
	errs := make([]error, 2)
	for i, seat := range []uint64{1, 2} {
		wg.Add(1)
		go func(i int, seat uint64) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			start := time.Now()
			_, errs[i] = svc.ReserveSeat(ctx, seat, uint64(10+i))
			elapsed[i] = time.Since(start)
		}(i, seat)
	}
	wg.Wait()

	for i := range elapsed {
		require.NoError(t, errs[i])
		assert.Less(t, elapsed[i], 200*time.Millisecond)
	}
	assert.Equal(t, uint64(10), *store.owner(1))
	assert.Equal(t, uint64(11), *store.owner(2))
}
