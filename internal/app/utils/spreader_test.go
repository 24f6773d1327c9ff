package utils

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BlackRRR/persona-bot/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpreaderBoundsWorkers(t *testing.T) {
	s := NewSpreader(0, 2)

	var running, peak int32
	release := make(chan struct{})

	for i := 0; i < 6; i++ {
		go s.ServeHandler(context.Background(), func() {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			<-release
			atomic.AddInt32(&running, -1)
		})
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&running) == 2 }, time.Second, time.Millisecond)
	close(release)

	require.Eventually(t, func() bool { return s.Served() == 6 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestSpreaderStopsOnCancel(t *testing.T) {
	s := NewSpreader(0, 1)
	release := make(chan struct{})

	require.True(t, s.ServeHandler(context.Background(), func() { <-release }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, s.ServeHandler(ctx, func() {}))

	close(release)
	s.Wait()
	assert.Equal(t, int64(1), s.Served())
}

func TestSpreaderRejectsAfterCancelWithFreeSlot(t *testing.T) {
	s := NewSpreader(0, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	for i := 0; i < 100; i++ {
		assert.False(t, s.ServeHandler(ctx, func() { atomic.AddInt32(&ran, 1) }))
	}

	s.Wait()
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
	assert.Equal(t, 0, len(s.slots))
}

func TestSpreaderDefaultWorkers(t *testing.T) {
	s := NewSpreader(0, 0)
	assert.Equal(t, defaultWorkers, cap(s.slots))
}

func TestSpreaderReport(t *testing.T) {
	s := NewSpreader(5*time.Millisecond, 1)
	s.ServeHandler(context.Background(), func() {})
	s.Wait()

	buf := &bytes.Buffer{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s.Report(ctx, log.NewLogger(buf))
	assert.Contains(t, buf.String(), "served 1 updates")
}
