package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BlackRRR/persona-bot/internal/log"
)

const defaultWorkers = 64

// Spreader runs update handlers on a bounded number of goroutines and reports
// throughput once per period.
type Spreader struct {
	slots  chan struct{}
	period time.Duration
	served int64
	wg     sync.WaitGroup
}

func NewSpreader(period time.Duration, workers int) *Spreader {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Spreader{
		slots:  make(chan struct{}, workers),
		period: period,
	}
}

// ServeHandler blocks until a worker slot is free, then runs handler in its
// own goroutine. It returns false without running handler once ctx is done.
func (s *Spreader) ServeHandler(ctx context.Context, handler func()) bool {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return false
	}

	// select picks randomly when both cases are ready
	if ctx.Err() != nil {
		<-s.slots
		return false
	}

	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.slots
			atomic.AddInt64(&s.served, 1)
			s.wg.Done()
		}()

		handler()
	}()

	return true
}

// Wait blocks until every started handler has returned.
func (s *Spreader) Wait() {
	s.wg.Wait()
}

func (s *Spreader) Served() int64 {
	return atomic.LoadInt64(&s.served)
}

func (s *Spreader) Report(ctx context.Context, logger log.Logger) {
	if s.period <= 0 {
		return
	}

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			served := s.Served()
			logger.Info("served %d updates in the last %s, %d busy workers", served-last, s.period, len(s.slots))
			last = served
		}
	}
}
