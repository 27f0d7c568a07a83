// Package scheduler drives the decision cycle at a flat interval. A failed
// cycle is logged and the next tick still fires; the loop only stops when
// its context does.
package scheduler

import (
	"context"
	"time"

	"bitgyeol/internal/logger"
)

type IntervalScheduler struct {
	Interval       time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewIntervalScheduler(ctx context.Context, interval time.Duration) *IntervalScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IntervalScheduler{
		Interval: interval,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks, running task every Interval until the context is cancelled.
// The interval is flat: the timer restarts after the task returns, so a slow
// cycle delays the next one instead of overlapping it.
func (s *IntervalScheduler) Start(task func() error) {
	if s == nil {
		return
	}
	if task == nil {
		logger.Warnf("IntervalScheduler: task is nil, exit")
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("IntervalScheduler: invalid interval=%s, exit", s.Interval)
		return
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	startAt := s.nowFn()
	logger.Infof("IntervalScheduler: started interval=%s run_immediately=%v at=%s",
		s.Interval, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		logger.Infof("IntervalScheduler: RunImmediately=true, execute once before loop")
		s.runOnce(task)
	}

	for {
		timer := time.NewTimer(s.Interval)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			logger.Infof("IntervalScheduler: ctx done, exit after uptime=%s",
				s.nowFn().Sub(startAt).Truncate(time.Second))
			return
		case <-timer.C:
		}
		s.runOnce(task)
	}
}

// runOnce is the error boundary: one bad cycle never takes the loop down.
func (s *IntervalScheduler) runOnce(task func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("IntervalScheduler: cycle panicked: %v", r)
		}
	}()
	began := s.nowFn()
	if err := task(); err != nil {
		logger.Errorf("IntervalScheduler: cycle failed after %s: %v",
			s.nowFn().Sub(began).Truncate(time.Millisecond), err)
		return
	}
	logger.Infof("IntervalScheduler: cycle completed in %s",
		s.nowFn().Sub(began).Truncate(time.Millisecond))
}
