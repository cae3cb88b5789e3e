package trending

import (
	"context"
	"sync"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"go.uber.org/zap"
)

// Scheduler runs the calculator on a fixed interval
type Scheduler struct {
	calc     *Calculator
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// NewScheduler creates a scheduler; call Start to begin
func NewScheduler(calc *Calculator, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		calc:     calc,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start runs once immediately, then every interval, until Stop.
// Only the first call starts the loop.
func (s *Scheduler) Start() {
	s.once.Do(func() {
		logger.Log.Info("Starting trending scheduler", zap.Duration("interval", s.interval))
		go s.run()
	})
}

// Stop cancels the loop and waits for an in-progress run to return.
// A scheduler that was never started stays unstarted.
func (s *Scheduler) Stop() {
	logger.Log.Info("Stopping trending scheduler")
	s.cancel()
	s.once.Do(func() { close(s.done) })
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick() {
	if _, err := s.calc.Run(s.ctx); err != nil && s.ctx.Err() == nil {
		logger.Log.Error("Scheduled trending run failed", zap.Error(err))
	}
}
