package importer

import (
	"context"
	"sync"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/cache"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"go.uber.org/zap"
)

const lockKey = "findmyai:import:lock"

// runLock makes import runs mutually exclusive within the process and, when
// Redis is configured, across processes. It owns the cancel func of the active run.
type runLock struct {
	mu      sync.Mutex
	running bool
	runID   string
	cancel  context.CancelFunc

	redis *cache.RedisClient
	ttl   time.Duration
}

// acquire claims the lock for runID and returns the run-scoped context
func (l *runLock) acquire(ctx context.Context, runID string) (context.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil, ErrRunInProgress
	}

	if l.redis != nil {
		ok, err := l.redis.AcquireLock(ctx, lockKey, runID, l.ttl)
		if err != nil {
			// fall back to the in-process lock
			logger.Log.Warn("Failed to acquire distributed import lock", zap.Error(err))
		} else if !ok {
			return nil, ErrRunInProgress
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.running = true
	l.runID = runID
	l.cancel = cancel
	return runCtx, nil
}

func (l *runLock) release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	if l.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := l.redis.ReleaseLock(ctx, lockKey, l.runID); err != nil {
			logger.Log.Warn("Failed to release distributed import lock", zap.Error(err))
		}
		cancel()
	}
	l.cancel()
	l.running = false
	l.runID = ""
	l.cancel = nil
}

// stop cancels the active run. Returns the run id, or "" when nothing was running.
func (l *runLock) stop() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return ""
	}
	l.cancel()
	return l.runID
}

func (l *runLock) active() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runID, l.running
}
