package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type jobKind string

type jobStatus string

const (
	jobKindLoad    jobKind = "load"
	jobKindExplain jobKind = "explain"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
	jobStatusCancelled jobStatus = "cancelled"
)

// timeout bounds a single job of this kind.
func (k jobKind) timeout() time.Duration {
	if k == jobKindLoad {
		return loadTimeout
	}
	return explainTimeout
}

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries a finished job's payload back into Update,
// which unwraps it and handles Payload as if it had arrived directly.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type runningJob struct {
	id     string
	cancel context.CancelFunc
}

// jobBus runs at most one job per kind. Starting a job cancels the running
// job of the same kind; its result still arrives and is dropped as stale.
type jobBus struct {
	counter int64
	logger  *zap.Logger

	mu      sync.Mutex
	running map[jobKind]runningJob
}

func newJobBus(logger *zap.Logger) *jobBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{
		logger:  logger.With(zap.String("component", "jobs")),
		running: make(map[jobKind]runningJob),
	}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start cancels any running job of kind and returns a command that reports
// the new job as running and then delivers its result envelope.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	ctx, cancel := context.WithTimeout(context.Background(), kind.timeout())
	b.swap(kind, runningJob{id: id, cancel: cancel})

	started := time.Now()
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}}
	}
	runCmd := func() tea.Msg {
		defer b.finish(kind, id)
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			Status:      jobStatusSucceeded,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			snapshot.Status = jobStatusCancelled
			snapshot.Err = err.Error()
		default:
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		}
		b.logger.Debug("job finished",
			zap.String("job", id),
			zap.String("status", string(snapshot.Status)),
			zap.Duration("duration", snapshot.Duration),
			zap.Error(err),
		)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}
	return tea.Sequence(startCmd, runCmd)
}

// Cancel stops the running job of kind, if any.
func (b *jobBus) Cancel(kind jobKind) {
	b.swap(kind, runningJob{})
}

// CancelAll stops every running job.
func (b *jobBus) CancelAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for kind, job := range b.running {
		job.cancel()
		delete(b.running, kind)
	}
}

func (b *jobBus) swap(kind jobKind, next runningJob) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.running[kind]; ok {
		prev.cancel()
		b.logger.Debug("job superseded", zap.String("job", prev.id))
	}
	if next.cancel == nil {
		delete(b.running, kind)
		return
	}
	b.running[kind] = next
}

func (b *jobBus) finish(kind jobKind, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if job, ok := b.running[kind]; ok && job.id == id {
		job.cancel()
		delete(b.running, kind)
	}
}
