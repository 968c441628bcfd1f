package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/domain"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/infra"
)

// JobStream is one live job's status stream. Events is closed when the job
// reaches a terminal state or is cancelled; Err is meaningful after that.
// Cancel must be idempotent.
type JobStream interface {
	Events() <-chan domain.JobUpdate
	Err() error
	Cancel()
}

// JobClient submits prompts to the generation queue.
type JobClient interface {
	Subscribe(ctx context.Context, prompt string) (JobStream, error)
}

// activeJob is the single job slot: a fresh submission id plus the owned
// stream handle. Stream actions carrying any other id are stale and dropped.
type activeJob struct {
	id     string
	stream JobStream
}

// Machine owns the UI state and processes actions strictly one at a time.
// The job subscription runs in the background and communicates back only by
// dispatching actions, so State is never touched concurrently.
type Machine struct {
	client JobClient
	logger infra.Logger

	actions chan Action
	done    chan struct{}

	mu       sync.Mutex
	state    State
	watchers map[int]chan State
	nextID   int

	// run-loop owned, no locking needed
	active *activeJob
}

// New builds a machine around the given job client. Run must be called before
// dispatched actions take effect.
func New(client JobClient, logger infra.Logger) *Machine {
	return &Machine{
		client:   client,
		logger:   logger,
		actions:  make(chan Action, 64),
		done:     make(chan struct{}),
		watchers: make(map[int]chan State),
	}
}

// Dispatch enqueues an action. Safe to call from any goroutine; actions are
// dropped once the machine has stopped.
func (m *Machine) Dispatch(a Action) {
	select {
	case m.actions <- a:
	case <-m.done:
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Watch registers a state subscriber. The channel is coalescing: a slow
// reader only ever observes the latest snapshot. The returned func
// unregisters the subscriber.
func (m *Machine) Watch() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan State, 1)
	ch <- m.state.clone()
	m.watchers[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

// Run processes actions until ctx is cancelled. Any active job is cancelled
// on the way out.
func (m *Machine) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			if m.active != nil {
				m.active.stream.Cancel()
				m.active = nil
			}
			return
		case a := <-m.actions:
			m.apply(ctx, a)
		}
	}
}

func (m *Machine) apply(ctx context.Context, a Action) {
	activeID := ""
	if m.active != nil {
		activeID = m.active.id
	}

	m.mu.Lock()
	next, cmd := reduce(m.state, activeID, a)
	m.state = next
	m.mu.Unlock()

	switch {
	case cmd.startPrompt != "":
		m.startJob(ctx, cmd.startPrompt)
	case cmd.cancel:
		if m.active != nil {
			m.logger.Info().Msg("session: job cancelled by user")
			m.active.stream.Cancel()
			m.active = nil
		}
	}

	if closed, ok := a.(jobClosed); ok {
		if m.active != nil && closed.jobID == m.active.id {
			m.active = nil
		}
		if closed.err != nil && !isCancellation(closed.err) {
			m.logger.Error().Err(closed.err).Str("kind", errorKind(closed.err)).Msg("session: generation failed")
		}
	}
	if update, ok := a.(jobUpdate); ok && update.jobID == activeID && update.update.Status == domain.JobStatusCompleted {
		if update.update.Result == nil || len(update.update.Result.Images) == 0 {
			m.logger.Warn().Msg("session: job completed with no images")
		}
	}

	m.publish()
}

func (m *Machine) startJob(ctx context.Context, prompt string) {
	id := uuid.NewString()
	stream, err := m.client.Subscribe(ctx, prompt)
	if err != nil {
		m.active = &activeJob{id: id}
		m.apply(ctx, jobClosed{jobID: id, err: err})
		return
	}
	m.active = &activeJob{id: id, stream: stream}
	m.logger.Info().Str("job_id", id).Msg("session: job started")
	go m.pump(id, stream)
}

// pump forwards stream events into the action queue until the stream closes.
func (m *Machine) pump(id string, stream JobStream) {
	for update := range stream.Events() {
		m.Dispatch(jobUpdate{jobID: id, update: update})
	}
	m.Dispatch(jobClosed{jobID: id, err: stream.Err()})
}

func (m *Machine) publish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.state.clone()
	for _, ch := range m.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// errorKind collapses the error taxonomy for diagnostics. Users only ever see
// the generic alert; the distinction is log-only.
func errorKind(err error) string {
	var decodeErr *domain.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.Is(err, domain.ErrConnection):
		return "connection"
	case errors.Is(err, domain.ErrProtocol):
		return "protocol"
	default:
		return "unknown"
	}
}
