// Package session holds the client-side clock-in/clock-out state machine.
// The timer owns the session timestamps and drives the location sampler's
// lifecycle; the sampler is stopped and drained before the elapsed duration
// is computed, so a stale sample can never land after clock-out.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"worktrack-backend/internal/location"
	"worktrack-backend/internal/models"
)

// ErrPrecondition is returned when an operation is attempted from a state it
// is not legal in (e.g. Reset while Running).
var ErrPrecondition = errors.New("session: operation not valid in current state")

// State of one clock-in/clock-out cycle.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Sampler is the location-sampling loop the timer starts and stops.
type Sampler interface {
	Start(ctx context.Context) error
	Stop()
}

// SubmitFunc sends a snapshot to the server.
type SubmitFunc func(ctx context.Context, workingTime *int64, loc *models.Location) error

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// Timer is the per-worker session state machine. All methods are safe for
// concurrent use; the sampler's callbacks must not call back into the Timer.
type Timer struct {
	username string
	sampler  Sampler
	submit   SubmitFunc
	now      func() time.Time

	mu         sync.Mutex
	state      State
	clockInAt  *time.Time
	clockOutAt *time.Time
	elapsed    *int64
}

func New(username string, sampler Sampler, submit SubmitFunc, opts ...Option) *Timer {
	t := &Timer{
		username: username,
		sampler:  sampler,
		submit:   submit,
		now:      time.Now,
		state:    Idle,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ClockInTime returns when the current session started, or nil.
func (t *Timer) ClockInTime() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clockInAt
}

// ClockOutTime returns when the current session ended, or nil.
func (t *Timer) ClockOutTime() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clockOutAt
}

// ElapsedSeconds returns the completed session's duration, or nil while no
// session has finished.
func (t *Timer) ElapsedSeconds() *int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// ClockIn starts a session. Calling it while already Running is a no-op; a
// Stopped session must be Reset first. A sampler that fails to start (for
// example because location permission was denied) leaves the session Running
// without location samples — the error is returned so the caller can tell
// the user, but it does not end the session.
func (t *Timer) ClockIn(ctx context.Context) error {
	t.mu.Lock()
	switch t.state {
	case Running:
		t.mu.Unlock()
		log.Printf("⚠️ ClockIn ignored: session for %s already running", t.username)
		return nil
	case Stopped:
		t.mu.Unlock()
		return ErrPrecondition
	}

	now := t.now()
	t.clockInAt = &now
	t.state = Running
	t.mu.Unlock()

	log.Printf("🕒 %s clocked in at %s", t.username, now.Format(time.RFC3339))

	if err := t.sampler.Start(ctx); err != nil {
		if errors.Is(err, location.ErrPermissionDenied) {
			log.Printf("⚠️ Location permission denied for %s; session continues without samples", t.username)
		} else {
			log.Printf("⚠️ Location sampler failed to start for %s: %v", t.username, err)
		}
		return err
	}

	return nil
}

// ClockOut ends the running session. The sampler is stopped and drained
// before the elapsed time is computed, then a {workingTime, location: null}
// snapshot is submitted. Submission failures are logged and absorbed; the
// session still transitions to Stopped.
func (t *Timer) ClockOut(ctx context.Context) (int64, error) {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return 0, ErrPrecondition
	}
	if t.clockInAt == nil {
		t.mu.Unlock()
		log.Printf("❌ ClockOut for %s: clock-in time missing", t.username)
		return 0, ErrPrecondition
	}
	t.mu.Unlock()

	// No further samples may be yielded or submitted once Stop returns.
	t.sampler.Stop()

	t.mu.Lock()
	now := t.now()
	t.clockOutAt = &now
	elapsed := int64(now.Sub(*t.clockInAt) / time.Second)
	t.elapsed = &elapsed
	t.state = Stopped
	t.mu.Unlock()

	log.Printf("🕒 %s clocked out after %d seconds", t.username, elapsed)

	if err := t.submit(ctx, &elapsed, nil); err != nil {
		log.Printf("❌ Failed to submit working time for %s: %v", t.username, err)
	}

	return elapsed, nil
}

// Reset clears the finished session and returns to Idle. Only legal from
// Stopped.
func (t *Timer) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Stopped {
		return ErrPrecondition
	}

	t.clockInAt = nil
	t.clockOutAt = nil
	t.elapsed = nil
	t.state = Idle
	return nil
}

// RunDisplay invokes display with the current date and time strings every
// second until the context is cancelled. Failures in the callback are caught
// and logged; the tick never stops on its own.
func (t *Timer) RunDisplay(ctx context.Context, display func(date, clock string)) {
	tick := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ Display tick failed: %v", r)
			}
		}()
		now := t.now()
		display(now.Format("Mon Jan 02 2006"), now.Format("3:04:05 PM"))
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
