package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"worktrack-backend/internal/location"
	"worktrack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a frozen clock that tests advance by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSampler struct {
	mu       sync.Mutex
	startErr error
	started  int
	stopped  int
	onStop   func()
}

func (f *fakeSampler) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return f.startErr
}

func (f *fakeSampler) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	if f.onStop != nil {
		f.onStop()
	}
}

type submitCall struct {
	workingTime *int64
	location    *models.Location
}

type submitRecorder struct {
	mu    sync.Mutex
	calls []submitCall
	err   error
}

func (r *submitRecorder) submit(ctx context.Context, workingTime *int64, loc *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, submitCall{workingTime: workingTime, location: loc})
	return r.err
}

func newTestTimer(t *testing.T) (*Timer, *fakeClock, *fakeSampler, *submitRecorder) {
	t.Helper()
	clock := newFakeClock()
	sampler := &fakeSampler{}
	recorder := &submitRecorder{}
	timer := New("alice", sampler, recorder.submit, WithClock(clock.Now))
	return timer, clock, sampler, recorder
}

func TestClockInClockOutElapsed(t *testing.T) {
	timer, clock, sampler, recorder := newTestTimer(t)
	ctx := context.Background()

	require.Equal(t, Idle, timer.State())
	require.NoError(t, timer.ClockIn(ctx))
	assert.Equal(t, Running, timer.State())
	assert.NotNil(t, timer.ClockInTime())
	assert.Nil(t, timer.ElapsedSeconds())
	assert.Equal(t, 1, sampler.started)

	clock.Advance(3 * time.Second)

	elapsed, err := timer.ClockOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), elapsed)
	assert.Equal(t, Stopped, timer.State())
	assert.Equal(t, 1, sampler.stopped)

	require.NotNil(t, timer.ElapsedSeconds())
	assert.Equal(t, int64(3), *timer.ElapsedSeconds())
	require.NotNil(t, timer.ClockOutTime())
	assert.False(t, timer.ClockOutTime().Before(*timer.ClockInTime()))

	// Clock-out submits {workingTime, location: null}
	require.Len(t, recorder.calls, 1)
	require.NotNil(t, recorder.calls[0].workingTime)
	assert.Equal(t, int64(3), *recorder.calls[0].workingTime)
	assert.Nil(t, recorder.calls[0].location)
}

func TestClockInWhileRunningIsNoOp(t *testing.T) {
	timer, clock, sampler, _ := newTestTimer(t)
	ctx := context.Background()

	require.NoError(t, timer.ClockIn(ctx))
	first := timer.ClockInTime()

	clock.Advance(time.Minute)
	require.NoError(t, timer.ClockIn(ctx))

	assert.Equal(t, Running, timer.State())
	assert.Equal(t, first, timer.ClockInTime())
	assert.Equal(t, 1, sampler.started)
}

func TestClockInWhileStoppedIsRejected(t *testing.T) {
	timer, _, _, _ := newTestTimer(t)
	ctx := context.Background()

	require.NoError(t, timer.ClockIn(ctx))
	_, err := timer.ClockOut(ctx)
	require.NoError(t, err)

	err = timer.ClockIn(ctx)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, Stopped, timer.State())
}

func TestClockOutRequiresRunning(t *testing.T) {
	timer, _, sampler, recorder := newTestTimer(t)
	ctx := context.Background()

	_, err := timer.ClockOut(ctx)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, Idle, timer.State())
	assert.Equal(t, 0, sampler.stopped)
	assert.Empty(t, recorder.calls)

	require.NoError(t, timer.ClockIn(ctx))
	_, err = timer.ClockOut(ctx)
	require.NoError(t, err)

	// Second clock-out is illegal from Stopped
	_, err = timer.ClockOut(ctx)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, 1, sampler.stopped)
}

func TestClockOutWaitsForSamplerBeforeMeasuring(t *testing.T) {
	timer, clock, sampler, _ := newTestTimer(t)
	ctx := context.Background()

	// Simulate a slow sampler drain: the wall clock keeps moving while
	// Stop is awaited, and that time belongs to the session.
	sampler.onStop = func() { clock.Advance(10 * time.Second) }

	require.NoError(t, timer.ClockIn(ctx))
	clock.Advance(3 * time.Second)

	elapsed, err := timer.ClockOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), elapsed)
}

func TestResetOnlyFromStopped(t *testing.T) {
	timer, _, _, _ := newTestTimer(t)
	ctx := context.Background()

	assert.ErrorIs(t, timer.Reset(), ErrPrecondition)

	require.NoError(t, timer.ClockIn(ctx))
	assert.ErrorIs(t, timer.Reset(), ErrPrecondition)

	_, err := timer.ClockOut(ctx)
	require.NoError(t, err)

	require.NoError(t, timer.Reset())
	assert.Equal(t, Idle, timer.State())
	assert.Nil(t, timer.ClockInTime())
	assert.Nil(t, timer.ClockOutTime())
	assert.Nil(t, timer.ElapsedSeconds())

	// A fresh session can start after reset
	require.NoError(t, timer.ClockIn(ctx))
	assert.Equal(t, Running, timer.State())
}

func TestPermissionDeniedKeepsSessionRunning(t *testing.T) {
	timer, clock, sampler, recorder := newTestTimer(t)
	sampler.startErr = fmt.Errorf("start sampler: %w", location.ErrPermissionDenied)
	ctx := context.Background()

	err := timer.ClockIn(ctx)
	assert.ErrorIs(t, err, location.ErrPermissionDenied)
	assert.Equal(t, Running, timer.State())

	// The degraded session still clocks out normally
	clock.Advance(5 * time.Second)
	elapsed, err := timer.ClockOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), elapsed)
	require.Len(t, recorder.calls, 1)
}

func TestSubmitFailureDoesNotBlockClockOut(t *testing.T) {
	timer, clock, _, recorder := newTestTimer(t)
	recorder.err = fmt.Errorf("connection refused")
	ctx := context.Background()

	require.NoError(t, timer.ClockIn(ctx))
	clock.Advance(2 * time.Second)

	elapsed, err := timer.ClockOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), elapsed)
	assert.Equal(t, Stopped, timer.State())
}

func TestRunDisplaySurvivesPanic(t *testing.T) {
	timer, _, _, _ := newTestTimer(t)

	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		timer.RunDisplay(ctx, func(date, clock string) {
			assert.NotEmpty(t, date)
			assert.NotEmpty(t, clock)
			select {
			case calls <- struct{}{}:
			default:
			}
			panic("display broke")
		})
	}()

	// The immediate tick fires and its panic is absorbed
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("display tick never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunDisplay did not stop on cancel")
	}
}
