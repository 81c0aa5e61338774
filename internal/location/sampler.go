// Package location produces the periodic position samples submitted while a
// session is running.
package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"worktrack-backend/internal/models"
)

// ErrPermissionDenied is reported when the position source refuses access.
var ErrPermissionDenied = errors.New("location: permission to access location denied")

// DefaultInterval is the sampling period while a session is active.
const DefaultInterval = 5 * time.Second

// Source is the underlying position-watching resource. Begin performs the
// permission check and acquires the watch; End releases it.
type Source interface {
	Begin(ctx context.Context) error
	Current(ctx context.Context) (models.Location, error)
	End()
}

// SubmitFunc forwards one sample to the server.
type SubmitFunc func(ctx context.Context, loc models.Location) error

// Sampler yields position samples at a fixed interval while active. The
// first sample fires immediately on Start; each sample is handed to the
// in-process observer synchronously and submitted to the server without
// blocking the next tick. A failed submission is logged and does not stop
// sampling. Restartable: Start after Stop begins a fresh sequence.
type Sampler struct {
	source   Source
	interval time.Duration
	onSample func(models.Location) // in-process observer for live display
	submit   SubmitFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSampler(source Source, interval time.Duration, onSample func(models.Location), submit SubmitFunc) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		source:   source,
		interval: interval,
		onSample: onSample,
		submit:   submit,
	}
}

// Start performs the permission check and begins the sampling loop. It
// returns ErrPermissionDenied (wrapped) when the source refuses access, in
// which case no samples will ever be produced for this activation.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("location: sampler already active")
	}

	if err := s.source.Begin(ctx); err != nil {
		return fmt.Errorf("start sampler: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)

	return nil
}

// Stop cancels the sampling loop and waits for it to drain, including any
// in-flight submissions. Idempotent; once Stop returns no further samples
// are yielded or submitted.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	var inflight sync.WaitGroup
	defer func() {
		inflight.Wait()
		s.source.End()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sample(ctx, &inflight)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sampler) sample(ctx context.Context, inflight *sync.WaitGroup) {
	pos, err := s.source.Current(ctx)
	if err != nil {
		log.Printf("❌ Error getting user's location: %v", err)
		return
	}

	if s.onSample != nil {
		s.onSample(pos)
	}

	// Fire-and-forget: the next tick must not wait on the network. The
	// submission gets its own deadline so cancelling the loop doesn't abort
	// a request already on the wire.
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		submitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.submit(submitCtx, pos); err != nil {
			log.Printf("❌ Error saving location sample: %v", err)
		}
	}()
}
