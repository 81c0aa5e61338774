package location

import (
	"context"
	"math/rand"
	"sync"

	"worktrack-backend/internal/models"
)

// SimSource is a simulated GPS feed for development and the CLI agent: a
// random walk around a starting coordinate. It never denies permission.
type SimSource struct {
	mu  sync.Mutex
	pos models.Location
	rng *rand.Rand
}

func NewSimSource(lat, lng float64, seed int64) *SimSource {
	return &SimSource{
		pos: models.Location{Latitude: lat, Longitude: lng},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *SimSource) Begin(ctx context.Context) error { return nil }

func (s *SimSource) Current(ctx context.Context) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Roughly a few dozen meters per step
	s.pos.Latitude += (s.rng.Float64() - 0.5) * 0.0005
	s.pos.Longitude += (s.rng.Float64() - 0.5) * 0.0005
	return s.pos, nil
}

func (s *SimSource) End() {}
