package catalog

import (
	"math/rand/v2"
	"sync"

	"github.com/handiism/music-universe/internal/model"
)

// DefaultPositionRadius is the half-width of the cube positions are drawn from.
const DefaultPositionRadius = 10.0

// PositionAssigner gives every track without a source position a random
// point in [-radius, radius] on each axis, and remembers it by track id for
// the rest of the session so layouts stay stable across refetches.
type PositionAssigner struct {
	mu       sync.Mutex
	rng      *rand.Rand
	radius   float64
	assigned map[model.TrackID]model.Position
}

// NewPositionAssigner creates an assigner. A nil rng selects a randomly
// seeded PCG source; a non-positive radius selects DefaultPositionRadius.
func NewPositionAssigner(radius float64, rng *rand.Rand) *PositionAssigner {
	if radius <= 0 {
		radius = DefaultPositionRadius
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PositionAssigner{
		rng:      rng,
		radius:   radius,
		assigned: make(map[model.TrackID]model.Position),
	}
}

// Radius returns the sampling half-width.
func (a *PositionAssigner) Radius() float64 {
	return a.radius
}

// Assign sets t.Position when it is nil. Source positions are left alone.
func (a *PositionAssigner) Assign(t *model.Track) {
	if t.Position != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	pos, ok := a.assigned[t.ID]
	if !ok {
		pos = model.Position{a.sample(), a.sample(), a.sample()}
		a.assigned[t.ID] = pos
	}
	t.Position = &pos
}

func (a *PositionAssigner) sample() float64 {
	return (a.rng.Float64()*2 - 1) * a.radius
}
