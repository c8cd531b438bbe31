package simulation

import (
	"math/rand"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/behavior"
)

// Params is the atomic parameter snapshot the control plane hands to Start
// and Update: the target population plus the behavioral template applied to
// every boid. It is always passed by value so a snapshot can never be
// observed half-written.
type Params struct {
	NumBoids int
	Settings behavior.Settings
}

// Flock owns the boid collection and advances it one tick at a time. All of
// its methods are called from exactly one goroutine (the controller's run
// loop, or a test); the control plane talks to it only through Params
// snapshots applied between ticks.
type Flock struct {
	boids    []*behavior.Boid
	target   int
	settings behavior.Settings
	rng      *rand.Rand
	tick     int

	colors     *groupPalette
	groupCount int
}

// NewFlock builds a flock of p.NumBoids randomly placed boids. The random
// source is injected so runs can be reproduced from a seed.
func NewFlock(p Params, rng *rand.Rand) *Flock {
	f := &Flock{
		target:   p.NumBoids,
		settings: p.Settings,
		rng:      rng,
		colors:   newGroupPalette(),
	}
	f.resize()
	return f
}

// Boids exposes the collection for rendering and tests. The slice must not
// be mutated outside the flock's own goroutine.
func (f *Flock) Boids() []*behavior.Boid { return f.boids }

// Settings returns the current behavioral template.
func (f *Flock) Settings() behavior.Settings { return f.settings }

// Len returns the current population.
func (f *Flock) Len() int { return len(f.boids) }

// Apply swaps in a new parameter snapshot. The template changes for every
// existing boid at once (boids read it by value on the next tick) and the
// population target takes effect at the start of the next tick.
func (f *Flock) Apply(p Params) {
	f.settings = p.Settings
	f.target = p.NumBoids
}

// Tick runs one simulation step: resize to the target population, then the
// physics passes (skipped while paused), then the grouping pass for colors.
//
// The physics is strictly two-phase: every boid computes its forces against
// the same positional snapshot before any boid moves. Interleaving the two
// loops would let later boids react to neighbors that already moved this
// tick, which changes the dynamics.
func (f *Flock) Tick(paused bool) {
	f.resize()

	if !paused {
		for _, b := range f.boids {
			b.ComputeForces(f.boids, f.settings, f.rng)
		}
		for _, b := range f.boids {
			b.Integrate(f.settings)
		}
		f.tick++
	}

	f.groupCount = f.regroup()
}

// resize grows the flock with fresh template-parameterized boids or shrinks
// it by removing uniformly random boids without replacement.
func (f *Flock) resize() {
	for len(f.boids) < f.target {
		f.boids = append(f.boids, behavior.New(f.rng, f.settings))
	}
	for len(f.boids) > f.target {
		i := f.rng.Intn(len(f.boids))
		last := len(f.boids) - 1
		f.boids[i] = f.boids[last]
		f.boids[last] = nil
		f.boids = f.boids[:last]
	}
}
