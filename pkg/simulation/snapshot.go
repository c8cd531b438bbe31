package simulation

import (
	"github.com/PancakeLord3000/Boid-Simulation/pkg/behavior"
	"github.com/PancakeLord3000/Boid-Simulation/pkg/geometry"
)

// BoidState is one boid's renderable state, copied out of the run goroutine
// so the presentation side never touches live simulation data.
type BoidState struct {
	Position geometry.Vec3
	Velocity geometry.Vec3
	Color    behavior.Color
	Group    int
}

// Snapshot is the per-tick message from the run loop to the presentation
// side. It is immutable once published. Seq increments on every loop
// iteration, paused ones included, while Tick only counts physics steps.
type Snapshot struct {
	Seq      int
	Tick     int
	Boids    []BoidState
	Settings behavior.Settings
	Groups   int

	Paused     bool
	Recording  bool
	FramesLeft int
}

func (f *Flock) snapshot(seq int, paused, recording bool, framesLeft int) Snapshot {
	states := make([]BoidState, len(f.boids))
	for i, b := range f.boids {
		states[i] = BoidState{
			Position: b.Position,
			Velocity: b.Velocity,
			Color:    b.Color,
			Group:    b.Group,
		}
	}
	return Snapshot{
		Seq:        seq,
		Tick:       f.tick,
		Boids:      states,
		Settings:   f.settings,
		Groups:     f.groupCount,
		Paused:     paused,
		Recording:  recording,
		FramesLeft: framesLeft,
	}
}
