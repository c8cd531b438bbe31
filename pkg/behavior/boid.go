package behavior

import (
	"math/rand"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/geometry"
)

const (
	// impulseChance is the per-tick probability that a boid ignores its
	// neighborhood entirely and kicks itself in a random direction.
	impulseChance = 0.1

	// impulseScale multiplies MaxForce for the random impulse.
	impulseScale = 4.0

	// containmentScale multiplies MaxForce for the cube containment push.
	containmentScale = 5.0

	// minDistance floors neighbor distances before inverse weighting, so
	// coincident boids cannot produce an unbounded separation force.
	minDistance = 0.001
)

// NoGroup marks a boid that currently belongs to no neighbor group.
const NoGroup = -1

// Color is an RGB triple in [0, 1], the form the renderer consumes.
type Color struct {
	R, G, B float64
}

// DefaultColor is the color of ungrouped boids.
var DefaultColor = Color{R: 0, G: 0, B: 0}

// Settings is the behavioral parameter template shared by a whole flock.
// It is passed around by value: a live reconfiguration swaps the flock's
// single template between ticks, so no boid can ever observe a half-updated
// parameter set.
type Settings struct {
	Size             float64
	SeparationRadius float64
	AlignmentRadius  float64
	CohesionRadius   float64
	MaxSpeed         float64
	MaxForce         float64
	CubeSize         float64

	// CenterAlignment enables a dormant force that swirls the flock around
	// the cube center. Off by default; the flock behaves fine without it.
	CenterAlignment bool
}

// DeriveSettings resolves slider-style factors into absolute radii. The
// radii scale with boid size the way the reference controls are calibrated:
// separation spans half its factor, cohesion and alignment their full factor,
// each times the boid size.
func DeriveSettings(size, sepFactor, cohFactor, alignFactor, maxSpeed, maxForce, cubeSize float64) Settings {
	return Settings{
		Size:             size,
		SeparationRadius: size * sepFactor / 2,
		CohesionRadius:   size * cohFactor,
		AlignmentRadius:  size * alignFactor,
		MaxSpeed:         maxSpeed,
		MaxForce:         maxForce,
		CubeSize:         cubeSize,
	}
}

// ContainmentMargin is the distance from a cube face at which the
// containment force engages.
func (s Settings) ContainmentMargin() float64 {
	return 2 * s.Size
}

// CloseDistance is the neighbor distance used for visual grouping. It is
// deliberately wider than the behavioral radii so groups read as one cloud.
func (s Settings) CloseDistance() float64 {
	return s.Size + 2*s.CohesionRadius
}

// Boid represents a single entity in the flock.
// Boids simulate the flocking behaviour of birds following Craig Reynolds'
// classic three rules (separation, alignment, cohesion); each boid steers
// only from what it senses locally, and the group motion emerges.
// Position and Velocity are exported so the renderer can read them; the
// force accumulator stays private because only ComputeForces/Integrate may
// touch it.
type Boid struct {
	Position geometry.Vec3
	Velocity geometry.Vec3
	force    geometry.Vec3

	// Group and Color are presentation metadata maintained by the flock's
	// clustering pass, not behavioral state.
	Group int
	Color Color
}

// New creates a boid at a random position inside the cube, heading in a
// random direction at a third of the allowed speed.
func New(rng *rand.Rand, s Settings) *Boid {
	half := s.CubeSize / 2
	return &Boid{
		Position: geometry.Vec3{
			X: (rng.Float64()*2 - 1) * half,
			Y: (rng.Float64()*2 - 1) * half,
			Z: (rng.Float64()*2 - 1) * half,
		},
		Velocity: randomDirection(rng).Mul(s.MaxSpeed / 3),
		Group:    NoGroup,
		Color:    DefaultColor,
	}
}

// ComputeForces accumulates this tick's steering forces from the full flock.
// With a small probability the boid ignores everything — neighbors and cube
// walls alike — and takes a strong random impulse instead; this keeps the
// flock from settling into a stable orbit. Callers must run ComputeForces
// for every boid before any boid integrates, so all forces are computed
// against the same positional snapshot.
func (b *Boid) ComputeForces(flock []*Boid, s Settings, rng *rand.Rand) {
	if rng.Float64() < impulseChance {
		b.applyForce(randomDirection(rng).Mul(impulseScale * s.MaxForce))
		return
	}

	b.applyForce(b.separation(flock, s).Mul(2))   // keeps personal space
	b.applyForce(b.alignment(flock, s).Mul(0.2))  // matches neighbor heading
	b.applyForce(b.cohesion(flock, s))            // pulls toward the local center
	b.applyForce(b.containment(s))
	if s.CenterAlignment {
		b.applyForce(b.centerOrbit(s, rng).Mul(0.1))
	}
}

// Integrate applies the accumulated force to the velocity, rescales the
// velocity to exactly MaxSpeed, moves the boid, and clears the accumulator.
// A degenerate zero velocity is left at zero rather than turned into NaN.
func (b *Boid) Integrate(s Settings) {
	b.Velocity = b.Velocity.Add(b.force)
	b.Velocity = b.Velocity.ScaleTo(s.MaxSpeed)
	b.Position = b.Position.Add(b.Velocity)
	b.force = geometry.Vec3{}
}

func (b *Boid) applyForce(f geometry.Vec3) {
	b.force = b.force.Add(f)
}

// steer converts a desired direction into a steering force: scale the
// desired direction to MaxSpeed, subtract the current velocity, clamp the
// result to MaxForce. A zero desired direction contributes no force at all —
// without that check the transform would read as "brake to a stop", which is
// not what an empty neighborhood means.
func (b *Boid) steer(desired geometry.Vec3, s Settings) geometry.Vec3 {
	if desired.Len() < geometry.Epsilon {
		return geometry.Vec3{}
	}
	return desired.ScaleTo(s.MaxSpeed).Sub(b.Velocity).Limit(s.MaxForce)
}

// separation steers away from neighbors inside SeparationRadius, each
// weighted by the inverse of its distance so the closest neighbors dominate.
func (b *Boid) separation(flock []*Boid, s Settings) geometry.Vec3 {
	var sum geometry.Vec3
	count := 0

	for _, other := range flock {
		if other == b {
			continue
		}
		dist := b.Position.DistanceTo(other.Position)
		if dist >= s.SeparationRadius {
			continue
		}
		if dist < minDistance {
			dist = minDistance
		}
		// Coincident boids give no usable direction but still count toward
		// the average.
		sum = sum.Add(b.Position.Sub(other.Position).ScaleTo(1 / dist))
		count++
	}

	if count == 0 {
		return geometry.Vec3{}
	}
	return b.steer(sum.Mul(1/float64(count)), s)
}

// alignment steers toward the average velocity of neighbors inside
// AlignmentRadius.
func (b *Boid) alignment(flock []*Boid, s Settings) geometry.Vec3 {
	var sum geometry.Vec3
	count := 0

	for _, other := range flock {
		if other == b {
			continue
		}
		if b.Position.DistanceTo(other.Position) < s.AlignmentRadius {
			sum = sum.Add(other.Velocity)
			count++
		}
	}

	if count == 0 {
		return geometry.Vec3{}
	}
	return b.steer(sum.Mul(1/float64(count)), s)
}

// cohesion steers toward the average position of neighbors inside
// CohesionRadius.
func (b *Boid) cohesion(flock []*Boid, s Settings) geometry.Vec3 {
	var sum geometry.Vec3
	count := 0

	for _, other := range flock {
		if other == b {
			continue
		}
		if b.Position.DistanceTo(other.Position) < s.CohesionRadius {
			sum = sum.Add(other.Position.Sub(b.Position))
			count++
		}
	}

	if count == 0 {
		return geometry.Vec3{}
	}
	return b.steer(sum.Mul(1/float64(count)), s)
}

// containment pushes the boid back inside the observation cube. Each axis is
// checked independently with a fixed inward force, so a boid in a corner gets
// pushed on several axes at once.
func (b *Boid) containment(s Settings) geometry.Vec3 {
	half := s.CubeSize / 2
	margin := s.ContainmentMargin()
	push := containmentScale * s.MaxForce

	var f geometry.Vec3
	if b.Position.X < -half+margin {
		f.X = push
	} else if b.Position.X > half-margin {
		f.X = -push
	}
	if b.Position.Y < -half+margin {
		f.Y = push
	} else if b.Position.Y > half-margin {
		f.Y = -push
	}
	if b.Position.Z < -half+margin {
		f.Z = push
	} else if b.Position.Z > half-margin {
		f.Z = -push
	}
	return f
}

// centerOrbit combines a tangential pull (cross with the vertical axis,
// flipped at random so neither spin direction wins) and an inward pull, then
// rescales by a quadratic gain of the distance to center: zero right at the
// center, full force a quarter cube out, 1.5x at the cube boundary.
func (b *Boid) centerOrbit(s Settings, rng *rand.Rand) geometry.Vec3 {
	toCenter := b.Position.Mul(-1)
	dist := toCenter.Len()
	if dist < geometry.Epsilon {
		return geometry.Vec3{}
	}

	axis := geometry.Vec3{Z: 1}
	if rng.Float64() < 0.5 {
		axis.Z = -1
	}
	tangent := toCenter.Cross(axis).Normalize().Mul(0.5 * s.MaxForce)
	inward := toCenter.Normalize().Mul(0.5 * s.MaxForce)
	total := tangent.Add(inward).Limit(s.MaxForce)

	quarter := s.CubeSize / 4
	half := s.CubeSize / 2
	gain := 1.5*(dist-quarter)/(half-quarter)*(dist-1)/(half-1) +
		(dist-half)/(quarter-half)*(dist-1)/(quarter-1)
	return total.ScaleTo(s.MaxForce * gain)
}

// randomDirection samples a uniform direction on the unit sphere by
// rejection from the enclosing cube.
func randomDirection(rng *rand.Rand) geometry.Vec3 {
	for {
		v := geometry.Vec3{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
			Z: rng.Float64()*2 - 1,
		}
		if l := v.LenSqr(); l > geometry.Epsilon && l <= 1 {
			return v.Normalize()
		}
	}
}
