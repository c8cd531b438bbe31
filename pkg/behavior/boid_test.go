package behavior

import (
	"math"
	"math/rand"
	"testing"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/geometry"
)

// testSettings is a template with round numbers so force directions are easy
// to reason about: radii 10/70/50, speed 5, force 1, cube 500.
func testSettings() Settings {
	return Settings{
		Size:             10,
		SeparationRadius: 10,
		AlignmentRadius:  50,
		CohesionRadius:   70,
		MaxSpeed:         5,
		MaxForce:         1,
		CubeSize:         500,
	}
}

// noImpulseRand returns a deterministic source whose next Float64 is >= the
// impulse chance, so a single ComputeForces call takes the neighbor branch.
func noImpulseRand(t *testing.T) *rand.Rand {
	t.Helper()
	for seed := int64(0); seed < 1000; seed++ {
		if rand.New(rand.NewSource(seed)).Float64() >= impulseChance {
			return rand.New(rand.NewSource(seed))
		}
	}
	t.Fatal("no seed found that avoids the impulse branch")
	return nil
}

// impulseRand is the counterpart: the next Float64 is below the impulse
// chance, forcing the random-kick branch.
func impulseRand(t *testing.T) *rand.Rand {
	t.Helper()
	for seed := int64(0); seed < 1000; seed++ {
		if rand.New(rand.NewSource(seed)).Float64() < impulseChance {
			return rand.New(rand.NewSource(seed))
		}
	}
	t.Fatal("no seed found that forces the impulse branch")
	return nil
}

func TestDeriveSettings(t *testing.T) {
	// Size 10 with the reference default factors 10/16/20.
	s := DeriveSettings(10, 10, 16, 20, 5, 1, 500)

	if s.SeparationRadius != 50 {
		t.Errorf("SeparationRadius = %v; want 50 (size*factor/2)", s.SeparationRadius)
	}
	if s.CohesionRadius != 160 {
		t.Errorf("CohesionRadius = %v; want 160 (size*factor)", s.CohesionRadius)
	}
	if s.AlignmentRadius != 200 {
		t.Errorf("AlignmentRadius = %v; want 200 (size*factor)", s.AlignmentRadius)
	}
	if s.ContainmentMargin() != 20 {
		t.Errorf("ContainmentMargin = %v; want 20 (2*size)", s.ContainmentMargin())
	}
	if s.CloseDistance() != 330 {
		t.Errorf("CloseDistance = %v; want 330 (size + 2*cohesion)", s.CloseDistance())
	}
}

func TestNew(t *testing.T) {
	s := testSettings()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		b := New(rng, s)

		half := s.CubeSize / 2
		if math.Abs(b.Position.X) > half || math.Abs(b.Position.Y) > half || math.Abs(b.Position.Z) > half {
			t.Fatalf("boid %d spawned outside the cube: %v", i, b.Position)
		}
		wantSpeed := s.MaxSpeed / 3
		if math.Abs(b.Velocity.Len()-wantSpeed) > 1e-9 {
			t.Fatalf("boid %d initial speed = %v; want %v", i, b.Velocity.Len(), wantSpeed)
		}
		if b.Group != NoGroup {
			t.Fatalf("boid %d spawned with group %d; want NoGroup", i, b.Group)
		}
		if b.Color != DefaultColor {
			t.Fatalf("boid %d spawned with color %v; want default", i, b.Color)
		}
	}
}

func TestComputeForces_Separation(t *testing.T) {
	// Me at origin. Neighbor at 5,0,0 — inside the separation radius.
	// The accumulated force must push me away (negative X).
	s := testSettings()
	me := &Boid{}
	neighbor := &Boid{Position: geometry.Vec3{X: 5}}

	me.ComputeForces([]*Boid{me, neighbor}, s, noImpulseRand(t))

	if me.force.X >= 0 {
		t.Errorf("expected negative X force (separation), got %v", me.force)
	}
	if me.force.Y != 0 || me.force.Z != 0 {
		t.Errorf("expected force along X only, got %v", me.force)
	}
}

func TestComputeForces_Alignment(t *testing.T) {
	// Me at origin, stationary. Neighbor at 30,0,0 moving +X.
	// The neighbor is outside the separation radius (10) and, with zero
	// velocity of my own, the cohesion pull and alignment push both point
	// +X; the total must too.
	s := testSettings()
	me := &Boid{}
	neighbor := &Boid{
		Position: geometry.Vec3{X: 30},
		Velocity: geometry.Vec3{X: 2},
	}

	me.ComputeForces([]*Boid{me, neighbor}, s, noImpulseRand(t))

	if me.force.X <= 0 {
		t.Errorf("expected positive X force (alignment+cohesion), got %v", me.force)
	}
}

func TestComputeForces_CohesionOnly(t *testing.T) {
	// Me at origin. Neighbor at 60,0,0 — outside separation (10) and
	// alignment (50), inside cohesion (70). Only the cohesion pull fires.
	s := testSettings()
	me := &Boid{}
	neighbor := &Boid{Position: geometry.Vec3{X: 60}, Velocity: geometry.Vec3{Y: 3}}

	me.ComputeForces([]*Boid{me, neighbor}, s, noImpulseRand(t))

	if me.force.X <= 0 {
		t.Errorf("expected positive X pull toward neighbor, got %v", me.force)
	}
	if me.force.Y != 0 {
		t.Errorf("neighbor velocity leaked into the force (alignment fired?): %v", me.force)
	}
}

func TestComputeForces_ZeroNeighbors(t *testing.T) {
	// Alone in the middle of the cube: no neighbor force, no containment.
	// The accumulator must stay exactly zero.
	s := testSettings()
	me := &Boid{Velocity: geometry.Vec3{X: 1}}

	me.ComputeForces([]*Boid{me}, s, noImpulseRand(t))

	if !me.force.Eq(geometry.Vec3{}) {
		t.Errorf("expected zero force for a lone centered boid, got %v", me.force)
	}
}

func TestComputeForces_OutOfRangeNeighborDoesNotBrake(t *testing.T) {
	// Me moving +X. A neighbor far outside every radius.
	// A naive steering transform would emit "desired zero minus velocity"
	// and brake; the correct result is zero force.
	s := testSettings()
	me := &Boid{Velocity: geometry.Vec3{X: 5}}
	far := &Boid{Position: geometry.Vec3{X: 200}}

	me.ComputeForces([]*Boid{me, far}, s, noImpulseRand(t))

	if !me.force.Eq(geometry.Vec3{}) {
		t.Errorf("expected zero force for out-of-range neighbor, got %v", me.force)
	}
}

func TestComputeForces_SteeringClampedToMaxForce(t *testing.T) {
	// A single very close neighbor produces the strongest possible
	// separation; the steering transform still may not exceed MaxForce.
	// Weight 2 on separation caps the total at 2*MaxForce.
	s := testSettings()
	me := &Boid{Velocity: geometry.Vec3{X: 5}}
	neighbor := &Boid{Position: geometry.Vec3{X: 0.01}}

	me.ComputeForces([]*Boid{me, neighbor}, s, noImpulseRand(t))

	if mag := me.force.Len(); mag > 2*s.MaxForce+1e-9 {
		t.Errorf("separation force %v exceeds weighted MaxForce cap %v", mag, 2*s.MaxForce)
	}
	if me.force.X >= 0 {
		t.Errorf("expected repulsion (negative X), got %v", me.force)
	}
}

func TestComputeForces_CoincidentNeighborsStayFinite(t *testing.T) {
	// Ten boids stacked on the same point. The distance floor must keep
	// every component finite.
	s := testSettings()
	flock := make([]*Boid, 10)
	for i := range flock {
		flock[i] = &Boid{Position: geometry.Vec3{X: 1, Y: 2, Z: 3}}
	}

	me := flock[0]
	me.ComputeForces(flock, s, noImpulseRand(t))

	for _, c := range []float64{me.force.X, me.force.Y, me.force.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Fatalf("coincident neighbors produced a non-finite force: %v", me.force)
		}
	}
}

func TestComputeForces_Impulse(t *testing.T) {
	// Force the random-kick branch. The impulse replaces everything,
	// including containment: even pressed against a wall the only force is
	// the kick at exactly 4*MaxForce.
	s := testSettings()
	me := &Boid{Position: geometry.Vec3{X: s.CubeSize / 2}} // on the +X face
	neighbor := &Boid{Position: geometry.Vec3{X: s.CubeSize/2 - 1}}

	me.ComputeForces([]*Boid{me, neighbor}, s, impulseRand(t))

	wantMag := 4 * s.MaxForce
	if mag := me.force.Len(); math.Abs(mag-wantMag) > 1e-9 {
		t.Errorf("impulse magnitude = %v; want exactly %v", mag, wantMag)
	}
}

func TestComputeForces_Containment(t *testing.T) {
	s := testSettings()
	half := s.CubeSize / 2
	push := containmentScale * s.MaxForce

	tests := []struct {
		name string
		pos  geometry.Vec3
		want geometry.Vec3
	}{
		{"Center is force free", geometry.Vec3{}, geometry.Vec3{}},
		{"Near +X face", geometry.Vec3{X: half - 1}, geometry.Vec3{X: -push}},
		{"Near -X face", geometry.Vec3{X: -half + 1}, geometry.Vec3{X: push}},
		{"Near +Y face", geometry.Vec3{Y: half - 1}, geometry.Vec3{Y: -push}},
		{"Near -Z face", geometry.Vec3{Z: -half + 1}, geometry.Vec3{Z: push}},
		{"Corner pushes on all three axes", geometry.Vec3{X: half, Y: half, Z: -half},
			geometry.Vec3{X: -push, Y: -push, Z: push}},
		{"Just inside the margin", geometry.Vec3{X: half - s.ContainmentMargin() - 1}, geometry.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Boid{Position: tt.pos}
			if got := b.containment(s); !got.Eq(tt.want) {
				t.Errorf("containment at %v = %v; want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestIntegrate_SpeedInvariant(t *testing.T) {
	// Whatever force accumulated, the post-integration speed is exactly
	// MaxSpeed.
	s := testSettings()

	tests := []struct {
		name  string
		vel   geometry.Vec3
		force geometry.Vec3
	}{
		{"No force", geometry.Vec3{X: 1}, geometry.Vec3{}},
		{"Small force", geometry.Vec3{X: 1}, geometry.Vec3{Y: 0.1}},
		{"Huge force", geometry.Vec3{X: 1}, geometry.Vec3{Y: 1e6}},
		{"Opposing force", geometry.Vec3{X: 3}, geometry.Vec3{X: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Boid{Velocity: tt.vel, force: tt.force}
			b.Integrate(s)
			if got := b.Velocity.Len(); math.Abs(got-s.MaxSpeed) > 1e-9 {
				t.Errorf("speed after Integrate = %v; want %v", got, s.MaxSpeed)
			}
		})
	}
}

func TestIntegrate_DegenerateVelocityStaysZero(t *testing.T) {
	// A force that exactly cancels the velocity leaves nothing to rescale;
	// the boid must freeze for the tick instead of going NaN.
	s := testSettings()
	b := &Boid{Velocity: geometry.Vec3{X: 2}, force: geometry.Vec3{X: -2}}

	b.Integrate(s)

	if !b.Velocity.Eq(geometry.Vec3{}) {
		t.Errorf("velocity = %v; want zero", b.Velocity)
	}
	if !b.Position.Eq(geometry.Vec3{}) {
		t.Errorf("position moved to %v without velocity", b.Position)
	}
}

func TestIntegrate_MovesAndClearsAccumulator(t *testing.T) {
	s := testSettings()
	b := &Boid{Velocity: geometry.Vec3{X: 1}, force: geometry.Vec3{Y: 1}}

	b.Integrate(s)

	// Position advanced by the rescaled velocity.
	if !b.Position.Eq(b.Velocity) {
		t.Errorf("position = %v; want %v (one velocity step)", b.Position, b.Velocity)
	}
	if !b.force.Eq(geometry.Vec3{}) {
		t.Errorf("accumulator not cleared: %v", b.force)
	}

	// A second Integrate with the cleared accumulator keeps the heading.
	prevDir := b.Velocity.Normalize()
	b.Integrate(s)
	if !b.Velocity.Normalize().Eq(prevDir) {
		t.Errorf("heading changed without any force: %v -> %v", prevDir, b.Velocity.Normalize())
	}
}

func TestComputeForces_Deterministic(t *testing.T) {
	// Identical flocks with identically seeded sources must accumulate
	// identical forces — the random source is injected for exactly this.
	s := testSettings()

	build := func() []*Boid {
		rng := rand.New(rand.NewSource(7))
		flock := make([]*Boid, 20)
		for i := range flock {
			flock[i] = New(rng, s)
		}
		return flock
	}

	a, b := build(), build()
	rngA := rand.New(rand.NewSource(99))
	rngB := rand.New(rand.NewSource(99))
	for i := range a {
		a[i].ComputeForces(a, s, rngA)
		b[i].ComputeForces(b, s, rngB)
	}
	for i := range a {
		if !a[i].force.Eq(b[i].force) {
			t.Fatalf("boid %d forces diverged: %v vs %v", i, a[i].force, b[i].force)
		}
	}
}

func TestCenterOrbit_Gain(t *testing.T) {
	// The dormant orbit force scales with distance to center: zero-ish at
	// one unit out, MaxForce a quarter cube out, 1.5x at the boundary.
	s := testSettings()
	s.CenterAlignment = true
	rng := noImpulseRand(t)

	quarterOut := &Boid{Position: geometry.Vec3{X: s.CubeSize / 4}}
	f := quarterOut.centerOrbit(s, rng)
	if math.Abs(f.Len()-s.MaxForce) > 1e-9 {
		t.Errorf("orbit gain at quarter cube = %v; want %v", f.Len(), s.MaxForce)
	}

	atBoundary := &Boid{Position: geometry.Vec3{X: s.CubeSize / 2}}
	f = atBoundary.centerOrbit(s, rng)
	if math.Abs(f.Len()-1.5*s.MaxForce) > 1e-9 {
		t.Errorf("orbit gain at boundary = %v; want %v", f.Len(), 1.5*s.MaxForce)
	}

	centered := &Boid{}
	if f := centered.centerOrbit(s, rng); !f.Eq(geometry.Vec3{}) {
		t.Errorf("orbit force at dead center = %v; want zero", f)
	}
}

func BenchmarkComputeForces(b *testing.B) {
	s := testSettings()
	rng := rand.New(rand.NewSource(1))
	flock := make([]*Boid, 200)
	for i := range flock {
		flock[i] = New(rng, s)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flock[i%len(flock)].ComputeForces(flock, s, rng)
	}
}
