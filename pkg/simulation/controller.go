package simulation

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// State labels the control plane's lifecycle: Idle (no run goroutine),
// Running, Paused. Stop returns the controller to Idle.
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Controller is the control plane between the user-facing goroutine and the
// simulation run goroutine. Exactly two goroutines ever share state here,
// and the only shared mutable state is three atomic flags plus an immutable
// Params pointer; the run loop polls them once per tick, never mid-pass.
// The run loop never blocks on the presentation side (snapshot sends drop
// when the channel is full) and Stop is the single join-style handoff.
type Controller struct {
	fps  int
	seed int64
	log  *zap.Logger

	mu    sync.Mutex
	state State
	done  chan struct{}

	paused  atomic.Bool
	stopped atomic.Bool
	pending atomic.Bool
	next    atomic.Pointer[Params]

	snapshots chan Snapshot
}

// NewController builds a controller ticking at fps. A zero seed means every
// Start picks a fresh time-based seed; any other value makes runs
// reproducible.
func NewController(fps int, seed int64, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		fps:       fps,
		seed:      seed,
		log:       log,
		snapshots: make(chan Snapshot, 2),
	}
}

// Start launches the run goroutine with a fresh flock built from the given
// snapshot. Valid only from Idle; calling it while a run is active is a
// no-op returning false, so a second loop can never start. A frameBudget
// greater than zero puts the run in recording mode: the loop ends on its
// own after that many unpaused ticks, exactly as if Stop had been called.
func (c *Controller) Start(ctx context.Context, p Params, frameBudget int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return false
	}

	c.stopped.Store(false)
	c.paused.Store(false)
	c.pending.Store(false)
	c.next.Store(nil)

	seed := c.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	flock := NewFlock(p, rand.New(rand.NewSource(seed)))

	c.done = make(chan struct{})
	c.state = Running
	c.log.Info("simulation started",
		zap.Int("boids", p.NumBoids),
		zap.Int64("seed", seed),
		zap.Int("frame_budget", frameBudget))

	go c.run(ctx, flock, frameBudget)
	return true
}

// Pause raises the pause signal. The run loop keeps ticking (resize,
// grouping and snapshots continue) but skips the physics passes. Idempotent.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return
	}
	c.paused.Store(true)
	c.state = Paused
	c.log.Info("simulation paused")
}

// Resume clears the pause signal. Idempotent.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Paused {
		return
	}
	c.paused.Store(false)
	c.state = Running
	c.log.Info("simulation resumed")
}

// Update stores a new parameter snapshot for the run loop to adopt at the
// next tick boundary. The whole snapshot is applied at once: the template
// changes for every boid and the population target triggers a grow or
// shrink, all before the next physics pass. Returns false when no run is
// active.
func (c *Controller) Update(p Params) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return false
	}
	c.next.Store(&p)
	c.pending.Store(true)
	return true
}

// Stop raises the one-way stop signal, clears pause so a paused loop can
// still observe it, and blocks until the run goroutine has fully exited.
// After Stop returns no further tick side effects occur and the controller
// is back in Idle, ready for the next Start. Stopping an idle controller is
// a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	done := c.done
	if done == nil {
		c.mu.Unlock()
		return
	}
	c.stopped.Store(true)
	c.paused.Store(false)
	c.mu.Unlock()

	<-done
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshots is the run loop's outward data path. The channel is never
// closed; consumers should also watch Done.
func (c *Controller) Snapshots() <-chan Snapshot { return c.snapshots }

var noRun = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done returns a channel closed when the current run goroutine has exited.
// An idle controller returns an already-closed channel.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return noRun
	}
	return c.done
}

// run is the simulation goroutine: one iteration per tick, paced at the
// configured fps. Control signals are polled exactly once per iteration.
func (c *Controller) run(ctx context.Context, f *Flock, budget int) {
	defer func() {
		c.mu.Lock()
		c.state = Idle
		close(c.done)
		c.mu.Unlock()
		c.log.Info("run loop exited", zap.Int("final_population", f.Len()))
	}()

	limiter := rate.NewLimiter(rate.Limit(c.fps), 1)
	recording := budget > 0
	framesLeft := budget

	for seq := 1; ; seq++ {
		if err := limiter.Wait(ctx); err != nil {
			// Context canceled: treated like a stop signal.
			return
		}
		if c.stopped.Load() {
			return
		}
		if c.pending.CompareAndSwap(true, false) {
			if p := c.next.Load(); p != nil {
				f.Apply(*p)
				c.log.Info("parameters updated",
					zap.Int("boids", p.NumBoids),
					zap.Float64("max_speed", p.Settings.MaxSpeed))
			}
		}

		paused := c.paused.Load()
		f.Tick(paused)

		select {
		case c.snapshots <- f.snapshot(seq, paused, recording, framesLeft):
		default:
			// Presentation side is busy; drop the frame.
		}

		if recording {
			// Paused ticks do not consume budget, so the captured video
			// still covers the requested duration of live simulation.
			if !paused {
				framesLeft--
			}
			if framesLeft <= 0 {
				c.log.Info("frame budget exhausted", zap.Int("frames", budget))
				return
			}
		}
	}
}
