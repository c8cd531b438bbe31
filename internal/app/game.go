package app

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/behavior"
	"github.com/PancakeLord3000/Boid-Simulation/pkg/simulation"
	"github.com/PancakeLord3000/Boid-Simulation/pkg/ui"
)

const panelWidth = 280.0

// Game is the interactive front end: it owns the control panel, the orbit
// camera and the renderer, talks to the simulation only through the
// controller, and feeds captured frames to the recorder when a recording
// run is active.
type Game struct {
	ctx context.Context
	cfg *simulation.Config
	log *zap.Logger

	controller *simulation.Controller
	camera     *Camera
	renderer   *Renderer
	panel      *ui.UIPanel

	numBoids   *ui.Slider
	size       *ui.Slider
	separation *ui.Slider
	cohesion   *ui.Slider
	alignment  *ui.Slider
	maxSpeed   *ui.Slider
	maxForce   *ui.Slider
	duration   *ui.Slider
	record     *ui.Checkbox
	pauseBtn   *ui.Button

	lastSnap    simulation.Snapshot
	haveSnap    bool
	capturedSeq int

	recorder      *simulation.Recorder
	recordBoids   int
	recordSeconds int
	finalizing    sync.WaitGroup
}

// NewGame wires the whole front end from the configuration. The controller
// is idle until the Start button launches a run.
func NewGame(ctx context.Context, cfg *simulation.Config, log *zap.Logger) *Game {
	g := &Game{
		ctx:        ctx,
		cfg:        cfg,
		log:        log,
		controller: simulation.NewController(cfg.FPS, cfg.Seed, log),
		camera:     NewCamera(cfg.CubeSize * 1.2),
		renderer:   NewRenderer(cfg.WindowWidth, cfg.WindowHeight),
	}
	g.buildPanel()
	return g
}

func (g *Game) buildPanel() {
	x := float64(g.cfg.WindowWidth) - panelWidth - 10
	p := ui.NewUIPanel(x, 10, panelWidth, float64(g.cfg.WindowHeight)-20, "Boid Simulation")

	p.AddSection("Flock")
	g.numBoids = p.AddSlider("Num Boids", 10, 1000, float64(g.cfg.NumBoids), 10)
	g.size = p.AddSlider("Size", 1, 30, g.cfg.BoidSize, 1)
	p.EndSection()

	p.AddSection("Behavior")
	g.separation = p.AddSlider("Separation", 5, 25, g.cfg.Separation, 5)
	g.cohesion = p.AddSlider("Cohesion", 8, 64, g.cfg.Cohesion, 4)
	g.alignment = p.AddSlider("Alignment", 10, 50, g.cfg.Alignment, 5)
	g.maxSpeed = p.AddSlider("Max Speed", 1, 10, g.cfg.MaxSpeed, 1)
	g.maxForce = p.AddSlider("Max Force", 1, 5, g.cfg.MaxForce, 1)
	p.EndSection()

	p.AddSection("Recording")
	g.record = p.AddCheckbox("Record video", g.cfg.Record)
	g.duration = p.AddSlider("Duration (s)", 10, 300, float64(g.cfg.DurationSeconds()), 10)
	p.EndSection()

	p.AddSection("Run")
	p.AddButton("Start", g.start)
	g.pauseBtn = p.AddButton("Pause", g.togglePause)
	p.AddButton("Update", g.applyUpdate)
	p.AddButton("Stop", g.stop)
	p.EndSection()

	g.panel = p
}

// panelParams reads the current slider values into a parameter snapshot.
func (g *Game) panelParams() simulation.Params {
	s := behavior.DeriveSettings(
		g.size.Value,
		g.separation.Value, g.cohesion.Value, g.alignment.Value,
		g.maxSpeed.Value, g.maxForce.Value,
		g.cfg.CubeSize,
	)
	s.CenterAlignment = g.cfg.CenterAlignment
	return simulation.Params{NumBoids: int(g.numBoids.Value), Settings: s}
}

func (g *Game) start() {
	if g.controller.State() != simulation.Idle {
		return
	}

	budget := 0
	if g.record.Value {
		seconds := int(g.duration.Value)
		rec, err := simulation.NewRecorder(g.cfg.OutputDir, g.cfg.FPS, g.log)
		if err != nil {
			g.log.Error("could not start recording", zap.Error(err))
			return
		}
		g.recorder = rec
		g.recordBoids = int(g.numBoids.Value)
		g.recordSeconds = seconds
		budget = g.cfg.FPS * seconds
	}

	g.capturedSeq = 0
	g.controller.Start(g.ctx, g.panelParams(), budget)
}

func (g *Game) togglePause() {
	switch g.controller.State() {
	case simulation.Running:
		g.controller.Pause()
	case simulation.Paused:
		g.controller.Resume()
	}
}

func (g *Game) applyUpdate() {
	g.controller.Update(g.panelParams())
}

func (g *Game) stop() {
	g.controller.Stop()
	g.finishRecording()
}

// finishRecording hands the recorder off to a background goroutine that
// assembles the video, so the render loop never blocks on ffmpeg.
func (g *Game) finishRecording() {
	if g.recorder == nil {
		return
	}
	rec := g.recorder
	g.recorder = nil

	output := filepath.Join(g.cfg.OutputDir,
		simulation.VideoFileName(g.recordBoids, g.recordSeconds))

	g.finalizing.Add(1)
	go func() {
		defer g.finalizing.Done()
		if err := rec.Finalize(context.Background(), output); err != nil {
			g.log.Error("video assembly failed", zap.Error(err))
		}
	}()
}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	g.panel.Update()
	g.camera.Update(g.panel.Contains(ebiten.CursorPosition()))

	// Drain to the freshest snapshot; the display refresh can outrun the
	// simulation tick rate and stale frames are useless.
	for {
		select {
		case s := <-g.controller.Snapshots():
			g.lastSnap = s
			g.haveSnap = true
			continue
		default:
		}
		break
	}

	if g.controller.State() == simulation.Paused {
		g.pauseBtn.Label = "Resume"
	} else {
		g.pauseBtn.Label = "Pause"
	}

	// A recording run that ended on its own (frame budget exhausted) still
	// needs its video assembled.
	if g.recorder != nil && g.controller.State() == simulation.Idle {
		g.finishRecording()
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if g.haveSnap {
		g.renderer.DrawScene(screen, g.lastSnap, g.camera)
	} else {
		g.renderer.DrawCube(screen, g.cfg.CubeSize, g.camera)
	}

	// Capture before the panel and HUD are painted so the video shows only
	// the scene. One frame per unpaused simulation step, keyed by Seq.
	if g.recorder != nil && g.haveSnap && g.lastSnap.Recording &&
		!g.lastSnap.Paused && g.lastSnap.Seq != g.capturedSeq {
		g.capturedSeq = g.lastSnap.Seq
		img := image.NewRGBA(screen.Bounds())
		screen.ReadPixels(img.Pix)
		g.recorder.Capture(img)
	}

	g.panel.Draw(screen)
	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	hud := fmt.Sprintf("State: %s\nFPS: %.1f  TPS: %.1f",
		g.controller.State(), ebiten.ActualFPS(), ebiten.ActualTPS())
	if g.haveSnap {
		hud += fmt.Sprintf("\nTick: %d\nBoids: %d\nGroups: %d",
			g.lastSnap.Tick, len(g.lastSnap.Boids), g.lastSnap.Groups)
		if g.lastSnap.Recording {
			hud += fmt.Sprintf("\nFrames left: %d", g.lastSnap.FramesLeft)
		}
	}
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.WindowWidth, g.cfg.WindowHeight
}

// Run opens the window and blocks until it is closed or the context is
// canceled. The simulation goroutine and any pending video assembly are
// joined before returning.
func Run(ctx context.Context, cfg *simulation.Config, log *zap.Logger) error {
	g := NewGame(ctx, cfg, log)

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Boid Simulation")
	ebiten.SetTPS(cfg.FPS)

	err := ebiten.RunGame(g)

	g.controller.Stop()
	g.finishRecording()
	g.finalizing.Wait()

	if err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
