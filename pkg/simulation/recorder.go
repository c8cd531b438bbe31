package simulation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Recorder captures rendered frames into a per-run scratch directory and
// assembles them into an mp4 with ffmpeg once the run ends. PNG encoding is
// slow enough to matter at 30 fps, so frames are handed to a bounded worker
// pool and only Finalize waits for them.
//
// Capture must be called from a single goroutine (the render loop); the
// workers only ever touch the image handed over to them.
type Recorder struct {
	fps       int
	dir       string
	framesDir string
	log       *zap.Logger

	frame int
	g     *errgroup.Group
}

// NewRecorder creates the scratch directory for one recording run under
// baseDir, named with a fresh uuid so concurrent or leftover runs never
// collide.
func NewRecorder(baseDir string, fps int, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir := filepath.Join(baseDir, "run-"+uuid.NewString())
	framesDir := filepath.Join(dir, "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating frames directory: %w", err)
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	return &Recorder{
		fps:       fps,
		dir:       dir,
		framesDir: framesDir,
		log:       log,
		g:         g,
	}, nil
}

// Capture queues one frame for encoding. Ownership of img transfers to the
// recorder; the caller must not reuse the pixel buffer afterwards.
func (r *Recorder) Capture(img *image.RGBA) {
	name := filepath.Join(r.framesDir, fmt.Sprintf("frame_%04d.png", r.frame))
	r.frame++

	r.g.Go(func() error {
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("creating frame file: %w", err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("encoding %s: %w", filepath.Base(name), err)
		}
		return nil
	})
}

// Frames returns how many frames have been captured so far.
func (r *Recorder) Frames() int { return r.frame }

// Flush blocks until every queued frame has been written out.
func (r *Recorder) Flush() error { return r.g.Wait() }

// Finalize waits for pending frame writes, assembles the video artifact at
// output and removes the scratch directory.
func (r *Recorder) Finalize(ctx context.Context, output string) error {
	if err := r.Flush(); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	if r.frame == 0 {
		return errors.New("no frames captured")
	}

	pattern := filepath.Join(r.framesDir, "frame_%04d.png")
	cmd := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs(pattern, output, r.fps)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, out)
	}
	r.log.Info("video assembled",
		zap.String("file", output),
		zap.Int("frames", r.frame))

	if err := os.RemoveAll(r.dir); err != nil {
		r.log.Warn("could not remove scratch directory",
			zap.String("dir", r.dir), zap.Error(err))
	}
	return nil
}

func ffmpegArgs(pattern, output string, fps int) []string {
	return []string{
		"-framerate", strconv.Itoa(fps),
		"-y",
		"-i", pattern,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		output,
	}
}

// VideoFileName is the default artifact name, encoding the population and
// the recorded duration.
func VideoFileName(numBoids, seconds int) string {
	return fmt.Sprintf("Boid_Simulation_%db_%ds.mp4", numBoids, seconds)
}
