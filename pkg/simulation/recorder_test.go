package simulation

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CaptureWritesNumberedFrames(t *testing.T) {
	r, err := NewRecorder(t.TempDir(), 30, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r.Capture(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	}
	require.NoError(t, r.Flush())
	assert.Equal(t, 3, r.Frames())

	for _, name := range []string{"frame_0000.png", "frame_0001.png", "frame_0002.png"} {
		info, err := os.Stat(filepath.Join(r.framesDir, name))
		require.NoError(t, err, "missing %s", name)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestRecorder_ScratchDirsDoNotCollide(t *testing.T) {
	base := t.TempDir()
	a, err := NewRecorder(base, 30, nil)
	require.NoError(t, err)
	b, err := NewRecorder(base, 30, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.dir, b.dir)
}

func TestRecorder_FinalizeWithoutFrames(t *testing.T) {
	r, err := NewRecorder(t.TempDir(), 30, nil)
	require.NoError(t, err)

	err = r.Finalize(context.Background(), filepath.Join(t.TempDir(), "out.mp4"))
	assert.ErrorContains(t, err, "no frames captured")
}

func TestFfmpegArgs(t *testing.T) {
	got := ffmpegArgs("frames/frame_%04d.png", "out.mp4", 30)
	want := []string{
		"-framerate", "30",
		"-y",
		"-i", "frames/frame_%04d.png",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"out.mp4",
	}
	assert.Equal(t, want, got)
}

func TestVideoFileName(t *testing.T) {
	assert.Equal(t, "Boid_Simulation_100b_60s.mp4", VideoFileName(100, 60))
}
