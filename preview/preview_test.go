package preview

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockAdvance(t *testing.T) {
	c := clock{}
	c.setTotal(10, 2)
	c.advance(1)
	assert.Zero(t, c.t, "paused clock must not move")

	c.toggle()
	c.advance(1)
	assert.InDelta(t, 2, c.t, 1e-9)

	c.advance(10)
	assert.InDelta(t, 10, c.t, 1e-9)
	assert.False(t, c.playing, "clock stops at the end")

	c.toggle()
	assert.Zero(t, c.t, "playing from the end restarts")
	assert.True(t, c.playing)
}

func TestClockLoop(t *testing.T) {
	c := clock{loop: true}
	c.setTotal(4, 1)
	c.toggle()
	c.advance(5)
	assert.InDelta(t, 1, c.t, 1e-9)
	assert.True(t, c.playing)
}

func TestClockSeekClamps(t *testing.T) {
	c := clock{}
	c.setTotal(3, 0)
	assert.Equal(t, 1.0, c.speed)
	c.seek(-2)
	assert.Zero(t, c.t)
	c.seek(7)
	assert.Equal(t, 3.0, c.t)

	c.setTotal(1, 1)
	assert.Equal(t, 1.0, c.t, "shorter timeline pulls the playhead in")
}

func TestPackPixels(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range base.Pix {
		base.Pix[i] = uint8(i)
	}
	sub := base.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	out := packPixels(sub)
	require.Len(t, out, 2*2*4)
	assert.Equal(t, base.Pix[base.PixOffset(1, 1):][:8], out[:8])
	assert.Equal(t, base.Pix[base.PixOffset(1, 2):][:8], out[8:])
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logrus.NewEntry(logrus.New()), func() { reloaded <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("width: 2\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("reload not called")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
