package headless_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/backend/headless"
	"github.com/valerio/go-dmg/dmg/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("closes after the frame budget", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.Config{Title: "Test"}))

		frame := video.NewFrameBuffer()
		for i := 0; i < 3; i++ {
			closeRequested, err := h.Update(frame)
			assert.NoError(t, err)
			assert.Equal(t, i == 2, closeRequested)
		}

		assert.Equal(t, 3, h.Frames())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("rejects zero frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		assert.ErrorIs(t, h.Init(backend.Config{}), headless.ErrNoFrames)
	})

	t.Run("saves snapshots", func(t *testing.T) {
		dir := t.TempDir()
		h := headless.New(5, headless.SnapshotConfig{
			Enabled:   true,
			Interval:  2,
			Directory: dir,
			ROMName:   "test",
		})
		require.NoError(t, h.Init(backend.Config{}))

		frame := video.NewFrameBuffer()
		for i := 0; i < 5; i++ {
			_, err := h.Update(frame)
			require.NoError(t, err)
		}

		// frames 2 and 4 on the interval, 5 as the final frame
		assert.Equal(t, []string{
			filepath.Join(dir, "test_frame_00002.png"),
			filepath.Join(dir, "test_frame_00004.png"),
			filepath.Join(dir, "test_frame_00005.png"),
		}, h.Snapshots())
		for _, path := range h.Snapshots() {
			_, err := os.Stat(path)
			assert.NoError(t, err)
		}
	})
}

func TestCreateSnapshotConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		config, err := headless.CreateSnapshotConfig(0, "", "roms/game.gb")
		require.NoError(t, err)
		assert.False(t, config.Enabled)
	})

	t.Run("explicit directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "shots")
		config, err := headless.CreateSnapshotConfig(10, dir, "roms/game.gb")
		require.NoError(t, err)

		assert.True(t, config.Enabled)
		assert.Equal(t, dir, config.Directory)
		assert.Equal(t, "game", config.ROMName)
		assert.DirExists(t, dir)
	})

	t.Run("temporary directory", func(t *testing.T) {
		config, err := headless.CreateSnapshotConfig(1, "", "cpu_instrs.gb")
		require.NoError(t, err)
		defer os.RemoveAll(config.Directory)

		assert.DirExists(t, config.Directory)
		assert.Equal(t, "cpu_instrs", config.ROMName)
	})
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
