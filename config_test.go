package collision

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("pipelined: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.FrameRate)
	assert.Equal(t, 256, cfg.ResultBuffer)
	assert.Equal(t, "collision", cfg.LogPrefix)
	assert.True(t, cfg.Pipelined)
	assert.Equal(t, time.Second/60, cfg.FramePeriod())
}

func TestParseConfig_Matrix(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
frame_rate: 30
matrix:
  - [player, floor]
  - [Enemy, projectile]
`))
	require.NoError(t, err)

	m, err := cfg.BuildMatrix()
	require.NoError(t, err)
	assert.True(t, m.ShouldCollideTags(TagPlayer, TagFloor))
	assert.True(t, m.ShouldCollideTags(TagFloor, TagPlayer))
	assert.True(t, m.ShouldCollideTags(TagProjectile, TagEnemy))
	assert.False(t, m.ShouldCollideTags(TagPlayer, TagEnemy))
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown tag":   "matrix:\n  - [player, dragon]\n",
		"short pair":    "matrix:\n  - [player]\n",
		"zero rate":     "frame_rate: 0\n",
		"no buffer":     "result_buffer: 0\n",
		"not yaml":      "matrix: [",
		"negative rate": "frame_rate: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.yaml")
	writeConfig(t, path, "debug: true\nmatrix:\n  - [player, wall]\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.True(t, cfg.Debug)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWorld_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.yaml")
	writeConfig(t, path, "matrix:\n  - [player, floor]\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	w, err := NewCollisionWorld(cfg, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.True(t, w.Matrix().ShouldCollideTags(TagPlayer, TagFloor))

	writeConfig(t, path, "result_buffer: 8\nmatrix:\n  - [player, enemy]\n")
	require.NoError(t, w.Reload())
	assert.False(t, w.Matrix().ShouldCollideTags(TagPlayer, TagFloor))
	assert.True(t, w.Matrix().ShouldCollideTags(TagPlayer, TagEnemy))
	assert.Equal(t, 256, w.Config().ResultBuffer)
	assert.Equal(t, 1, w.Stats().Reloads)

	writeConfig(t, path, "matrix:\n  - [player, nobody]\n")
	assert.Error(t, w.Reload())
	assert.True(t, w.Matrix().ShouldCollideTags(TagPlayer, TagEnemy))
}

func TestWorld_ReloadSwitchesLatencyMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.yaml")
	writeConfig(t, path, "pipelined: true\nmatrix:\n  - [player, enemy]\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	w, err := NewCollisionWorld(cfg, nil)
	require.NoError(t, err)
	defer w.Close()

	player := newOwner("player", TagPlayer)
	w.Register(player, sphereAt(0, 0, 0, 1), false)
	w.Register(newOwner("enemy", TagEnemy), sphereAt(0, 0, 0, 1), false)

	w.Update(frameDt)
	assert.Empty(t, player.contacts)

	writeConfig(t, path, "pipelined: false\nmatrix:\n  - [player, enemy]\n")
	require.NoError(t, w.Reload())
	assert.Len(t, player.contacts, 1, "pass in flight is delivered on switch")

	w.Update(frameDt)
	assert.Len(t, player.contacts, 2)
}

func TestWorld_ReloadWithoutFile(t *testing.T) {
	w := newTestWorld(false)
	defer w.Close()
	assert.Error(t, w.Reload())
}

func TestConfigWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collision.yaml")
	writeConfig(t, path, "debug: false\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Close()

	// Unrelated files in the same directory are ignored.
	writeConfig(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	writeConfig(t, path, "debug: true\n")

	require.Eventually(t, func() bool {
		changed, err := cw.Poll()
		return err == nil && changed
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, cw.Close())
	require.NoError(t, cw.Close())
}

func TestWorld_WatchAppliesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.yaml")
	writeConfig(t, path, "watch: true\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	w, err := NewCollisionWorld(cfg, nil)
	require.NoError(t, err)
	defer w.Close()

	player := newOwner("player", TagPlayer)
	w.Register(player, sphereAt(0, 0, 0, 1), false)
	w.Register(newOwner("floor", TagFloor), boxAt(0, -1, 0, 1), true)

	w.Update(frameDt)
	require.Empty(t, player.contacts)

	writeConfig(t, path, "watch: true\nmatrix:\n  - [player, floor]\n")
	require.Eventually(t, func() bool {
		w.Update(frameDt)
		return len(player.contacts) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, w.Stats().Reloads, 1)
}
