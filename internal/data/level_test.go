package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startLevel = `
name: start
entities:
  - classname: worldspawn
    message: Introduction
    model: maps/start.bsp
  - classname: info_player_start
    origin: "480 -352 88"
    angles: "0 90 0"
  - classname: light
    origin: "0 0 64"
`

func TestLoadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "start.yaml")
	require.NoError(t, os.WriteFile(path, []byte(startLevel), 0o644))

	lvl, err := LoadLevel(path)
	require.NoError(t, err)
	assert.Equal(t, "start", lvl.Name)
	assert.Equal(t, 3, lvl.Count())
	assert.Equal(t, "info_player_start", lvl.Entities[1].Classname())
	assert.Equal(t, "480 -352 88", lvl.Entities[1]["origin"])
}

func TestParseLevel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "name: x\nentities: []\n"},
		{"no worldspawn first", "name: x\nentities:\n  - classname: light\n"},
		{"missing classname", "name: x\nentities:\n  - classname: worldspawn\n  - origin: '0 0 0'\n"},
		{"bad yaml", "name: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevel([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadLevel_MissingFile(t *testing.T) {
	_, err := LoadLevel(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read level")
}

func TestLoadNamedLevel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "start.yaml"), []byte(startLevel), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "anon.yaml"), []byte("entities:\n  - classname: worldspawn\n"), 0o644))

	lvl, err := LoadNamedLevel(dir, "start")
	require.NoError(t, err)
	assert.Equal(t, 3, lvl.Count())

	lvl, err = LoadNamedLevel(dir, "anon")
	require.NoError(t, err)
	assert.Equal(t, "anon", lvl.Name)

	for _, name := range []string{"", "../start", "sub/start", `sub\start`, ".."} {
		_, err := LoadNamedLevel(dir, name)
		assert.ErrorContains(t, err, "bad level name", name)
	}
	_, err = LoadNamedLevel(dir, "e9m9")
	assert.ErrorContains(t, err, `level "e9m9"`)
}

func TestSampleLevel(t *testing.T) {
	lvl, err := LoadNamedLevel(filepath.Join("..", "..", "levels"), "start")
	require.NoError(t, err)
	assert.Equal(t, "worldspawn", lvl.Entities[0].Classname())
}
