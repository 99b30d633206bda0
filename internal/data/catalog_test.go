package data

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wardenCatalog = `
actors:
  warden:
    actions:
      - name: slam
        kind: strike
        cooldown: 4
        priority: 10
        max_range: 3
        interruptible: true
        params:
          telegraph: 0.75
          scale: 1.5
      - name: volley
        kind: barrage
        cooldown: 6
        priority: 5
        min_range: 3
        max_range: 12
        params:
          volleys: 3
          spread: 30
      - name: last-stand
        kind: nova
        cooldown: 20
        priority: 50
        max_health: 0.3
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(wardenCatalog))
	require.NoError(t, err)

	assert.Equal(t, []string{"warden"}, c.ActorNames())
	warden, ok := c.Actor("warden")
	require.True(t, ok)
	require.Len(t, warden.Actions, 3)

	slam := warden.Actions[0].Definition()
	assert.Equal(t, "slam", slam.Name)
	assert.Equal(t, 4.0, slam.Cooldown)
	assert.Equal(t, 10, slam.Priority)
	assert.Equal(t, 3.0, slam.MaxRange)
	assert.Equal(t, 1.0, slam.MaxHealthFrac, "omitted max_health is open")
	assert.True(t, slam.Interruptible)
	assert.Equal(t, 0.75, warden.Actions[0].Params["telegraph"])
	assert.Equal(t, 3, warden.Actions[1].Params["volleys"])

	last := warden.Actions[2].Definition()
	assert.True(t, math.IsInf(last.MaxRange, 1), "omitted max_range is unbounded")
	assert.Equal(t, 0.3, last.MaxHealthFrac)
	assert.False(t, last.Interruptible)

	_, ok = c.Actor("nobody")
	assert.False(t, ok)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"malformed", "actors: [", "parsing catalog"},
		{"no actors", "actors: {}", "no actors"},
		{"no actions", "actors:\n  a:\n    actions: []", "no actions"},
		{"empty name", "actors:\n  a:\n    actions:\n      - kind: strike", "empty name"},
		{"empty kind", "actors:\n  a:\n    actions:\n      - name: x", "empty kind"},
		{"duplicate", "actors:\n  a:\n    actions:\n      - {name: x, kind: strike}\n      - {name: x, kind: nova}", "duplicate name"},
		{"negative cooldown", "actors:\n  a:\n    actions:\n      - {name: x, kind: strike, cooldown: -1}", "negative cooldown"},
		{"inverted range", "actors:\n  a:\n    actions:\n      - {name: x, kind: strike, min_range: 5, max_range: 2}", "range window"},
		{"health above one", "actors:\n  a:\n    actions:\n      - {name: x, kind: strike, max_health: 1.5}", "health window"},
		{"inverted health", "actors:\n  a:\n    actions:\n      - {name: x, kind: strike, min_health: 0.8, max_health: 0.2}", "health window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseCatalog_ReportsAllProblems(t *testing.T) {
	_, err := ParseCatalog([]byte("actors:\n  a:\n    actions:\n      - {name: x, cooldown: -1}\n  b:\n    actions: []"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "empty kind")
	assert.ErrorContains(t, err, "negative cooldown")
	assert.ErrorContains(t, err, "actor b: no actions")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(wardenCatalog), 0o600))

	c, err := FileSource(path).LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Actors["warden"].Actions, 3)

	_, err = FileSource(filepath.Join(t.TempDir(), "absent.yaml")).LoadCatalog(context.Background())
	assert.ErrorContains(t, err, "reading catalog")
}

func TestDirScripts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pulse.tengo"), []byte("x := 1"), 0o600))
	load := DirScripts(dir)

	src, err := load("pulse")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", string(src))

	src, err = load("pulse.tengo")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", string(src))

	_, err = load("../secret")
	assert.ErrorContains(t, err, "not local")

	_, err = load("missing")
	assert.ErrorContains(t, err, "reading script")
}
