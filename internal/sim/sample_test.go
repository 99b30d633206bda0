package sim

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rim-SeungJae/eternal-survival/internal/config"
	"github.com/Rim-SeungJae/eternal-survival/internal/data"
	"github.com/Rim-SeungJae/eternal-survival/internal/pattern"
)

const sampleDir = "../../config"

func TestSampleEncounter(t *testing.T) {
	cfg, err := config.Load(filepath.Join(sampleDir, "simulate.yaml"))
	require.NoError(t, err)
	cfg.Catalog.Path = filepath.Join(sampleDir, "catalog.yaml")
	cfg.Catalog.ScriptDir = filepath.Join(sampleDir, "scripts")

	s, err := New(context.Background(), Options{
		Config:  cfg,
		Catalog: data.FileSource(cfg.Catalog.Path),
		Scripts: data.DirScripts(cfg.Catalog.ScriptDir),
	})
	require.NoError(t, err)

	s.Step(600)

	r := s.Report()
	assert.Equal(t, uint64(600), r.Ticks)
	assert.NotEmpty(t, r.Outcomes, "the boss acted at least once in 20s")
	assert.Less(t, r.BossHP, r.BossMaxHP, "targets chip at the boss")
	assert.Len(t, r.Pools, 4)
}

func TestSampleScriptsCompile(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(sampleDir, "scripts", "*"+data.ScriptExt))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		src, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NoError(t, pattern.CompileScript(src), f)
	}
}
