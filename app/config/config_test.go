package config

import (
	"database/sql"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(memoryfs.New(), "/cfg/config.json")
	require.NoError(t, cfg.Load())

	assert.False(t, cfg.Gemini.Model.Valid)
	assert.False(t, cfg.Resumes.Dir.Valid)

	cfg.SetDefaults()
	assert.Equal(t, "resumes", cfg.Resumes.Dir.V)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	fs := memoryfs.New()

	cfg := NewConfig(fs, "/cfg/config.json")
	cfg.Gemini.Model = sql.Null[string]{V: "gemini-2.5-pro", Valid: true}
	cfg.Resumes.Dir = sql.Null[string]{V: "/data/resumes", Valid: true}
	require.NoError(t, cfg.Save())

	loaded := NewConfig(fs, "/cfg/config.json")
	require.NoError(t, loaded.Load())
	assert.Equal(t, "gemini-2.5-pro", loaded.Gemini.Model.V)
	assert.Equal(t, "/data/resumes", loaded.Resumes.Dir.V)

	// Defaults don't override explicitly configured values.
	loaded.SetDefaults()
	assert.Equal(t, "/data/resumes", loaded.Resumes.Dir.V)
}

func TestConfigLoadInvalidJSON(t *testing.T) {
	t.Parallel()
	fs := memoryfs.New()

	require.NoError(t, fs.MkdirAll("/cfg", 0o755))
	require.NoError(t, vfs.WriteFile(fs, "/cfg/config.json", []byte("{nope"), 0o644))

	cfg := NewConfig(fs, "/cfg/config.json")
	assert.ErrorContains(t, cfg.Load(), "failed parsing configuration file")
}
