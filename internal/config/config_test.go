package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchwatch.yml")
	require.NoError(t, os.WriteFile(path, []byte("database_dir: /var/lib/patchwatch\nworkers: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/patchwatch", cfg.DatabaseDir)
	assert.Equal(t, 4, cfg.Workers)

	// Unset keys keep their defaults.
	assert.Equal(t, "[darcs-devel] ", cfg.SubjectPrefix)
	assert.Equal(t, "text/x-darcs-patch", cfg.BundleType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
