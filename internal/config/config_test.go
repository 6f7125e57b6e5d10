package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T, dotenv string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "./res/courses.csv", cfg.Files.CoursesFile)
	assert.Equal(t, "datesheet.csv", cfg.Files.ExportFile)
	assert.Equal(t, "datesheet.xlsx", cfg.Files.ExportXLSXFile)
	assert.Equal(t, 1, cfg.Search.MinBreakSlots)
	assert.Equal(t, int64(2_000_000), cfg.Search.MaxSteps)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.False(t, cfg.Search.Parallel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromDotenv(t *testing.T) {
	chdirTemp(t,
		"MIN_BREAK_SLOTS=2\n"+
			"SEARCH_TIMEOUT=5s\n"+
			"PARALLEL_COMPONENTS=true\n"+
			"CSV_DELIMITER=,\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Search.MinBreakSlots)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.True(t, cfg.Search.Parallel)
	assert.Equal(t, ',', cfg.Files.Delim())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdirTemp(t, "MAX_STEPS=100\n")
	t.Setenv("MAX_STEPS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(250), cfg.Search.MaxSteps)
}

func TestDelimDefault(t *testing.T) {
	assert.Equal(t, ';', FilesConfig{}.Delim())
	assert.Equal(t, '\t', FilesConfig{Delimiter: "\t"}.Delim())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
	assert.Equal(t, time.Second, parseDuration("", time.Second))
	assert.Equal(t, time.Second, parseDuration("bogus", time.Second))
}
