package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Generate(dir, false))

	for _, f := range Files {
		bs, err := os.ReadFile(filepath.Join(dir, f.Path))
		require.NoError(t, err, "missing %s", f.Path)
		assert.NotEmpty(t, bs)
	}

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `<div id="root">`)
	assert.Contains(t, string(html), "/src/main.jsx")

	entry, err := os.ReadFile(filepath.Join(dir, "src", "main.jsx"))
	require.NoError(t, err)
	assert.Contains(t, string(entry), "createRoot")
	assert.Contains(t, string(entry), "./App.jsx")

	pkg, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `"dev": "vite"`)
}

func TestGenerateRefusesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Generate(dir, false))

	err := Generate(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestGenerateForceOverwritesOwnOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Generate(dir, false))

	// Files we wrote ourselves match their expected content types
	require.NoError(t, Generate(dir, true))
}

func TestGenerateForceRefusesMismatchedContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Generate(dir, false))

	// A PNG posing as index.html must not be clobbered even with force
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), png, 0o644))

	err := Generate(dir, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}

func TestCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"npm install", "npm run dev"}, Commands())
}
