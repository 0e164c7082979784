package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644)
	require.NoError(t, err)
	return dir
}

func TestRead(t *testing.T) {
	t.Parallel()

	dir := writeManifest(t, "app: api.server:application\nhost: 127.0.0.1\nport: 9090\nfrontend: web\n")
	m, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "api.server:application", m.App)
	assert.Equal(t, "127.0.0.1", m.Host)
	assert.Equal(t, 9090, m.Port)
	assert.Equal(t, "web", m.Frontend)
}

func TestReadMissing(t *testing.T) {
	t.Parallel()

	_, err := Read(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadInvalidYaml(t *testing.T) {
	t.Parallel()

	dir := writeManifest(t, "app: [\n")
	_, err := Read(dir)
	require.Error(t, err)
}

func TestModuleAndAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		app        string
		wantModule string
		wantAttr   string
		wantErr    bool
	}{
		{name: "plain", app: "main:app", wantModule: "main", wantAttr: "app"},
		{name: "dotted module", app: "api.server:application", wantModule: "api.server", wantAttr: "application"},
		{name: "py suffix stripped", app: "main.py:app", wantModule: "main", wantAttr: "app"},
		{name: "no colon", app: "main", wantErr: true},
		{name: "empty attribute", app: "main:", wantErr: true},
		{name: "empty module", app: ":app", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &Manifest{App: tt.app}
			mod, attr, err := m.ModuleAndAttribute()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModule, mod)
			assert.Equal(t, tt.wantAttr, attr)
		})
	}
}
