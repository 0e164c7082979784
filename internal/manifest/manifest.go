// Package manifest reads the optional appstrap.yaml project file. The
// manifest pins launch parameters for a project directory; environment
// variables still take precedence at launch time.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const FileName = "appstrap.yaml"

type Manifest struct {
	// App is the importable application reference, e.g. "main:app"
	App      string `yaml:"app"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Frontend string `yaml:"frontend"`
}

// Read loads appstrap.yaml from dir. A missing file is reported via
// os.ErrNotExist so callers can treat it as optional.
func Read(dir string) (*Manifest, error) {
	var m Manifest
	bs, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(bs, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ModuleAndAttribute splits the app reference into its module path and
// attribute name, e.g. "api.server:application" -> ("api.server", "application").
func (m *Manifest) ModuleAndAttribute() (string, string, error) {
	parts := strings.Split(m.App, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid app reference: %s", m.App)
	}
	moduleName := strings.TrimSuffix(parts[0], ".py")
	return moduleName, parts[1], nil
}
