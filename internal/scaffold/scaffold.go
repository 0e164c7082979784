// Package scaffold writes the starter files of a Vite + React frontend
// project: the root HTML document, the framework entry point, a single
// sample component, a stylesheet, and the package manifest that declares
// the install/dev commands.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/replicate/go/logging"
)

var logger = logging.New("scaffold")

//go:embed templates
var templatesFS embed.FS

// File maps a target path inside the project directory to its embedded
// template and the MIME type an existing file must match before --force
// is allowed to overwrite it.
type File struct {
	Path     string
	Template string
	MIME     string
}

var Files = []File{
	{Path: "index.html", Template: "templates/index.html", MIME: "text/html"},
	{Path: "src/main.jsx", Template: "templates/main.jsx", MIME: "text/"},
	{Path: "src/App.jsx", Template: "templates/App.jsx", MIME: "text/"},
	{Path: "src/styles.css", Template: "templates/styles.css", MIME: "text/"},
	{Path: "package.json", Template: "templates/package.json", MIME: "application/json"},
}

// Commands returns the two operator commands to run from the project
// directory after generation.
func Commands() []string {
	return []string{"npm install", "npm run dev"}
}

// Generate writes the scaffold files into dir. Existing files are never
// touched unless force is set, and even then only when their detected
// content type matches what the slot expects, so a stray binary at
// index.html is not silently clobbered.
func Generate(dir string, force bool) error {
	log := logger.Sugar()

	for _, f := range Files {
		target := filepath.Join(dir, f.Path)
		if _, err := os.Stat(target); err == nil {
			if !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", target)
			}
			if err := checkOverwrite(target, f.MIME); err != nil {
				return err
			}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", target, err)
		}
	}

	for _, f := range Files {
		target := filepath.Join(dir, f.Path)
		bs, err := templatesFS.ReadFile(f.Template)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", f.Template, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, bs, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		log.Infow("wrote scaffold file", "path", target)
	}
	return nil
}

func checkOverwrite(target, want string) error {
	mt, err := mimetype.DetectFile(target)
	if err != nil {
		return fmt.Errorf("failed to detect content type of %s: %w", target, err)
	}
	if !strings.HasPrefix(mt.String(), want) {
		return fmt.Errorf("refusing to overwrite %s: detected %s, expected %s*", target, mt.String(), want)
	}
	return nil
}
