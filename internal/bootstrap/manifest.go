package bootstrap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// PanelEntry declares one panel of a surface
type PanelEntry struct {
	Kind      string   `yaml:"kind"`
	Title     string   `yaml:"title"`
	Required  bool     `yaml:"required"`
	DependsOn []string `yaml:"depends_on"`
}

// Manifest declares a surface: its theme, panels, and layout
type Manifest struct {
	Surface string       `yaml:"surface"`
	Theme   string       `yaml:"theme"`
	Layout  string       `yaml:"layout"`
	Panels  []PanelEntry `yaml:"panels"`
}

// Validate checks a manifest for structural problems
func (m *Manifest) Validate() error {
	if m.Surface == "" {
		return fmt.Errorf("manifest is missing a surface name")
	}
	if len(m.Panels) == 0 {
		return fmt.Errorf("manifest %q declares no panels", m.Surface)
	}

	kinds := make(map[string]bool, len(m.Panels))
	for _, p := range m.Panels {
		if p.Kind == "" {
			return fmt.Errorf("manifest %q has a panel with no kind", m.Surface)
		}
		if kinds[p.Kind] {
			return fmt.Errorf("manifest %q declares panel kind %q twice", m.Surface, p.Kind)
		}
		kinds[p.Kind] = true
	}

	// A panel may only depend on panels declared before it; steps run in
	// declared order, so a forward dependency could never be satisfied.
	seen := make(map[string]bool, len(m.Panels))
	for _, p := range m.Panels {
		for _, dep := range p.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("panel %q depends on %q, which is not declared before it", p.Kind, dep)
			}
		}
		seen[p.Kind] = true
	}
	return nil
}

// LoadManifest reads and validates a single surface manifest file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadDir loads every .yaml/.yml manifest in a directory, keyed by surface
// name. Files that fail to parse are skipped and reported in the error list.
func LoadDir(dir string) (map[string]*Manifest, []error) {
	manifests := make(map[string]*Manifest)
	var errs []error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".yaml") && !strings.HasSuffix(d.Name(), ".yml") {
			return nil
		}

		m, err := LoadManifest(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		manifests[m.Surface] = m
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	return manifests, errs
}
