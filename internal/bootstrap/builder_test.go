package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/panel"
	"github.com/cobaltdesk/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *Manifest {
	return &Manifest{
		Surface: "main",
		Theme:   "dark",
		Layout:  "grid",
		Panels: []PanelEntry{
			{Kind: "editor", Title: "Editor", Required: true},
			{Kind: "inspector", Title: "Inspector", DependsOn: []string{"editor"}},
			{Kind: "console", Title: "Console"},
		},
	}
}

func TestBuildAndExecuteFullBootstrap(t *testing.T) {
	manager := panel.NewManager()
	builder := NewBuilder(workingFactory(t), manager, logging.NewNop())

	o, err := builder.Build(testManifest())
	require.NoError(t, err)

	ok, err := o.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Theme + three panels + layout all landed
	assert.Len(t, manager.List(nil), 3)
	results := o.Results()
	assert.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestBuildAndExecuteRollsBackOnRequiredPanelFailure(t *testing.T) {
	// editor succeeds, inspector is required but its factory always fails,
	// so the run compensates the editor panel and the theme.
	manager := panel.NewManager()
	factory := newTestFactory(t, func(ctx context.Context, spec types.PanelSpec) (*types.Panel, error) {
		if spec.Kind == "inspector" {
			return nil, errors.New("inspector renderer offline")
		}
		return &types.Panel{
			ID:        "p-" + spec.Kind,
			Kind:      spec.Kind,
			SurfaceID: spec.SurfaceID,
			State:     types.StateActive,
			CreatedAt: time.Now(),
		}, nil
	})

	m := &Manifest{
		Surface: "main",
		Theme:   "dark",
		Panels: []PanelEntry{
			{Kind: "editor"},
			{Kind: "inspector", Required: true, DependsOn: []string{"editor"}},
		},
	}

	builder := NewBuilder(factory, manager, logging.NewNop())
	o, err := builder.Build(m)
	require.NoError(t, err)

	ok, err := o.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Rollback removed the editor panel the run had created
	assert.Empty(t, manager.List(nil))
}

func TestBuildRejectsInvalidManifest(t *testing.T) {
	builder := NewBuilder(workingFactory(t), panel.NewManager(), logging.NewNop())

	_, err := builder.Build(&Manifest{Surface: "empty"})
	assert.Error(t, err)

	_, err = builder.Build(&Manifest{
		Surface: "fwd",
		Panels: []PanelEntry{
			{Kind: "a", DependsOn: []string{"b"}},
			{Kind: "b"},
		},
	})
	assert.Error(t, err)
}

func TestManifestValidateDuplicateKinds(t *testing.T) {
	m := &Manifest{
		Surface: "dup",
		Panels:  []PanelEntry{{Kind: "a"}, {Kind: "a"}},
	}
	assert.Error(t, m.Validate())
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.yaml")
	content := `surface: main
theme: dark
layout: grid
panels:
  - kind: editor
    title: Editor
    required: true
  - kind: console
    title: Console
    depends_on: [editor]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "main", m.Surface)
	require.Len(t, m.Panels, 2)
	assert.True(t, m.Panels[0].Required)
	assert.Equal(t, []string{"editor"}, m.Panels[1].DependsOn)
}

func TestLoadDirSkipsBrokenManifests(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(
		"surface: good\npanels:\n  - kind: editor\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(
		"surface: bad\npanels: {broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("nope"), 0o644))

	manifests, errs := LoadDir(dir)
	assert.Len(t, manifests, 1)
	assert.Contains(t, manifests, "good")
	assert.Len(t, errs, 1)
}
