package bootstrap

import (
	"context"
	"fmt"

	"github.com/cobaltdesk/backend/internal/panel"
	"github.com/cobaltdesk/backend/internal/saga"
	"github.com/cobaltdesk/backend/internal/shared/types"
)

// Well-known shared-data keys for artifacts exchanged between steps.
var (
	// KeyTheme holds the active theme name
	KeyTheme = saga.NewKey[string]("surface.theme")
	// KeyLayout holds the applied layout name
	KeyLayout = saga.NewKey[string]("surface.layout")
)

// PanelKey returns the shared-data key holding the panel ID for a kind
func PanelKey(kind string) saga.Key[string] {
	return saga.NewKey[string]("panel." + kind)
}

// ThemeStep activates the surface theme.
type ThemeStep struct {
	Theme string
}

func (s *ThemeStep) ID() string   { return "theme" }
func (s *ThemeStep) Name() string { return "activate theme" }

func (s *ThemeStep) Execute(ctx context.Context, run *saga.Context) saga.Result {
	theme := s.Theme
	if theme == "" {
		theme = "default"
	}
	saga.Put(run, KeyTheme, theme)

	r := saga.Succeed(s.ID(), theme)
	r.CompensationData = map[string]interface{}{"theme": theme}
	return r
}

func (s *ThemeStep) Compensate(ctx context.Context, run *saga.Context) saga.Result {
	// A missing key means the theme was never applied or is already gone
	saga.Remove(run, KeyTheme)
	return saga.Succeed(s.ID(), nil)
}

// PanelStep creates one panel through the resilient factory and registers it
// with the panel manager. Factory failures surface as fallback placeholders,
// not step failures; the step itself only fails when a panel the manifest
// marks required comes back as a fallback, or when a declared dependency is
// missing from the run.
type PanelStep struct {
	Spec     types.PanelSpec
	Required bool
	Factory  *panel.ResilientFactory
	Manager  *panel.Manager
}

func (s *PanelStep) ID() string   { return "panel:" + s.Spec.Kind }
func (s *PanelStep) Name() string { return "create panel " + s.Spec.Kind }

func (s *PanelStep) Execute(ctx context.Context, run *saga.Context) saga.Result {
	for _, dep := range s.Spec.DependsOn {
		if _, ok := saga.Lookup(run, PanelKey(dep)); !ok {
			return saga.Fail(s.ID(), fmt.Errorf("panel %q requires %q, which is not in this run", s.Spec.Kind, dep))
		}
	}

	p := s.Factory.CreatePanel(ctx, s.Spec)

	if s.Required && p.Fallback {
		// A required panel cannot run degraded, fail the step before the
		// placeholder becomes part of the surface
		return saga.Fail(s.ID(), fmt.Errorf("required panel %q unavailable: %s", s.Spec.Kind, p.Reason))
	}

	s.Manager.Register(p)
	saga.Put(run, PanelKey(s.Spec.Kind), p.ID)

	r := saga.Succeed(s.ID(), p)
	r.CompensationData = map[string]interface{}{"panel_id": p.ID, "kind": s.Spec.Kind}
	return r
}

func (s *PanelStep) Compensate(ctx context.Context, run *saga.Context) saga.Result {
	key := PanelKey(s.Spec.Kind)
	panelID, ok := saga.Lookup(run, key)
	if !ok {
		// Already compensated, or the panel was never created
		return saga.Succeed(s.ID(), nil)
	}

	// An unknown ID means the panel is already gone; that is not an error
	s.Manager.Dispose(panelID)
	saga.Remove(run, key)
	return saga.Succeed(s.ID(), nil)
}

// LayoutStep applies the surface layout once all panels exist.
type LayoutStep struct {
	Layout string
}

func (s *LayoutStep) ID() string   { return "layout" }
func (s *LayoutStep) Name() string { return "apply layout" }

func (s *LayoutStep) Execute(ctx context.Context, run *saga.Context) saga.Result {
	layout := s.Layout
	if layout == "" {
		layout = "grid"
	}
	saga.Put(run, KeyLayout, layout)

	r := saga.Succeed(s.ID(), layout)
	r.CompensationData = map[string]interface{}{"layout": layout}
	return r
}

func (s *LayoutStep) Compensate(ctx context.Context, run *saga.Context) saga.Result {
	saga.Remove(run, KeyLayout)
	return saga.Succeed(s.ID(), nil)
}
