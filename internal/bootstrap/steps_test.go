package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/infrastructure/resilience"
	"github.com/cobaltdesk/backend/internal/panel"
	"github.com/cobaltdesk/backend/internal/saga"
	"github.com/cobaltdesk/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T, fn panel.FactoryFunc) *panel.ResilientFactory {
	t.Helper()
	return panel.NewResilientFactory(fn, resilience.Config{
		FailureThreshold: 3,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	}, logging.NewNop())
}

func workingFactory(t *testing.T) *panel.ResilientFactory {
	return newTestFactory(t, func(ctx context.Context, spec types.PanelSpec) (*types.Panel, error) {
		return &types.Panel{
			ID:        "p-" + spec.Kind,
			Kind:      spec.Kind,
			SurfaceID: spec.SurfaceID,
			State:     types.StateActive,
			CreatedAt: time.Now(),
		}, nil
	})
}

func brokenFactory(t *testing.T) *panel.ResilientFactory {
	return newTestFactory(t, func(ctx context.Context, spec types.PanelSpec) (*types.Panel, error) {
		return nil, errors.New("renderer offline")
	})
}

func TestThemeStep(t *testing.T) {
	run := saga.NewContext("saga-1", nil)
	step := &ThemeStep{Theme: "dark"}

	res := step.Execute(context.Background(), run)
	require.True(t, res.Success)

	theme, ok := saga.Lookup(run, KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", theme)

	res = step.Compensate(context.Background(), run)
	require.True(t, res.Success)
	_, ok = saga.Lookup(run, KeyTheme)
	assert.False(t, ok)

	// Compensating again is fine: missing key means already compensated
	res = step.Compensate(context.Background(), run)
	assert.True(t, res.Success)
}

func TestPanelStepCreatesAndRegisters(t *testing.T) {
	manager := panel.NewManager()
	run := saga.NewContext("saga-1", nil)

	step := &PanelStep{
		Spec:    types.PanelSpec{Kind: "chart", SurfaceID: "s1"},
		Factory: workingFactory(t),
		Manager: manager,
	}

	res := step.Execute(context.Background(), run)
	require.True(t, res.Success)
	assert.Equal(t, "p-chart", res.CompensationData["panel_id"])

	panelID, ok := saga.Lookup(run, PanelKey("chart"))
	require.True(t, ok)
	_, found := manager.Get(panelID)
	assert.True(t, found)
}

func TestPanelStepCompensateDisposes(t *testing.T) {
	manager := panel.NewManager()
	run := saga.NewContext("saga-1", nil)
	step := &PanelStep{
		Spec:    types.PanelSpec{Kind: "chart", SurfaceID: "s1"},
		Factory: workingFactory(t),
		Manager: manager,
	}

	require.True(t, step.Execute(context.Background(), run).Success)
	panelID, _ := saga.Lookup(run, PanelKey("chart"))

	res := step.Compensate(context.Background(), run)
	require.True(t, res.Success)

	_, found := manager.Get(panelID)
	assert.False(t, found)
	_, ok := saga.Lookup(run, PanelKey("chart"))
	assert.False(t, ok)

	// Second compensation sees no key and succeeds
	assert.True(t, step.Compensate(context.Background(), run).Success)
}

func TestPanelStepOptionalDegradesToFallback(t *testing.T) {
	manager := panel.NewManager()
	run := saga.NewContext("saga-1", nil)
	step := &PanelStep{
		Spec:    types.PanelSpec{Kind: "chart", SurfaceID: "s1"},
		Factory: brokenFactory(t),
		Manager: manager,
	}

	res := step.Execute(context.Background(), run)
	require.True(t, res.Success)

	panelID, _ := saga.Lookup(run, PanelKey("chart"))
	p, found := manager.Get(panelID)
	require.True(t, found)
	assert.True(t, p.Fallback)
}

func TestPanelStepRequiredFailsOnFallback(t *testing.T) {
	manager := panel.NewManager()
	run := saga.NewContext("saga-1", nil)
	step := &PanelStep{
		Spec:     types.PanelSpec{Kind: "chart", SurfaceID: "s1"},
		Required: true,
		Factory:  brokenFactory(t),
		Manager:  manager,
	}

	res := step.Execute(context.Background(), run)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "required panel")

	// Nothing registered, nothing in shared data
	assert.Empty(t, manager.List(nil))
	_, ok := saga.Lookup(run, PanelKey("chart"))
	assert.False(t, ok)
}

func TestPanelStepMissingDependencyFails(t *testing.T) {
	run := saga.NewContext("saga-1", nil)
	step := &PanelStep{
		Spec:    types.PanelSpec{Kind: "inspector", DependsOn: []string{"editor"}},
		Factory: workingFactory(t),
		Manager: panel.NewManager(),
	}

	res := step.Execute(context.Background(), run)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, `requires "editor"`)
}

func TestLayoutStep(t *testing.T) {
	run := saga.NewContext("saga-1", nil)
	step := &LayoutStep{Layout: "columns"}

	require.True(t, step.Execute(context.Background(), run).Success)
	layout, ok := saga.Lookup(run, KeyLayout)
	require.True(t, ok)
	assert.Equal(t, "columns", layout)

	require.True(t, step.Compensate(context.Background(), run).Success)
	_, ok = saga.Lookup(run, KeyLayout)
	assert.False(t, ok)
}
