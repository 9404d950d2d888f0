package panel

import (
	"context"
	"time"

	"github.com/cobaltdesk/backend/internal/shared/id"
	"github.com/cobaltdesk/backend/internal/shared/types"
)

// Factory builds real panels. Implementations may fail or panic; callers are
// expected to go through ResilientFactory rather than use one directly.
type Factory interface {
	CreatePanel(ctx context.Context, spec types.PanelSpec) (*types.Panel, error)
}

// FactoryFunc adapts a function to the Factory interface
type FactoryFunc func(ctx context.Context, spec types.PanelSpec) (*types.Panel, error)

func (f FactoryFunc) CreatePanel(ctx context.Context, spec types.PanelSpec) (*types.Panel, error) {
	return f(ctx, spec)
}

// newFallback builds a placeholder panel for a kind whose real creation path
// is unavailable or failed. It never touches the real factory.
func newFallback(spec types.PanelSpec, reason string) *types.Panel {
	return &types.Panel{
		ID:        id.NewPanelID().String(),
		Kind:      spec.Kind,
		Title:     spec.Title,
		SurfaceID: spec.SurfaceID,
		State:     types.StateDegraded,
		Fallback:  true,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
}
