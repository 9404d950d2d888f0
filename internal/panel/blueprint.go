package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cobaltdesk/backend/internal/shared/types"
	"github.com/google/uuid"
)

// Blueprint describes how to render a panel kind
type Blueprint struct {
	Kind    string                 `json:"kind" yaml:"kind"`
	Title   string                 `json:"title" yaml:"title"`
	Content map[string]interface{} `json:"content" yaml:"content"`
}

// BlueprintFactory is a reference Factory that builds panels from registered
// blueprints. Production deployments inject their own Factory; this one keeps
// the server runnable end to end and doubles as a test collaborator.
type BlueprintFactory struct {
	mu         sync.RWMutex
	blueprints map[string]Blueprint // Protected by mu, keyed by kind
}

// NewBlueprintFactory creates an empty blueprint factory
func NewBlueprintFactory() *BlueprintFactory {
	return &BlueprintFactory{
		blueprints: make(map[string]Blueprint),
	}
}

// Register adds or replaces the blueprint for a panel kind
func (f *BlueprintFactory) Register(bp Blueprint) error {
	if bp.Kind == "" {
		return fmt.Errorf("blueprint kind cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.blueprints[bp.Kind] = bp
	return nil
}

// CreatePanel builds a panel from the registered blueprint for spec.Kind
func (f *BlueprintFactory) CreatePanel(ctx context.Context, spec types.PanelSpec) (*types.Panel, error) {
	f.mu.RLock()
	bp, ok := f.blueprints[spec.Kind]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no blueprint registered for panel kind %q", spec.Kind)
	}

	title := spec.Title
	if title == "" {
		title = bp.Title
	}

	return &types.Panel{
		ID:        uuid.New().String(),
		Kind:      spec.Kind,
		Title:     title,
		SurfaceID: spec.SurfaceID,
		State:     types.StateActive,
		CreatedAt: time.Now(),
		Content:   bp.Content,
	}, nil
}
