package types

import "time"

// PanelState represents panel lifecycle states
type PanelState string

const (
	StateCreating PanelState = "creating"
	StateActive   PanelState = "active"
	StateDegraded PanelState = "degraded"
	StateDisposed PanelState = "disposed"
)

// PanelSpec describes a panel to be created by a factory
type PanelSpec struct {
	Kind      string                 `json:"kind"`
	Title     string                 `json:"title"`
	SurfaceID string                 `json:"surface_id"`
	DependsOn []string               `json:"depends_on,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// Panel represents a live panel instance on a surface
type Panel struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Title     string                 `json:"title"`
	SurfaceID string                 `json:"surface_id"`
	State     PanelState             `json:"state"`
	Fallback  bool                   `json:"fallback"`
	Reason    string                 `json:"reason,omitempty"` // Why a fallback was served
	CreatedAt time.Time              `json:"created_at"`
	Content   map[string]interface{} `json:"content,omitempty"`
}

// PanelStats contains panel manager statistics
type PanelStats struct {
	TotalPanels    int     `json:"total_panels"`
	ActivePanels   int     `json:"active_panels"`
	FallbackPanels int     `json:"fallback_panels"`
	FocusedPanelID *string `json:"focused_panel_id,omitempty"`
}
