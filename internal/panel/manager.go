package panel

import (
	"sync"

	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/shared/types"
)

// Manager tracks live panels across all surfaces
type Manager struct {
	mu        sync.RWMutex
	panels    map[string]*types.Panel // Protected by mu
	focusedID *string                 // Protected by mu
	metrics   *monitoring.Metrics
}

// NewManager creates a new panel manager
func NewManager() *Manager {
	return &Manager{
		panels: make(map[string]*types.Panel),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Register adds a panel to the registry and focuses it
func (m *Manager) Register(p *types.Panel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.panels[p.ID] = p
	m.focusedID = &p.ID

	if m.metrics != nil {
		m.metrics.PanelsActive.Set(float64(len(m.panels)))
	}
}

// Get retrieves a panel by ID
func (m *Manager) Get(id string) (*types.Panel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.panels[id]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent external modifications
	panelCopy := *p
	return &panelCopy, true
}

// List returns all panels, optionally filtered by surface
func (m *Manager) List(surfaceID *string) []*types.Panel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	panels := make([]*types.Panel, 0, len(m.panels))
	for _, p := range m.panels {
		if surfaceID == nil || p.SurfaceID == *surfaceID {
			panelCopy := *p
			panels = append(panels, &panelCopy)
		}
	}
	return panels
}

// Focus marks a panel as the focused one
func (m *Manager) Focus(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[id]; !ok {
		return false
	}
	m.focusedID = &id
	return true
}

// Dispose removes a panel from the registry. Returns false if the panel is
// unknown, which disposal during compensation treats as already cleaned up.
func (m *Manager) Dispose(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.panels[id]
	if !ok {
		return false
	}

	p.State = types.StateDisposed
	delete(m.panels, id)

	if m.focusedID != nil && *m.focusedID == id {
		m.focusedID = nil
		// Auto-focus another live panel
		for _, other := range m.panels {
			m.focusedID = &other.ID
			break
		}
	}

	if m.metrics != nil {
		m.metrics.PanelsActive.Set(float64(len(m.panels)))
	}
	return true
}

// Stats returns panel manager statistics
func (m *Manager) Stats() types.PanelStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active, fallback int
	for _, p := range m.panels {
		if p.Fallback {
			fallback++
		}
		if p.State == types.StateActive || p.State == types.StateDegraded {
			active++
		}
	}

	// Copy pointer to avoid race
	var focusedID *string
	if m.focusedID != nil {
		fid := *m.focusedID
		focusedID = &fid
	}

	return types.PanelStats{
		TotalPanels:    len(m.panels),
		ActivePanels:   active,
		FallbackPanels: fallback,
		FocusedPanelID: focusedID,
	}
}
