package bootstrap

import (
	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/panel"
	"github.com/cobaltdesk/backend/internal/saga"
	"github.com/cobaltdesk/backend/internal/shared/id"
	"github.com/cobaltdesk/backend/internal/shared/types"
)

// Builder constructs single-use bootstrap sagas from surface manifests.
type Builder struct {
	factory   *panel.ResilientFactory
	manager   *panel.Manager
	logger    *logging.Logger
	publisher saga.Publisher
	metrics   *monitoring.Metrics
}

// NewBuilder creates a bootstrap builder
func NewBuilder(factory *panel.ResilientFactory, manager *panel.Manager, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		factory: factory,
		manager: manager,
		logger:  logger,
	}
}

// WithPublisher sets the lifecycle event publisher for built sagas
func (b *Builder) WithPublisher(p saga.Publisher) *Builder {
	b.publisher = p
	return b
}

// WithMetrics adds metrics tracking to built sagas
func (b *Builder) WithMetrics(m *monitoring.Metrics) *Builder {
	b.metrics = m
	return b
}

// Build assembles the saga for a manifest: theme, panels in declared order,
// then layout. The returned orchestrator is single-use.
func (b *Builder) Build(m *Manifest) (*saga.Orchestrator, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	surfaceID := id.NewSurfaceID().String()
	o := saga.NewOrchestrator(id.NewSagaID().String(), b.logger)
	if b.publisher != nil {
		o.WithPublisher(b.publisher)
	}
	if b.metrics != nil {
		o.WithMetrics(b.metrics)
	}

	steps := []saga.Step{&ThemeStep{Theme: m.Theme}}
	for _, entry := range m.Panels {
		steps = append(steps, &PanelStep{
			Spec:     panelSpec(entry, surfaceID),
			Required: entry.Required,
			Factory:  b.factory,
			Manager:  b.manager,
		})
	}
	steps = append(steps, &LayoutStep{Layout: m.Layout})

	for _, step := range steps {
		if err := o.AddStep(step); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func panelSpec(entry PanelEntry, surfaceID string) types.PanelSpec {
	return types.PanelSpec{
		Kind:      entry.Kind,
		Title:     entry.Title,
		SurfaceID: surfaceID,
		DependsOn: entry.DependsOn,
	}
}
