package panel

import (
	"context"
	"fmt"
	"sync"

	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/infrastructure/resilience"
	"github.com/cobaltdesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// ResilientFactory wraps a Factory with one circuit breaker per panel kind.
// Factory errors and panics are absorbed here: callers always get a panel
// back, real or fallback, and never an error.
type ResilientFactory struct {
	factory Factory
	config  resilience.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu       sync.RWMutex
	breakers map[string]*resilience.Breaker // Protected by mu, keyed by panel kind
}

// NewResilientFactory creates a breaker-guarded panel factory.
func NewResilientFactory(factory Factory, config resilience.Config, logger *logging.Logger) *ResilientFactory {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ResilientFactory{
		factory:  factory,
		config:   config,
		logger:   logger.Named("resilient-factory"),
		breakers: make(map[string]*resilience.Breaker),
	}
}

// WithMetrics adds metrics tracking to the factory
func (f *ResilientFactory) WithMetrics(metrics *monitoring.Metrics) *ResilientFactory {
	f.metrics = metrics
	return f
}

// CreatePanel builds the panel for spec through the kind's breaker. When the
// breaker rejects the call, or the underlying factory fails, a fallback
// placeholder is returned instead; the error never propagates to the caller.
func (f *ResilientFactory) CreatePanel(ctx context.Context, spec types.PanelSpec) *types.Panel {
	breaker := f.breaker(spec.Kind)

	if !breaker.CanExecute() {
		f.logger.Warn("circuit open, serving fallback",
			zap.String("kind", spec.Kind),
			zap.String("surface_id", spec.SurfaceID))
		f.recordFallback(spec.Kind, "circuit_open")
		return newFallback(spec, "circuit breaker open")
	}

	created, err := f.create(ctx, spec)
	if err != nil {
		breaker.RecordFailure(err)
		f.logger.Error("panel creation failed, serving fallback",
			zap.String("kind", spec.Kind),
			zap.Error(err))
		f.recordFallback(spec.Kind, "creation_failed")
		return newFallback(spec, err.Error())
	}

	breaker.RecordSuccess()
	if f.metrics != nil {
		f.metrics.PanelCreations.WithLabelValues(spec.Kind, "real").Inc()
	}
	return created
}

// create invokes the real factory, converting panics into errors so a
// misbehaving factory is indistinguishable from a failing one.
func (f *ResilientFactory) create(ctx context.Context, spec types.PanelSpec) (p *types.Panel, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("factory panic: %v", r)
		}
	}()

	p, err = f.factory.CreatePanel(ctx, spec)
	if err == nil && p == nil {
		err = fmt.Errorf("factory returned no panel for kind %q", spec.Kind)
	}
	return p, err
}

// breaker returns the breaker for a panel kind, creating it on first use.
// Breakers for distinct kinds are fully independent.
func (f *ResilientFactory) breaker(kind string) *resilience.Breaker {
	f.mu.RLock()
	b, ok := f.breakers[kind]
	f.mu.RUnlock()
	if ok {
		return b
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok = f.breakers[kind]; ok {
		return b
	}

	cfg := f.config
	prev := cfg.OnStateChange
	cfg.OnStateChange = func(name string, from, to resilience.State) {
		f.logger.Info("breaker state change",
			zap.String("kind", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
		if f.metrics != nil {
			f.metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			if to == resilience.StateOpen {
				f.metrics.BreakerTrips.WithLabelValues(name).Inc()
			}
		}
		if prev != nil {
			prev(name, from, to)
		}
	}

	b = resilience.New(kind, cfg)
	f.breakers[kind] = b
	return b
}

// BreakerStatus returns a snapshot of every breaker, keyed by panel kind.
func (f *ResilientFactory) BreakerStatus() map[string]resilience.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	status := make(map[string]resilience.Snapshot, len(f.breakers))
	for kind, b := range f.breakers {
		status[kind] = b.Snapshot()
	}
	return status
}

// ResetBreaker forces the named breaker closed. Returns false if no breaker
// exists for the kind.
func (f *ResilientFactory) ResetBreaker(kind string) bool {
	f.mu.RLock()
	b, ok := f.breakers[kind]
	f.mu.RUnlock()

	if !ok {
		return false
	}
	b.Reset()
	f.logger.Info("breaker reset", zap.String("kind", kind))
	return true
}

// ResetAllBreakers forces every breaker closed.
func (f *ResilientFactory) ResetAllBreakers() {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, b := range f.breakers {
		b.Reset()
	}
	f.logger.Info("all breakers reset", zap.Int("count", len(f.breakers)))
}

func (f *ResilientFactory) recordFallback(kind, cause string) {
	if f.metrics != nil {
		f.metrics.PanelCreations.WithLabelValues(kind, "fallback").Inc()
		f.metrics.PanelFallbacks.WithLabelValues(kind, cause).Inc()
	}
}
