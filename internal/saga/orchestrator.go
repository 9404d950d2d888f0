package saga

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// Status represents the lifecycle of one saga run
type Status string

const (
	StatusPending            Status = "pending"
	StatusInProgress         Status = "in_progress"
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
	StatusCompensating       Status = "compensating"
	StatusCompensated        Status = "compensated"
	StatusCompensationFailed Status = "compensation_failed"
)

// Publisher receives lifecycle events, fire-and-forget
type Publisher interface {
	Publish(event types.Event)
}

// Orchestrator runs an ordered list of steps for one bootstrap attempt and
// drives reverse-order compensation when a step fails. Instances are
// single-use: steps are added before Execute, and Execute runs once.
type Orchestrator struct {
	sagaID    string
	logger    *logging.Logger
	publisher Publisher
	metrics   *monitoring.Metrics

	mu        sync.Mutex
	steps     []Step
	completed []Step // Protected by mu, in execution order
	status    Status
	run       *Context
}

// NewOrchestrator creates an orchestrator for one saga run
func NewOrchestrator(sagaID string, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		sagaID: sagaID,
		logger: &logging.Logger{Logger: logger.Named("saga").With(zap.String("saga_id", sagaID))},
		status: StatusPending,
	}
}

// WithPublisher sets the lifecycle event publisher
func (o *Orchestrator) WithPublisher(p Publisher) *Orchestrator {
	o.publisher = p
	return o
}

// WithMetrics adds metrics tracking to the orchestrator
func (o *Orchestrator) WithMetrics(m *monitoring.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// AddStep appends a step. Steps execute in the order they were added.
// Adding a step after Execute has started is a programmer error.
func (o *Orchestrator) AddStep(step Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status != StatusPending {
		return fmt.Errorf("cannot add step %q: saga already started", step.ID())
	}
	o.steps = append(o.steps, step)
	return nil
}

// Status returns the current run status
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Results returns the recorded step results of the run so far
func (o *Orchestrator) Results() map[string]Result {
	o.mu.Lock()
	run := o.run
	o.mu.Unlock()

	if run == nil {
		return map[string]Result{}
	}
	return run.Results()
}

// Execute runs every step in order. It returns true when all steps succeed.
// On the first failure it compensates the completed steps in reverse order
// and returns false. A second call on the same instance is rejected.
func (o *Orchestrator) Execute(ctx context.Context, progress ProgressFunc) (bool, error) {
	o.mu.Lock()
	if o.status != StatusPending {
		o.mu.Unlock()
		return false, fmt.Errorf("saga %s already started", o.sagaID)
	}
	o.status = StatusInProgress
	run := NewContext(o.sagaID, progress)
	o.run = run
	steps := o.steps
	o.mu.Unlock()

	o.logger.Info("saga started", zap.Int("steps", len(steps)))
	start := time.Now()

	for i, step := range steps {
		run.ReportProgress(i*100/len(steps), fmt.Sprintf("running %s", step.Name()))

		result := o.runStep(ctx, step, run)
		run.recordResult(result)
		o.publishStepCompleted(result)

		if o.metrics != nil {
			o.metrics.SagaStepDuration.WithLabelValues(step.ID()).Observe(time.Duration(result.Duration).Seconds())
		}

		if !result.Success {
			o.logger.Error("step failed, rolling back",
				zap.String("step_id", step.ID()),
				zap.String("error", result.ErrorMessage))
			o.setStatus(StatusFailed)
			o.rollback(ctx, run)
			return false, nil
		}

		o.mu.Lock()
		o.completed = append(o.completed, step)
		o.mu.Unlock()

		o.logger.Info("step completed",
			zap.String("step_id", step.ID()),
			zap.Duration("duration", time.Duration(result.Duration)))
	}

	run.ReportProgress(100, "bootstrap complete")
	o.setStatus(StatusCompleted)
	if o.metrics != nil {
		o.metrics.SagaRuns.WithLabelValues(string(StatusCompleted)).Inc()
	}

	total := time.Since(start)
	o.publish(types.EventSagaCompleted, types.SagaCompleted{
		SagaID:         o.sagaID,
		TotalSteps:     len(steps),
		TotalDuration:  types.Millis(total),
		SharedDataKeys: run.Keys(),
	})
	o.logger.Info("saga completed", zap.Duration("duration", total))
	return true, nil
}

// runStep executes one step, converting panics into failed results so an
// uncaught panic is handled exactly like an error return.
func (o *Orchestrator) runStep(ctx context.Context, step Step, run *Context) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = Fail(step.ID(), fmt.Errorf("step panic: %v", r))
			result.Duration = types.Millis(time.Since(start))
		}
	}()

	result = step.Execute(ctx, run)
	result.Duration = types.Millis(time.Since(start))
	return result
}

// rollback compensates completed steps in reverse order. An individual
// compensation failure is logged and the sweep continues; it is never
// aborted early. If any compensation failed the run ends as
// CompensationFailed, otherwise Compensated.
func (o *Orchestrator) rollback(ctx context.Context, run *Context) {
	o.setStatus(StatusCompensating)

	o.mu.Lock()
	completed := make([]Step, len(o.completed))
	copy(completed, o.completed)
	o.mu.Unlock()

	o.logger.Info("compensating completed steps", zap.Int("count", len(completed)))

	compensated := 0
	failed := 0
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		result := o.compensateStep(ctx, step, run)
		if result.Success {
			compensated++
			if o.metrics != nil {
				o.metrics.SagaCompensations.Inc()
			}
		} else {
			failed++
			o.logger.Error("compensation failed, continuing sweep",
				zap.String("step_id", step.ID()),
				zap.String("error", result.ErrorMessage))
		}
	}

	final := StatusCompensated
	if failed > 0 {
		final = StatusCompensationFailed
	}
	o.setStatus(final)
	if o.metrics != nil {
		o.metrics.SagaRuns.WithLabelValues(string(final)).Inc()
	}

	o.publish(types.EventSagaCompensated, types.SagaCompensated{
		SagaID:           o.sagaID,
		CompensatedSteps: compensated,
	})
	o.logger.Info("rollback finished",
		zap.Int("compensated", compensated),
		zap.Int("failed", failed))
}

func (o *Orchestrator) compensateStep(ctx context.Context, step Step, run *Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Fail(step.ID(), fmt.Errorf("compensation panic: %v", r))
		}
	}()

	return step.Compensate(ctx, run)
}

func (o *Orchestrator) setStatus(s Status) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}

func (o *Orchestrator) publishStepCompleted(result Result) {
	o.publish(types.EventStepCompleted, types.StepCompleted{
		StepID:   result.StepID,
		Duration: result.Duration,
		Success:  result.Success,
	})
}

func (o *Orchestrator) publish(eventType types.EventType, payload interface{}) {
	if o.publisher == nil {
		return
	}
	o.publisher.Publish(types.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
