package saga

import (
	"context"

	"github.com/cobaltdesk/backend/internal/shared/types"
)

// Step is one unit of fallible bootstrap work paired with its undo action.
// Execute and Compensate receive the run's shared Context and must be safe to
// call from the orchestrator's single goroutine.
//
// Compensate must treat work that was never applied, or was already undone,
// as success: compensation is driven best-effort over a partially built run.
type Step interface {
	ID() string
	Name() string
	Execute(ctx context.Context, run *Context) Result
	Compensate(ctx context.Context, run *Context) Result
}

// Result is the immutable outcome of one step execution or compensation.
type Result struct {
	StepID           string                 `json:"step_id"`
	Success          bool                   `json:"success"`
	Payload          interface{}            `json:"payload,omitempty"`
	Err              error                  `json:"-"`
	ErrorMessage     string                 `json:"error,omitempty"`
	Duration         types.Millis           `json:"duration_ms"`
	CompensationData map[string]interface{} `json:"compensation_data,omitempty"`
}

// Succeed builds a successful result for a step
func Succeed(stepID string, payload interface{}) Result {
	return Result{StepID: stepID, Success: true, Payload: payload}
}

// Fail builds a failed result for a step
func Fail(stepID string, err error) Result {
	r := Result{StepID: stepID, Err: err}
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	return r
}
