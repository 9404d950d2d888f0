package types

import (
	"strconv"
	"time"
)

// Millis carries a duration on the wire as integer milliseconds.
// time.Duration marshals as raw nanoseconds, which is not what a
// field tagged *_ms should emit.
type Millis time.Duration

func (m Millis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Duration(m).Milliseconds(), 10), nil
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*m = Millis(time.Duration(v) * time.Millisecond)
	return nil
}

// EventType identifies a bootstrap lifecycle event
type EventType string

const (
	EventStepCompleted   EventType = "step_completed"
	EventSagaCompleted   EventType = "saga_completed"
	EventSagaCompensated EventType = "saga_compensated"
)

// StepCompleted is published after each bootstrap step resolves
type StepCompleted struct {
	StepID   string `json:"step_id"`
	Duration Millis `json:"duration_ms"`
	Success  bool   `json:"success"`
}

// SagaCompleted is published once when every step of a run succeeds
type SagaCompleted struct {
	SagaID         string   `json:"saga_id"`
	TotalSteps     int      `json:"total_steps"`
	TotalDuration  Millis   `json:"total_duration_ms"`
	SharedDataKeys []string `json:"shared_data_keys"`
}

// SagaCompensated is published after a rollback sweep finishes
type SagaCompensated struct {
	SagaID           string `json:"saga_id"`
	CompensatedSteps int    `json:"compensated_steps"`
}

// Event is the envelope delivered to event subscribers
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// WSMessage is the wire format for WebSocket clients
type WSMessage struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
