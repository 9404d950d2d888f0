package types

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillisMarshalsAsMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"one second", time.Second, "1000"},
		{"sub-millisecond truncates", 1500 * time.Microsecond, "1"},
		{"zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := sonic.Marshal(Millis(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestMillisRoundTrip(t *testing.T) {
	out, err := sonic.Marshal(Millis(250 * time.Millisecond))
	require.NoError(t, err)

	var m Millis
	require.NoError(t, sonic.Unmarshal(out, &m))
	assert.Equal(t, 250*time.Millisecond, time.Duration(m))
}

func TestStepCompletedWireFormat(t *testing.T) {
	out, err := sonic.Marshal(StepCompleted{
		StepID:   "panel:editor",
		Duration: Millis(time.Second),
		Success:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"duration_ms":1000,`)

	out, err = sonic.Marshal(SagaCompleted{
		SagaID:        "saga_01ABC",
		TotalSteps:    3,
		TotalDuration: Millis(2500 * time.Millisecond),
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"total_duration_ms":2500,`)
}
