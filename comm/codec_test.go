package comm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/comm"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

func TestCodecMeasurement(t *testing.T) {
	frame, err := comm.Encode(comm.Measurement{ApproachID: 1, Count: 5, Presence: true, Timestamp: 12.5})
	require.NoError(t, err)
	assert.Equal(t, comm.TypeMeasurement, frame.TypeID)

	msg, err := frame.Decode()
	require.NoError(t, err)
	m, ok := msg.(comm.Measurement)
	require.True(t, ok)
	assert.Equal(t, int32(1), m.ApproachID)
	assert.Equal(t, int32(5), m.Count)
	assert.True(t, m.Presence)
	assert.Equal(t, 12.5, m.Timestamp)
}

func TestCodecPhaseCommand(t *testing.T) {
	frame, err := comm.Encode(comm.PhaseCommand{
		ApproachID: 2,
		Color:      entity.LightStateGreen,
		DurationMs: 17500,
		CycleEpoch: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, comm.TypePhaseCommand, frame.TypeID)

	msg, err := frame.Decode()
	require.NoError(t, err)
	c, ok := msg.(comm.PhaseCommand)
	require.True(t, ok)
	assert.Equal(t, entity.LightStateGreen, c.Color)
	assert.Equal(t, int64(42), c.CycleEpoch)
	assert.Equal(t, 17.5, c.Duration())
}

func TestCodecHeartbeat(t *testing.T) {
	frame, err := comm.Encode(&comm.Heartbeat{ApproachID: 0, Timestamp: 3})
	require.NoError(t, err)
	assert.Equal(t, comm.TypeHeartbeat, frame.TypeID)

	msg, err := frame.Decode()
	require.NoError(t, err)
	_, ok := msg.(comm.Heartbeat)
	assert.True(t, ok)
}

func TestCodecUnknownType(t *testing.T) {
	_, err := comm.Encode("not a message")
	assert.Error(t, err)

	frame := &comm.Frame{TypeID: "Telemetry", JSON: []byte(`{}`)}
	_, err = frame.Decode()
	assert.Error(t, err)
}
