package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/clock"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

func TestClockTick(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 0, Total: 100, Interval: 0.5})
	assert.Equal(t, int32(0), c.InternalStep)
	assert.Equal(t, 0.0, c.T)
	assert.False(t, c.Done())

	c.Tick()
	assert.Equal(t, int32(1), c.InternalStep)
	assert.Equal(t, 0.5, c.T)

	for !c.Done() {
		c.Tick()
	}
	assert.Equal(t, int32(100), c.InternalStep)
	assert.Equal(t, 50.0, c.T)
}

func TestClockInitResets(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 10, Total: 20, Interval: 1})
	assert.Equal(t, 10.0, c.T)
	c.Tick()
	c.Tick()
	c.Init()
	assert.Equal(t, int32(10), c.InternalStep)
	assert.Equal(t, 10.0, c.T)
}

func TestClockString(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 7384, Total: 100, Interval: 1})
	assert.Equal(t, "02:03:04", c.String())

	h, m, s := c.GetHourMinuteSecond()
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, m)
	assert.Equal(t, 4.0, s)
}
