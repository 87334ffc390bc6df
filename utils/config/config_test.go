package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

const sampleYAML = `
control:
  step:
    start: 0
    total: 7200
    interval: 0.5
  policy: queue
signal:
  min_green: 10
  max_green: 40
  yellow: 3
  all_red: 1
  fixed_green: [25, 25, 14]
  sensor_timeout: 5
  link_timeout: 3
approaches:
  - name: north
    flow: 360
  - name: east
    flow: 360
  - name: west
    flow: 200
comm:
  loss_rate: 0.02
  duplicate_rate: 0.01
  max_delay: 0.4
trials:
  seeds: [42, 123]
output:
  csv: results.csv
`

func TestParseYAML(t *testing.T) {
	var c config.Config
	require.NoError(t, yaml.Unmarshal([]byte(sampleYAML), &c))

	assert.Equal(t, int32(7200), c.Control.Step.Total)
	assert.Equal(t, "queue", c.Control.Policy)
	assert.Equal(t, []float64{25, 25, 14}, c.Signal.FixedGreen)
	assert.Len(t, c.Approaches, 3)
	assert.Equal(t, 360.0, c.Approaches[0].Flow)
	assert.Equal(t, 0.02, c.Comm.LossRate)
	assert.Equal(t, []uint64{42, 123}, c.Trials.Seeds)
	assert.Equal(t, "results.csv", c.Output.CSV)
}

func TestRuntimeConfigDefaults(t *testing.T) {
	c := config.Config{
		Approaches: []config.Approach{{Name: "north", Flow: 100}, {Name: "east", Flow: 100}},
	}
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)

	assert.Equal(t, 2, rc.N)
	assert.Equal(t, "fixed", rc.C.Policy)
	assert.Equal(t, 0.5, rc.C.Step.Interval)
	assert.Equal(t, 10.0, rc.S.MinGreen)
	assert.Equal(t, 40.0, rc.S.MaxGreen)
	assert.Equal(t, 3.0, rc.S.Yellow)
	assert.Equal(t, 1.0, rc.S.AllRed)
	assert.Equal(t, 5.0, rc.S.SensorTimeout)
	assert.Equal(t, 3.0, rc.S.LinkTimeout)
	// 决策周期默认跟随步长
	assert.Equal(t, rc.C.Step.Interval, rc.S.DecisionEpoch)
	// 固定配时默认取最小绿灯
	assert.Equal(t, []float64{10, 10}, rc.S.FixedGreen)
	// 进口道长度默认100米
	assert.Equal(t, 100.0, rc.All.Approaches[0].Len)
}

func TestRuntimeConfigValidation(t *testing.T) {
	_, err := config.NewRuntimeConfig(config.Config{})
	assert.Error(t, err)

	// 固定配时方案长度必须与进口道数量一致
	c := config.Config{
		Signal:     config.Signal{FixedGreen: []float64{25, 25}},
		Approaches: []config.Approach{{Name: "north"}, {Name: "east"}, {Name: "west"}},
	}
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = config.Config{
		Signal:     config.Signal{MinGreen: 50, MaxGreen: 40},
		Approaches: []config.Approach{{Name: "north"}},
	}
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)
}
