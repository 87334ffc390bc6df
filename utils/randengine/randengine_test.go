package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/randengine"
)

func TestEngineReproducible(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestPTrue(t *testing.T) {
	e := randengine.New(1)
	assert.False(t, e.PTrue(0))
	assert.True(t, e.PTrue(1))

	hits := 0
	for i := 0; i < 10000; i++ {
		if e.PTrue(0.3) {
			hits++
		}
	}
	assert.InDelta(t, 3000, hits, 200)
}

func TestExpGap(t *testing.T) {
	e := randengine.New(1)
	// 速率为0时永不到达
	assert.Greater(t, e.ExpGap(0), 1e17)

	sum := 0.0
	for i := 0; i < 10000; i++ {
		gap := e.ExpGap(0.2)
		assert.Greater(t, gap, 0.0)
		sum += gap
	}
	// 均值约为1/rate=5秒
	assert.InDelta(t, 5.0, sum/10000, 0.3)
}

func TestUniformDelay(t *testing.T) {
	e := randengine.New(1)
	assert.Equal(t, 0.0, e.UniformDelay(0))
	for i := 0; i < 1000; i++ {
		d := e.UniformDelay(2)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.Less(t, d, 2.0)
	}
}
