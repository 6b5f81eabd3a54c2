package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/clock"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
)

func TestClockTicksUntilEnd(t *testing.T) {
	c := clock.New(config.ControlStep{Total: 3})
	assert.False(t, c.Done())
	for i := range 3 {
		assert.Equal(t, int32(i), c.InternalStep)
		assert.True(t, c.Tick())
	}
	assert.True(t, c.Done())
	assert.False(t, c.Tick())
	assert.Equal(t, int32(3), c.InternalStep)
	assert.Equal(t, "3/3", c.String())

	c.Init()
	assert.Equal(t, int32(0), c.InternalStep)
}
