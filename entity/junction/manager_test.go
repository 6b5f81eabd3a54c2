package junction_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/entitytest"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/junction"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
)

// 路口（按放置顺序）：(1,0) (0,1) (2,1) (3,1) (2,2) (3,2)
var sample = [][]int{
	{1, 3, 0, 1},
	{1, -1, 3, 2},
	{0, 0, 3, -1},
}

func newManager(t *testing.T, light *config.TrafficLight, scenario config.Scenario) (*junction.JunctionManager, *entitytest.Context) {
	t.Helper()
	c := entitytest.Base()
	c.TrafficLight = light
	c.Control.Scenario = scenario
	ctx, err := entitytest.New(sample, c, 3)
	require.NoError(t, err)
	m := junction.NewManager(ctx)
	ctx.Junctions = m
	m.Init()
	return m, ctx
}

func TestInitPlacesOnIntersections(t *testing.T) {
	m, ctx := newManager(t, &config.TrafficLight{SamplePercent: 100, MinDuration: 2, MaxDuration: 6}, config.Scenario{})
	ids := lo.Map(m.Lights(), func(l entity.ITrafficLight, _ int) int32 { return l.ID() })
	assert.Equal(t, []int32{9, 4, 6, 7, 2, 3}, ids)

	for _, l := range m.Lights() {
		ok, _ := ctx.Topo.IsIntersection(l.Pos())
		assert.True(t, ok)
		assert.True(t, l.IsGreen())
	}
	for _, l := range m.TrafficLights() {
		fixed, ok := l.(interface {
			GreenDuration() int32
			RedDuration() int32
		})
		require.True(t, ok)
		assert.GreaterOrEqual(t, fixed.GreenDuration(), int32(2))
		assert.LessOrEqual(t, fixed.GreenDuration(), int32(6))
		assert.GreaterOrEqual(t, fixed.RedDuration(), int32(2))
		assert.LessOrEqual(t, fixed.RedDuration(), int32(6))
	}

	l, ok := m.LightAt(entity.Pos{Col: 1, Row: 0})
	require.True(t, ok)
	assert.Equal(t, int32(9), l.ID())
	_, ok = m.LightAt(entity.Pos{Col: 0, Row: 0})
	assert.False(t, ok)
}

func TestInitSampling(t *testing.T) {
	m, _ := newManager(t, &config.TrafficLight{SamplePercent: 0, MinDuration: 1, MaxDuration: 1}, config.Scenario{})
	assert.Empty(t, m.Lights())

	// 默认配置下放置一部分路口
	m, _ = newManager(t, nil, config.Scenario{})
	assert.LessOrEqual(t, len(m.Lights()), 6)
}

func TestInitReactive(t *testing.T) {
	m, _ := newManager(t, &config.TrafficLight{SamplePercent: 100, MinDuration: 1, MaxDuration: 1}, config.Scenario{ReactiveLights: true})
	require.Len(t, m.TrafficLights(), 6)
	for _, l := range m.TrafficLights() {
		_, ok := l.(interface{ Sides() []entity.Pos })
		assert.True(t, ok)
	}
}

func TestGet(t *testing.T) {
	m, _ := newManager(t, &config.TrafficLight{SamplePercent: 100, MinDuration: 1, MaxDuration: 1}, config.Scenario{})
	assert.Equal(t, int32(7), m.Get(7).ID())
	_, err := m.GetOrError(0)
	assert.Error(t, err)
	assert.Panics(t, func() { m.Get(0) })
}

func TestUpdateStepsEveryLight(t *testing.T) {
	m, _ := newManager(t, &config.TrafficLight{SamplePercent: 100, MinDuration: 1, MaxDuration: 1}, config.Scenario{})
	// 时长为1：每步切换一次
	m.Update()
	for _, l := range m.Lights() {
		assert.False(t, l.IsGreen())
	}
	m.Update()
	for _, l := range m.Lights() {
		assert.True(t, l.IsGreen())
	}
}
