package vehicle_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/entitytest"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/grid"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/junction"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/randengine"
)

// 4x3全部向东
var eastbound = [][]int{
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
}

func newManager(t *testing.T, matrix [][]int, c config.Config, seed uint64) (*entitytest.Context, *vehicle.VehicleManager) {
	t.Helper()
	ctx, err := entitytest.New(matrix, c, seed)
	require.NoError(t, err)
	m := vehicle.NewManager(ctx)
	ctx.Vehicles = m
	m.Init()
	return ctx, m
}

func TestInitAllocatesPending(t *testing.T) {
	c := entitytest.Base()
	c.Vehicle.Percent = 50
	_, m := newManager(t, eastbound, c, 1)
	assert.Equal(t, 6, m.Pending())
	assert.Empty(t, m.Active())

	c.Vehicle.Percent = 10
	_, m = newManager(t, eastbound, c, 1)
	// 1.2向下取整
	assert.Equal(t, 1, m.Pending())

	c.Vehicle.Percent = 0
	_, m = newManager(t, eastbound, c, 1)
	assert.Equal(t, 0, m.Pending())
	assert.False(t, m.InjectNext())
}

func TestInjectNext(t *testing.T) {
	c := entitytest.Base()
	c.Vehicle.Percent = 25
	ctx, m := newManager(t, eastbound, c, 1)
	require.Equal(t, 3, m.Pending())

	for i := range 3 {
		require.True(t, m.InjectNext())
		// 起点允许多辆车重叠
		assert.Equal(t, i+1, ctx.Sp.VehicleCount(ctx.Topo.Start()))
		assert.Equal(t, 2-i, m.Pending())
		assert.Len(t, m.Active(), i)
		m.Prepare()
		assert.Len(t, m.Active(), i+1)
	}
	assert.False(t, m.InjectNext())

	ids := lo.Map(m.Active(), func(v entity.IVehicle, _ int) int32 { return v.ID() })
	assert.Equal(t, []int32{12, 13, 14}, ids)
	for _, v := range m.Active() {
		assert.Equal(t, ctx.Topo.Start(), v.Pos())
		assert.Equal(t, c.Vehicle.MaxParkingWaitSteps, v.ParkCounter())
	}
}

func TestInjectedVehicleWaitsForPrepare(t *testing.T) {
	c := entitytest.Base()
	c.Vehicle.Percent = 50
	ctx, m := newManager(t, [][]int{{0, 0, 0, 0}}, c, 1)

	require.True(t, m.InjectNext())
	// 放入后、Prepare之前的更新不移动新车
	m.Update()
	assert.Equal(t, 1, ctx.Sp.VehicleCount(ctx.Topo.Start()))
	assert.Empty(t, m.Active())
	assert.Equal(t, entity.WaitStats{}, m.Stats())

	m.Prepare()
	m.Update()
	require.Len(t, m.Active(), 1)
	assert.Equal(t, entity.Pos{Col: 1}, m.Active()[0].Pos())
	assert.Equal(t, 0, ctx.Sp.VehicleCount(ctx.Topo.Start()))
}

func TestGet(t *testing.T) {
	_, m := newManager(t, eastbound, entitytest.Base(), 1)
	v, err := m.GetOrError(12)
	require.NoError(t, err)
	assert.Equal(t, int32(12), v.ID())
	assert.Equal(t, v, m.Get(12))

	_, err = m.GetOrError(0)
	assert.Error(t, err)
	assert.Panics(t, func() { m.Get(0) })
}

func TestUpdateMovesInScheduleOrder(t *testing.T) {
	c := entitytest.Base()
	c.Vehicle.Percent = 75
	ctx, m := newManager(t, [][]int{{0, 0, 0, 0}}, c, 1)

	// 单行向东：每辆车都只能直行，前车挡住后车
	m.InjectNext()
	m.Prepare()
	m.Update()
	m.InjectNext()
	m.Prepare()
	m.Update()
	active := m.Active()
	require.Len(t, active, 2)
	assert.Equal(t, entity.Pos{Col: 2}, active[0].Pos())
	assert.Equal(t, entity.Pos{Col: 1}, active[1].Pos())
	assert.Equal(t, entity.WaitStats{}, m.Stats())

	m.InjectNext()
	m.Prepare()
	m.Update()
	m.Update()
	// 第一辆车停在最右侧无候选，后面两辆依次被挡
	assert.Equal(t, entity.Pos{Col: 3}, active[0].Pos())
	stats := m.Stats()
	assert.Equal(t, int64(0), stats.WaitForLights)
	assert.Equal(t, 3, ctx.Sp.VehicleCount(entity.Pos{Col: 1})+ctx.Sp.VehicleCount(entity.Pos{Col: 2})+ctx.Sp.VehicleCount(entity.Pos{Col: 3}))
	assert.Equal(t, int64(2), stats.WaitForVehicles)
}

func TestNoReversalOnGeneratedGrid(t *testing.T) {
	for _, scenario := range []config.Scenario{{}, {Avoidance: true}, {ReactiveLights: true}, {Avoidance: true, ReactiveLights: true}} {
		matrix := grid.Generate(8, 8, 10, randengine.New(7)).Matrix()
		c := entitytest.Base()
		c.Control.Scenario = scenario
		c.Vehicle.Percent = 30
		ctx, err := entitytest.New(matrix, c, 11)
		require.NoError(t, err)
		junctions := junction.NewManager(ctx)
		ctx.Junctions = junctions
		m := vehicle.NewManager(ctx)
		ctx.Vehicles = m
		junctions.Init()
		m.Init()

		for range 60 {
			before := lo.Map(m.Active(), func(v entity.IVehicle, _ int) entity.Pos { return v.Pos() })
			junctions.Update()
			m.Update()
			for i, v := range m.Active()[:len(before)] {
				from, to := before[i], v.Pos()
				if from == to {
					continue
				}
				dir := ctx.Topo.Direction(from)
				assert.NotEqual(t, from.Step(dir.Opposite()), to, "vehicle %d reversed", v.ID())
				assert.True(t, ctx.Topo.IsTransitable(to))
				f, ok := ctx.Topo.Forward(to)
				assert.False(t, ok && f == from, "vehicle %d entered a cell pointing back", v.ID())
			}
			m.InjectNext()
			m.Prepare()

			// 空间中的车辆数与已进入路网的车辆一致
			total := 0
			for row := range ctx.Topo.Height() {
				for col := range ctx.Topo.Width() {
					total += ctx.Sp.VehicleCount(entity.Pos{Col: col, Row: row})
				}
			}
			assert.Equal(t, len(m.Active()), total)
		}
	}
}
