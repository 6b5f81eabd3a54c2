package task_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/task"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
)

func scenarioConfig(seed uint64) config.Config {
	return config.Config{
		Control: config.Control{Step: config.ControlStep{Total: 10}, Seed: seed},
		Grid:    config.Grid{Width: 6, Height: 6, NonTransitablePercent: 10},
		Vehicle: config.Vehicle{Percent: 10, MaxParkingWaitSteps: 2},
	}
}

// 单行全部向东，没有路口也就没有信号灯
func corridorConfig(total int32) config.Config {
	return config.Config{
		Control: config.Control{Step: config.ControlStep{Total: total}},
		Grid:    config.Grid{Width: 4, Height: 1, Matrix: [][]int{{0, 0, 0, 0}}},
		Vehicle: config.Vehicle{Percent: 75, MaxParkingWaitSteps: 2},
	}
}

type recorder struct {
	records []task.Record
	flushed int
	err     error
}

func (r *recorder) Observe(rec task.Record) {
	r.records = append(r.records, rec)
}

func (r *recorder) Flush(context.Context) error {
	r.flushed++
	return r.err
}

func TestDeterministicScenario(t *testing.T) {
	run := func() (*task.Context, []task.Record) {
		ctx, err := task.NewContext("test", scenarioConfig(42))
		require.NoError(t, err)
		require.NoError(t, ctx.Run(context.Background()))
		return ctx, ctx.History()
	}
	a, ha := run()
	b, hb := run()
	require.Len(t, ha, 10)
	assert.Equal(t, ha, hb)
	assert.Equal(t, a.Sample(), b.Sample())
	assert.Equal(t, a.Render(), b.Render())
	for i, r := range ha {
		assert.Equal(t, int32(i), r.Step)
		assert.Equal(t, r.WaitForVehicles+r.WaitForLights, r.TotalWait)
	}
}

func TestCorridorRun(t *testing.T) {
	ctx, err := task.NewContext("corridor", corridorConfig(6))
	require.NoError(t, err)
	rec := &recorder{}
	ctx.AddObserver(rec)
	require.NoError(t, ctx.Run(context.Background()))

	assert.Empty(t, ctx.JunctionManager().Lights())
	waits, ok := ctx.Series(task.SeriesWaitForVehicles)
	require.True(t, ok)
	assert.Equal(t, []int64{0, 0, 0, 0, 0, 2}, waits)
	total, _ := ctx.Series(task.SeriesTotalWait)
	assert.Equal(t, waits, total)
	lights, _ := ctx.Series(task.SeriesWaitForLights)
	assert.Equal(t, make([]int64, 6), lights)

	active := lo.Map(ctx.History(), func(r task.Record, _ int) int { return r.Active })
	assert.Equal(t, []int{0, 1, 2, 3, 3, 3}, active)
	pending := lo.Map(ctx.History(), func(r task.Record, _ int) int { return r.Pending })
	assert.Equal(t, []int{3, 2, 1, 0, 0, 0}, pending)

	final := ctx.Sample()
	assert.Equal(t, int32(6), final.Step)
	assert.Equal(t, int64(4), final.WaitForVehicles)
	assert.Equal(t, ">111\n", ctx.Render())

	// 结束时的统计作为最后一条记录
	require.Len(t, rec.records, 7)
	assert.Equal(t, ctx.History(), rec.records[:6])
	assert.Equal(t, final, rec.records[6])
	assert.Equal(t, 1, rec.flushed)
}

func TestSampleIsIdempotent(t *testing.T) {
	ctx, err := task.NewContext("test", scenarioConfig(1))
	require.NoError(t, err)
	for range 5 {
		ctx.Step()
		assert.Equal(t, ctx.Sample(), ctx.Sample())
	}
}

func TestStepPastEndIsNoop(t *testing.T) {
	ctx, err := task.NewContext("test", corridorConfig(3))
	require.NoError(t, err)
	for range 3 {
		assert.True(t, ctx.Step())
	}
	before := ctx.Sample()
	render := ctx.Render()
	for range 3 {
		assert.False(t, ctx.Step())
	}
	assert.Len(t, ctx.History(), 3)
	assert.Equal(t, before, ctx.Sample())
	assert.Equal(t, render, ctx.Render())
	assert.True(t, ctx.Clock().Done())
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, err := task.NewContext("test", corridorConfig(6))
	require.NoError(t, err)
	rec := &recorder{}
	ctx.AddObserver(rec)
	c, cancel := context.WithCancel(context.Background())
	cancel()
	err = ctx.Run(c)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ctx.History(), 1)
	require.Len(t, rec.records, 2)
	assert.Equal(t, ctx.Sample(), rec.records[1])
	assert.Equal(t, int32(1), rec.records[1].Step)
	assert.Equal(t, 1, rec.flushed)
}

func TestRunReportsFlushError(t *testing.T) {
	ctx, err := task.NewContext("test", corridorConfig(2))
	require.NoError(t, err)
	boom := errors.New("boom")
	ctx.AddObserver(&recorder{err: boom})
	ctx.AddObserver(&recorder{})
	assert.ErrorIs(t, ctx.Run(context.Background()), boom)
	assert.Len(t, ctx.History(), 2)
}

func TestUnknownSeries(t *testing.T) {
	ctx, err := task.NewContext("test", corridorConfig(2))
	require.NoError(t, err)
	_, ok := ctx.Series("nope")
	assert.False(t, ok)
	for _, name := range task.SeriesNames {
		s, ok := ctx.Series(name)
		assert.True(t, ok)
		assert.Empty(t, s)
	}
}

func TestInvalidConfig(t *testing.T) {
	c := scenarioConfig(1)
	c.Grid.Width = 0
	_, err := task.NewContext("test", c)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	c = corridorConfig(2)
	c.Grid.Matrix = [][]int{{1, 0, 0, 0}}
	_, err = task.NewContext("test", c)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	c = scenarioConfig(1)
	c.Vehicle.Percent = 120
	_, err = task.RunBatch(context.Background(), "batch", c, []uint64{1}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestProjection(t *testing.T) {
	c := scenarioConfig(3)
	c.Control.Scenario.ReactiveLights = true
	c.TrafficLight = &config.TrafficLight{SamplePercent: 100, MinDuration: 1, MaxDuration: 1}
	ctx, err := task.NewContext("test", c)
	require.NoError(t, err)
	for range 4 {
		ctx.Step()
	}
	view := ctx.Projection()
	require.Len(t, view, 6)
	lights, vehicles := 0, 0
	for i, row := range view {
		require.Len(t, row, 6)
		for col, v := range row {
			assert.Equal(t, 5-i, v.Pos.Row)
			assert.Equal(t, col, v.Pos.Col)
			assert.Equal(t, v.Transitable, v.Direction.Valid())
			if v.HasLight {
				lights++
				l, ok := ctx.JunctionManager().LightAt(v.Pos)
				require.True(t, ok)
				assert.Equal(t, l.IsGreen(), v.Green)
			}
			vehicles += v.Vehicles
		}
	}
	assert.Len(t, ctx.JunctionManager().Lights(), lights)
	assert.Equal(t, ctx.Sample().Active, vehicles)
	// 起点始终向东
	assert.Equal(t, ctx.Topology().Start(), view[5][0].Pos)
	assert.True(t, view[5][0].Transitable)
}

func TestRunBatch(t *testing.T) {
	results, err := task.RunBatch(context.Background(), "batch", scenarioConfig(0), []uint64{1, 2, 1}, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, int32(10), r.Final.Step)
	}
	assert.Equal(t, uint64(1), results[0].Seed)
	assert.Equal(t, "batch-1", results[0].Job)
	assert.Equal(t, uint64(2), results[1].Seed)
	assert.Equal(t, results[0].Final, results[2].Final)

	single, err := task.NewContext("single", scenarioConfig(2))
	require.NoError(t, err)
	require.NoError(t, single.Run(context.Background()))
	assert.Equal(t, single.Sample(), results[1].Final)
}

func TestRunBatchObservers(t *testing.T) {
	var mu sync.Mutex
	recorders := map[string]*recorder{}
	factory := func(seed uint64, job string) []task.Observer {
		mu.Lock()
		defer mu.Unlock()
		r := &recorder{}
		recorders[job] = r
		return []task.Observer{r}
	}
	results, err := task.RunBatch(context.Background(), "batch", corridorConfig(4), []uint64{3, 4}, factory)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, recorders, 2)
	for _, r := range results {
		rec, ok := recorders[task.BatchJob("batch", r.Seed)]
		require.True(t, ok)
		assert.Equal(t, 1, rec.flushed)
		require.Len(t, rec.records, 5)
		assert.Equal(t, r.Final, rec.records[4])
	}
}

func TestRunBatchStopsOnCancel(t *testing.T) {
	c, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := scenarioConfig(0)
	cfg.Control.Step.Total = 1000
	results, err := task.RunBatch(c, "batch", cfg, []uint64{1, 2, 3}, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Less(t, r.Final.Step, int32(1000))
	}
}
