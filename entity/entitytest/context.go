// 单元测试用的任务上下文与信号灯替身
package entitytest

import (
	"github.com/tsinghua-fib-lab/gridtraffic-sim/clock"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/grid"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/randengine"
)

// Context 可手动组装的entity.ITaskContext实现
type Context struct {
	Clk       *clock.Clock
	Topo      entity.ITopology
	Sp        *grid.Space
	Junctions entity.IJunctionManager
	Vehicles  entity.IVehicleManager
	Config    *config.RuntimeConfig
	Engine    *randengine.Engine
}

// New 以固定方向矩阵构建上下文，空间为空，信号灯为空的StaticLights
// 配置中的网格尺寸会被矩阵尺寸覆盖
func New(matrix [][]int, c config.Config, seed uint64) (*Context, error) {
	topo, err := grid.NewTopologyFromMatrix(matrix)
	if err != nil {
		return nil, err
	}
	c.Grid.Width, c.Grid.Height = topo.Width(), topo.Height()
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	return &Context{
		Clk:       clock.New(c.Control.Step),
		Topo:      topo,
		Sp:        grid.NewSpace(topo.Width(), topo.Height()),
		Junctions: NewStaticLights(),
		Config:    rc,
		Engine:    randengine.New(seed),
	}, nil
}

// Base 测试常用的合法配置
func Base() config.Config {
	return config.Config{
		Control: config.Control{Step: config.ControlStep{Total: 10}},
		Vehicle: config.Vehicle{Percent: 10, MaxParkingWaitSteps: 3},
	}
}

func (c *Context) Clock() *clock.Clock                      { return c.Clk }
func (c *Context) Topology() entity.ITopology               { return c.Topo }
func (c *Context) Space() entity.ISpace                     { return c.Sp }
func (c *Context) JunctionManager() entity.IJunctionManager { return c.Junctions }
func (c *Context) VehicleManager() entity.IVehicleManager   { return c.Vehicles }
func (c *Context) RuntimeConfig() *config.RuntimeConfig     { return c.Config }
func (c *Context) Generator() *randengine.Engine            { return c.Engine }
