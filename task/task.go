package task

import (
	"fmt"

	"github.com/tsinghua-fib-lab/gridtraffic-sim/clock"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/grid"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/junction"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：管理时钟、路网、空间、信号灯、车辆、随机数引擎与统计记录，
// 同一进程内的多个Context互不共享状态
type Context struct {
	// 任务名
	job string

	// 时钟
	clock *clock.Clock
	// 随机数引擎，本任务唯一的随机数来源
	generator *randengine.Engine

	// 方向矩阵
	topology *grid.Topology
	// 多占用空间网格
	space *grid.Space

	// Junction管理器
	junctionManager *junction.JunctionManager
	// Vehicle管理器
	vehicleManager *vehicle.VehicleManager

	// 运行时配置
	runtimeConfig *config.RuntimeConfig

	// 每步开始时的统计记录
	history []Record
	// 统计记录的订阅者
	observers []Observer
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置，构建路网与各管理器，并完成初始化
// 参数：job-任务名称，c-配置对象
// 返回：初始化完成的Context实例；配置非法时返回包装了config.ErrInvalidConfig的错误
// 算法说明：
// 1. 校验配置并补全默认值
// 2. 以control.seed创建随机数引擎
// 3. grid.matrix非空时加载固定矩阵，否则随机生成方向矩阵
// 4. 创建空间网格、信号灯管理器、车辆管理器
// 5. 依次初始化：时钟、信号灯、车辆
func NewContext(job string, c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		job:           job,
		clock:         clock.New(c.Control.Step),
		generator:     randengine.New(c.Control.Seed),
		runtimeConfig: rc,
		history:       make([]Record, 0, c.Control.Step.Total),
		observers:     make([]Observer, 0),
	}
	if c.Grid.Matrix != nil {
		if ctx.topology, err = grid.NewTopologyFromMatrix(c.Grid.Matrix); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
	} else {
		ctx.topology = grid.Generate(c.Grid.Width, c.Grid.Height, c.Grid.NonTransitablePercent, ctx.generator)
	}
	ctx.junctionManager = junction.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)
	ctx.Init()
	return ctx, nil
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Topology() entity.ITopology {
	return ctx.topology
}

func (ctx *Context) Space() entity.ISpace {
	return ctx.space
}

func (ctx *Context) JunctionManager() entity.IJunctionManager {
	return ctx.junctionManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Generator() *randengine.Engine {
	return ctx.generator
}

// Init 初始化
// 功能：清空空间与统计记录，放置信号灯，预分配车辆
// 说明：信号灯的放置依赖路网，车辆数依赖可通行格子数，因此顺序固定
func (ctx *Context) Init() {
	ctx.clock.Init()
	ctx.history = ctx.history[:0]
	ctx.space = grid.NewSpace(ctx.topology.Width(), ctx.topology.Height())

	log.Infof("job %s: grid %dx%d, transitable %d, scenario %+v",
		ctx.job, ctx.topology.Width(), ctx.topology.Height(), ctx.topology.TransitableCount(), ctx.runtimeConfig.C.Scenario)
	ctx.junctionManager.Init()
	ctx.vehicleManager.Init()
}

// AddObserver 订阅每步的统计记录
func (ctx *Context) AddObserver(o Observer) {
	ctx.observers = append(ctx.observers, o)
}
