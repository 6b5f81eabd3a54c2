package junction

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity/junction/trafficlight"
)

// JunctionManager 信号灯管理器
// 功能：在路口格子上放置信号灯，按放置顺序更新所有信号灯，提供按ID或位置的查询
type JunctionManager struct {
	ctx entity.ITaskContext

	data   map[int32]ITrafficLight
	byPos  map[entity.Pos]ITrafficLight
	lights []ITrafficLight // 放置顺序，也是更新顺序
}

// NewManager 创建信号灯管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的信号灯管理器实例
func NewManager(ctx entity.ITaskContext) *JunctionManager {
	return &JunctionManager{
		ctx:    ctx,
		data:   make(map[int32]ITrafficLight),
		byPos:  make(map[entity.Pos]ITrafficLight),
		lights: make([]ITrafficLight, 0),
	}
}

// Init 在路口格子上放置信号灯
// 功能：从最下方一行开始、每行从左到右遍历格子，对每个路口以sample_percent的概率放置信号灯
// 算法说明：
// 1. 信号灯ID为所在格子在方向矩阵中的按行索引
// 2. 响应式场景创建响应式信号灯，否则创建固定周期信号灯，红绿时长在[min_duration, max_duration]内均匀抽取
// 说明：所有随机数都来自任务上下文中唯一的随机数引擎
func (m *JunctionManager) Init() {
	topo := m.ctx.Topology()
	rc := m.ctx.RuntimeConfig()
	generator := m.ctx.Generator()
	p := rc.Light.SamplePercent / 100

	m.lights = make([]ITrafficLight, 0)
	intersections := 0
	for row := range topo.Height() {
		for col := range topo.Width() {
			pos := entity.Pos{Col: col, Row: row}
			if ok, _ := topo.IsIntersection(pos); !ok {
				continue
			}
			intersections++
			if !generator.PTrue(p) {
				continue
			}
			id := int32((topo.Height()-row-1)*topo.Width() + col)
			var tl ITrafficLight
			if rc.C.Scenario.ReactiveLights {
				tl = trafficlight.NewReactiveTrafficLight(id, pos, topo, m.ctx.Space())
			} else {
				green := generator.IntRange(rc.Light.MinDuration, rc.Light.MaxDuration)
				red := generator.IntRange(rc.Light.MinDuration, rc.Light.MaxDuration)
				tl = trafficlight.NewFixedTrafficLight(id, pos, green, red)
			}
			m.lights = append(m.lights, tl)
		}
	}
	m.data = lo.SliceToMap(m.lights, func(l ITrafficLight) (int32, ITrafficLight) {
		return l.ID(), l
	})
	m.byPos = lo.SliceToMap(m.lights, func(l ITrafficLight) (entity.Pos, ITrafficLight) {
		return l.Pos(), l
	})
	log.Infof("placed %d traffic lights on %d intersections", len(m.lights), intersections)
}

// Get 根据ID获取信号灯，如果不存在则panic
func (m *JunctionManager) Get(id int32) entity.ITrafficLight {
	if tl, ok := m.data[id]; !ok {
		log.Panicf("no id %d in traffic light data", id)
		return nil
	} else {
		return tl
	}
}

// GetOrError 根据ID获取信号灯，如果不存在则返回错误
func (m *JunctionManager) GetOrError(id int32) (entity.ITrafficLight, error) {
	if tl, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in traffic light data", id)
	} else {
		return tl, nil
	}
}

// LightAt 查找位于p的信号灯
func (m *JunctionManager) LightAt(p entity.Pos) (entity.ITrafficLight, bool) {
	tl, ok := m.byPos[p]
	return tl, ok
}

func (m *JunctionManager) Lights() []entity.ITrafficLight {
	return lo.Map(m.lights, func(l ITrafficLight, _ int) entity.ITrafficLight {
		return l
	})
}

// TrafficLights 带计时信息的信号灯列表（放置顺序）
func (m *JunctionManager) TrafficLights() []ITrafficLight {
	return m.lights
}

// Update 更新阶段，按放置顺序更新所有信号灯
func (m *JunctionManager) Update() {
	for _, tl := range m.lights {
		tl.Update()
	}
}
