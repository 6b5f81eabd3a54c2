package trafficlight

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
)

// reactiveTrafficLight 根据局部占用即时切换的信号灯
// 功能：每步根据本格与垂直方向两侧格子的车辆占用重新计算红绿，不保留计时
type reactiveTrafficLight struct {
	id    int32
	pos   entity.Pos
	space entity.ISpace

	sides []entity.Pos // 与本格方向垂直的两侧格子（仅边界内）

	greenRemaining int32
	redRemaining   int32
}

// NewReactiveTrafficLight 创建响应式信号灯
// 功能：计算垂直方向两侧的格子，以绿灯状态启动
// 参数：id-信号灯ID，pos-所在格子，topo-路网，space-车辆占用
func NewReactiveTrafficLight(id int32, pos entity.Pos, topo entity.ITopology, space entity.ISpace) *reactiveTrafficLight {
	d := topo.Direction(pos)
	if !d.Valid() {
		log.Panicf("traffic light %d placed on non-transitable cell %v", id, pos)
	}
	sides := lo.Filter([]entity.Pos{pos.Step(d.Left()), pos.Step(d.Right())}, func(p entity.Pos, _ int) bool {
		return topo.InBounds(p)
	})
	return &reactiveTrafficLight{
		id:             id,
		pos:            pos,
		space:          space,
		sides:          sides,
		greenRemaining: 1,
	}
}

// Update 更新阶段，重新评估红绿
// 算法说明：本格有车且至少一侧有车时本步为红灯（red=1, green=0），否则为绿灯（green=1, red=0）
func (l *reactiveTrafficLight) Update() {
	crossing := lo.ContainsBy(l.sides, func(p entity.Pos) bool {
		return l.space.HasVehicle(p)
	})
	if l.space.HasVehicle(l.pos) && crossing {
		l.redRemaining, l.greenRemaining = 1, 0
	} else {
		l.redRemaining, l.greenRemaining = 0, 1
	}
}

func (l *reactiveTrafficLight) ID() int32 {
	return l.id
}

func (l *reactiveTrafficLight) Pos() entity.Pos {
	return l.pos
}

func (l *reactiveTrafficLight) IsGreen() bool {
	return l.redRemaining == 0
}

func (l *reactiveTrafficLight) GreenRemaining() int32 {
	return l.greenRemaining
}

func (l *reactiveTrafficLight) RedRemaining() int32 {
	return l.redRemaining
}

// Sides 垂直方向两侧的格子
func (l *reactiveTrafficLight) Sides() []entity.Pos {
	return l.sides
}
