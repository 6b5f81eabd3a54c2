package vehicle

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
)

// Vehicle 车辆
// 功能：在方向网格上逐格移动，遵守信号灯，前方有车时等待或改道，遇到不可通行格子时停车
type Vehicle struct {
	ctx entity.ITaskContext

	id  int32
	pos entity.Pos

	parking     bool  // 是否处于停车状态
	parkCounter int32 // 停车剩余耐心，从max_parking_wait_steps倒数

	waitingForCars   int64
	waitingForLights int64
	reroutes         int64
}

func newVehicle(ctx entity.ITaskContext, id int32) *Vehicle {
	return &Vehicle{
		ctx:         ctx,
		id:          id,
		parkCounter: ctx.RuntimeConfig().All.Vehicle.MaxParkingWaitSteps,
	}
}

// update 更新阶段，每步执行一次
// 功能：决定本步移动、等待还是停车
// 算法说明：
// 1. 所在格子有红灯：红灯等待计数+1，本步不动
// 2. 计算合法候选格子，为空则原地不动
// 3. 均匀随机选择一个候选格子
// 4. 候选格子可通行且未在停车：无车则移入；有车时基础场景计入前车等待，
// 避让场景按枚举顺序尝试其余候选，全部失败才计入前车等待
// 5. 否则进入停车流程
func (v *Vehicle) update() {
	if tl, ok := v.ctx.JunctionManager().LightAt(v.pos); ok && !tl.IsGreen() {
		v.waitingForLights++
		return
	}
	topo := v.ctx.Topology()
	candidates := LegalCandidates(topo, v.pos)
	if len(candidates) == 0 {
		return
	}
	chosen := v.ctx.Generator().Intn(len(candidates))
	if topo.IsTransitable(candidates[chosen]) && !v.parking {
		v.moveOrWait(candidates, chosen)
		return
	}
	v.park()
}

func (v *Vehicle) moveOrWait(candidates []entity.Pos, chosen int) {
	topo, space := v.ctx.Topology(), v.ctx.Space()
	if target := candidates[chosen]; !space.HasVehicle(target) {
		v.moveTo(target)
		return
	}
	if v.ctx.RuntimeConfig().C.Scenario.Avoidance {
		// 在去掉已选格子的副本上按枚举顺序尝试
		rest := lo.Filter(candidates, func(_ entity.Pos, i int) bool { return i != chosen })
		if alt, ok := lo.Find(rest, func(p entity.Pos) bool {
			return topo.IsTransitable(p) && !space.HasVehicle(p)
		}); ok {
			v.moveTo(alt)
			v.reroutes++
			return
		}
	}
	v.waitingForCars++
}

// park 停车流程
// 功能：在原地停留至多max_parking_wait_steps步，耐心耗尽后的下一步重置计数并解除停车
func (v *Vehicle) park() {
	if v.parkCounter > 0 {
		v.parkCounter--
		v.parking = true
		return
	}
	v.parkCounter = v.ctx.RuntimeConfig().All.Vehicle.MaxParkingWaitSteps
	v.parking = false
}

func (v *Vehicle) moveTo(p entity.Pos) {
	v.ctx.Space().Move(v.pos, p)
	log.Tracef("vehicle %d: %v -> %v", v.id, v.pos, p)
	v.pos = p
}

func (v *Vehicle) ID() int32 {
	return v.id
}

func (v *Vehicle) Pos() entity.Pos {
	return v.pos
}

func (v *Vehicle) Parking() bool {
	return v.parking
}

func (v *Vehicle) ParkCounter() int32 {
	return v.parkCounter
}

func (v *Vehicle) WaitingForCars() int64 {
	return v.waitingForCars
}

func (v *Vehicle) WaitingForLights() int64 {
	return v.waitingForLights
}

func (v *Vehicle) Reroutes() int64 {
	return v.reroutes
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{id=%d, pos=%v, parking=%v, park_counter=%d, wait_cars=%d, wait_lights=%d}",
		v.id, v.pos, v.parking, v.parkCounter, v.waitingForCars, v.waitingForLights)
}
