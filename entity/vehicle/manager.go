package vehicle

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/container"
)

// VehicleManager 车辆管理器
// 功能：预分配所有车辆，每步从起点放入一辆，按进入路网的先后顺序更新车辆
type VehicleManager struct {
	ctx entity.ITaskContext

	data map[int32]*Vehicle

	pending  []*Vehicle                            // 尚未进入路网的车辆，先进先出
	vehicles *container.IncrementalArray[*Vehicle] // 已进入路网的车辆，即调度顺序
}

// NewManager 创建车辆管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的车辆管理器实例
func NewManager(ctx entity.ITaskContext) *VehicleManager {
	return &VehicleManager{
		ctx:      ctx,
		data:     make(map[int32]*Vehicle),
		pending:  make([]*Vehicle, 0),
		vehicles: container.NewIncrementalArray[*Vehicle](),
	}
}

// Init 预分配所有车辆
// 功能：车辆数为可通行格子数的percent%（向下取整），全部放入待进入队列
// 说明：车辆ID从width*height开始分配，与信号灯ID（格子索引）不重叠
func (m *VehicleManager) Init() {
	topo := m.ctx.Topology()
	percent := m.ctx.RuntimeConfig().All.Vehicle.Percent
	count := int(percent / 100 * float64(topo.TransitableCount()))
	base := int32(topo.Width() * topo.Height())

	m.vehicles = container.NewIncrementalArray[*Vehicle]()
	m.pending = lo.Times(count, func(i int) *Vehicle {
		return newVehicle(m.ctx, base+int32(i))
	})
	m.data = lo.SliceToMap(m.pending, func(v *Vehicle) (int32, *Vehicle) {
		return v.id, v
	})
	log.Infof("allocated %d vehicles for %d transitable cells", count, topo.TransitableCount())
}

// Get 根据ID获取车辆，如果不存在则panic
func (m *VehicleManager) Get(id int32) entity.IVehicle {
	if v, ok := m.data[id]; !ok {
		log.Panicf("no id %d in vehicle data", id)
		return nil
	} else {
		return v
	}
}

// GetOrError 根据ID获取车辆，如果不存在则返回错误
func (m *VehicleManager) GetOrError(id int32) (entity.IVehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in vehicle data", id)
	} else {
		return v, nil
	}
}

// InjectNext 将待进入队列中的下一辆车放到起点
// 功能：起点已有车时依然放入（空间允许多占用），新车在Prepare之后才参与调度
// 返回：队列为空时返回false
func (m *VehicleManager) InjectNext() bool {
	if len(m.pending) == 0 {
		return false
	}
	v := m.pending[0]
	m.pending = m.pending[1:]
	v.pos = m.ctx.Topology().Start()
	m.ctx.Space().Place(v.pos)
	m.vehicles.Add(v)
	log.Debugf("vehicle %d enters at %v, %d pending, %d to schedule", v.id, v.pos, len(m.pending), m.vehicles.Pending())
	return true
}

// Prepare 准备阶段，将本步新放入的车辆追加到调度顺序末尾
func (m *VehicleManager) Prepare() {
	m.vehicles.Prepare()
}

func (m *VehicleManager) Active() []entity.IVehicle {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) entity.IVehicle {
		return v
	})
}

func (m *VehicleManager) Pending() int {
	return len(m.pending)
}

// Stats 统计已进入路网车辆的等待情况
func (m *VehicleManager) Stats() entity.WaitStats {
	var s entity.WaitStats
	for _, v := range m.vehicles.Data() {
		s.WaitForVehicles += v.waitingForCars
		s.WaitForLights += v.waitingForLights
		s.Reroutes += v.reroutes
	}
	return s
}

// Update 更新阶段，按调度顺序逐个更新车辆
// 说明：严格串行，后更新的车辆能看到先更新车辆本步的新位置
func (m *VehicleManager) Update() {
	for _, v := range m.vehicles.Data() {
		v.update()
	}
}
