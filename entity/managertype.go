package entity

// Manager依赖倒置

// entity/junction/manager.go的依赖倒置
type IJunctionManager interface {
	Init() // 在路口格子上放置信号灯

	// 输入信号灯ID，查找信号灯，如果不存在则panic
	Get(id int32) ITrafficLight
	// 输入信号灯ID，查找信号灯，如果不存在则返回error
	GetOrError(id int32) (ITrafficLight, error)
	// 查找位于p的信号灯
	LightAt(p Pos) (ITrafficLight, bool)
	Lights() []ITrafficLight

	Update() // 更新阶段
}

// 车辆等待统计
type WaitStats struct {
	WaitForVehicles int64 // 因前方有车等待的总步数
	WaitForLights   int64 // 因红灯等待的总步数
	Reroutes        int64 // 改道次数
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	Init() // 预分配所有车辆到待进入队列

	// 输入车辆ID，查找车辆，如果不存在则panic
	Get(id int32) IVehicle
	// 输入车辆ID，查找车辆，如果不存在则返回error
	GetOrError(id int32) (IVehicle, error)

	Active() []IVehicle // 已进入路网的车辆（调度顺序）
	Pending() int       // 尚未进入路网的车辆数
	InjectNext() bool   // 将下一辆车放到起点，队列为空时返回false
	Stats() WaitStats   // 统计已进入路网车辆的等待情况

	Prepare() // 准备阶段，新放入的车辆加入调度
	Update()  // 更新阶段
}
