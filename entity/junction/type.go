package junction

import "github.com/tsinghua-fib-lab/gridtraffic-sim/entity"

// 依赖倒置，表达junction对信号灯实现的接口需求

// 信号灯接口
type ITrafficLight interface {
	entity.ITrafficLight
	Update() // 更新阶段，更新信控结果

	GreenRemaining() int32 // 绿灯剩余步数
	RedRemaining() int32   // 红灯剩余步数
}
