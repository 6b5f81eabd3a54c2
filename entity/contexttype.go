package entity

import (
	"github.com/tsinghua-fib-lab/gridtraffic-sim/clock"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/randengine"
)

type ITaskContext interface {
	Clock() *clock.Clock
	Topology() ITopology
	Space() ISpace
	JunctionManager() IJunctionManager
	VehicleManager() IVehicleManager
	RuntimeConfig() *config.RuntimeConfig
	Generator() *randengine.Engine // 本次模拟唯一的随机数来源
}
