package task

import (
	"context"

	"github.com/samber/lo"
)

// 统计序列名称
const (
	SeriesTotalWait       = "Total waiting time for vehicles"
	SeriesWaitForVehicles = "Waiting time for vehicles in front"
	SeriesWaitForLights   = "Waiting time for traffic lights"
)

// SeriesNames 全部统计序列名称
var SeriesNames = []string{SeriesTotalWait, SeriesWaitForVehicles, SeriesWaitForLights}

// Record 某一步开始时的统计记录
type Record struct {
	Step            int32 `json:"step" bson:"step"`
	WaitForVehicles int64 `json:"waitForVehicles" bson:"wait_for_vehicles"` // 所有已进入路网车辆的前车等待步数之和
	WaitForLights   int64 `json:"waitForLights" bson:"wait_for_lights"`     // 所有已进入路网车辆的红灯等待步数之和
	TotalWait       int64 `json:"totalWait" bson:"total_wait"`
	Active          int   `json:"active" bson:"active"`
	Pending         int   `json:"pending" bson:"pending"`
	Reroutes        int64 `json:"reroutes" bson:"reroutes"`
}

// Value 读取指定统计序列在本条记录中的值
func (r Record) Value(series string) (int64, bool) {
	switch series {
	case SeriesTotalWait:
		return r.TotalWait, true
	case SeriesWaitForVehicles:
		return r.WaitForVehicles, true
	case SeriesWaitForLights:
		return r.WaitForLights, true
	}
	return 0, false
}

// Observer 统计记录的订阅者
type Observer interface {
	// Observe 每步采样后调用
	Observe(r Record)
	// Flush 模拟结束后写出缓存
	Flush(c context.Context) error
}

// Sample 采样当前的统计数据，不修改任何状态
func (ctx *Context) Sample() Record {
	s := ctx.vehicleManager.Stats()
	return Record{
		Step:            ctx.clock.InternalStep,
		WaitForVehicles: s.WaitForVehicles,
		WaitForLights:   s.WaitForLights,
		TotalWait:       s.WaitForVehicles + s.WaitForLights,
		Active:          len(ctx.vehicleManager.Active()),
		Pending:         ctx.vehicleManager.Pending(),
		Reroutes:        s.Reroutes,
	}
}

// History 每步开始时的统计记录
func (ctx *Context) History() []Record {
	return ctx.history
}

// Series 按名称获取统计序列，名称未知时返回false
func (ctx *Context) Series(name string) ([]int64, bool) {
	if _, ok := (Record{}).Value(name); !ok {
		return nil, false
	}
	return lo.Map(ctx.history, func(r Record, _ int) int64 {
		v, _ := r.Value(name)
		return v
	}), true
}
