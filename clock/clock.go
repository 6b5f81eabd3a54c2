package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的步数推进与结束条件
// 说明：模拟区间为[START_STEP, END_STEP)，到达END_STEP后不再推进
type Clock struct {
	START_STEP int32 // 起始步
	END_STEP   int32 // 结束步

	InternalStep int32 // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		START_STEP: 0,
		END_STEP:   stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// Tick 推进一步，已结束时返回false且不做任何修改
func (c *Clock) Tick() bool {
	if c.Done() {
		return false
	}
	c.InternalStep++
	return true
}

func (c *Clock) String() string {
	return fmt.Sprintf("%d/%d", c.InternalStep, c.END_STEP)
}
