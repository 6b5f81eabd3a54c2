package task

import (
	"context"
	"errors"
	"flag"

	"github.com/sirupsen/logrus"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// Step 推进一步
// 功能：执行一个完整的仿真步
// 返回：已到达结束步时不做任何修改并返回false
// 算法说明：
// 1. 采样统计数据（推进之前），记入历史并通知订阅者
// 2. 按放置顺序更新所有信号灯
// 3. 按进入路网的顺序更新所有车辆
// 4. 待进入队列非空时在起点放入一辆车
// 5. 准备阶段：新车加入调度，从下一步开始参与更新
// 6. 时钟+1，定期输出心跳日志
func (ctx *Context) Step() bool {
	if ctx.clock.Done() {
		return false
	}
	r := ctx.Sample()
	ctx.history = append(ctx.history, r)
	for _, o := range ctx.observers {
		o.Observe(r)
	}

	ctx.junctionManager.Update()
	ctx.vehicleManager.Update()
	ctx.vehicleManager.InjectNext()
	ctx.vehicleManager.Prepare()
	ctx.clock.Tick()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		log.Infof("STEP: %v, active %d, pending %d, total wait %d",
			ctx.clock, r.Active, r.Pending, r.TotalWait)
	}
	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		log.Debugf("step %v\n%s", ctx.clock, ctx.Render())
	}
	return true
}

// Run 运行至结束步，然后将所有订阅者的缓存写出
// 功能：c被取消时提前停止；结束时的统计作为最后一条记录发给订阅者，随后写出
// 返回：取消原因与订阅者写出时的错误
func (ctx *Context) Run(c context.Context) error {
	var errs []error
	for ctx.Step() {
		if err := c.Err(); err != nil {
			log.Warnf("job %s stopped at step %v: %v", ctx.job, ctx.clock, err)
			errs = append(errs, err)
			break
		}
	}
	final := ctx.Sample()
	log.Infof("job %s complete at step %v: wait for vehicles %d, wait for lights %d, reroutes %d",
		ctx.job, ctx.clock, final.WaitForVehicles, final.WaitForLights, final.Reroutes)
	for _, o := range ctx.observers {
		o.Observe(final)
		if err := o.Flush(context.WithoutCancel(c)); err != nil {
			log.Errorf("flush observer failed: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
