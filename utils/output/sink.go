// 模拟统计结果的输出目标：文件、MongoDB、MQTT
package output

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/task"
)

// Sink 输出目标
// 功能：每步接收一条统计记录，模拟结束后由Flush写出，最后Close释放连接
type Sink interface {
	task.Observer
	Close(c context.Context) error
}

// fields 统计记录的字段表，文件与数据库输出共用
func fields(job string, r task.Record) map[string]any {
	return map[string]any{
		"job":             job,
		"step":            r.Step,
		"waitForVehicles": r.WaitForVehicles,
		"waitForLights":   r.WaitForLights,
		"totalWait":       r.TotalWait,
		"active":          r.Active,
		"pending":         r.Pending,
		"reroutes":        r.Reroutes,
	}
}

// series 三个统计序列在本条记录中的值
func series(r task.Record) map[string]int64 {
	return lo.SliceToMap(task.SeriesNames, func(name string) (string, int64) {
		v, _ := r.Value(name)
		return name, v
	})
}

// CloseAll 依次关闭所有输出目标
func CloseAll(c context.Context, sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
