package task

import (
	"context"
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
)

// BatchResult 一次重复实验的结果
type BatchResult struct {
	Seed  uint64
	Job   string
	Final Record // 结束时的统计
	Err   error
}

// ObserverFactory 为一次重复实验创建订阅者，会被并发调用
type ObserverFactory func(seed uint64, job string) []Observer

// BatchJob 重复实验的任务名：<job>-<seed>
func BatchJob(job string, seed uint64) string {
	return fmt.Sprintf("%s-%d", job, seed)
}

// RunBatch 以不同随机种子并发运行多次相互独立的模拟
// 功能：除control.seed外使用相同配置，每次模拟拥有独立的上下文与随机数引擎
// 参数：c-上下文，取消后所有模拟提前停止；job-任务名前缀；cfg-配置对象；
// seeds-随机种子列表；observers-为每次模拟创建订阅者，可为nil
// 返回：与seeds一一对应的结果；配置非法时直接返回错误
func RunBatch(c context.Context, job string, cfg config.Config, seeds []uint64, observers ObserverFactory) ([]BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	results := parallel.GoMap(seeds, func(seed uint64) BatchResult {
		name := BatchJob(job, seed)
		rc := cfg
		rc.Control.Seed = seed
		ctx, err := NewContext(name, rc)
		if err != nil {
			return BatchResult{Seed: seed, Job: name, Err: err}
		}
		if observers != nil {
			for _, o := range observers(seed, name) {
				ctx.AddObserver(o)
			}
		}
		err = ctx.Run(c)
		return BatchResult{Seed: seed, Job: name, Final: ctx.Sample(), Err: err}
	})
	ok := lo.Filter(results, func(r BatchResult, _ int) bool { return r.Err == nil })
	if len(ok) > 0 {
		total := lo.SumBy(ok, func(r BatchResult) int64 { return r.Final.TotalWait })
		log.Infof("batch of %d runs complete, mean total wait %.2f", len(ok), float64(total)/float64(len(ok)))
	}
	return results, nil
}
