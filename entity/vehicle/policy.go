package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
)

// LegalCandidates 计算位于pos的车辆下一步可以尝试进入的格子
// 功能：按方向限制过滤四邻域，结果保持邻域枚举顺序
// 参数：topo-路网，pos-车辆所在格子
// 返回：合法候选格子，pos不可通行时为空
// 算法说明：邻格N合法当且仅当同时满足
// 1. N不是车辆正后方的格子
// 2. N的前方格不是pos（不会驶入一个立即指回来的格子）
// 3. N的方向与当前方向既不相同也不相反；例外是N恰为pos的前方格，允许直行
// 4. N在边界内（由Neighbors保证）
// 不可通行的N满足条件3，作为候选时会触发停车
func LegalCandidates(topo entity.ITopology, pos entity.Pos) []entity.Pos {
	dir := topo.Direction(pos)
	if !dir.Valid() {
		return nil
	}
	behind := pos.Step(dir.Opposite())
	forward := pos.Step(dir)
	return lo.Filter(topo.Neighbors(pos), func(n entity.Pos, _ int) bool {
		if n == behind {
			return false
		}
		if f, ok := topo.Forward(n); ok && f == pos {
			return false
		}
		nd := topo.Direction(n)
		if n != forward && (nd == dir || nd == dir.Opposite()) {
			return false
		}
		return true
	})
}
