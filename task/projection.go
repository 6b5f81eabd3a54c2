package task

import (
	"strings"

	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
)

// CellView 格子的只读视图
type CellView struct {
	Pos         entity.Pos
	Direction   entity.Direction
	Transitable bool
	HasLight    bool
	Green       bool // 无信号灯时为false
	Vehicles    int
}

// Projection 全部格子的只读视图
// 返回：[行][列]，第0行为最上方一行，与配置中grid.matrix的排列一致
func (ctx *Context) Projection() [][]CellView {
	topo := ctx.topology
	res := make([][]CellView, topo.Height())
	for i := range res {
		row := topo.Height() - i - 1
		res[i] = make([]CellView, topo.Width())
		for col := range res[i] {
			p := entity.Pos{Col: col, Row: row}
			v := CellView{
				Pos:         p,
				Direction:   topo.Direction(p),
				Transitable: topo.IsTransitable(p),
				Vehicles:    ctx.space.VehicleCount(p),
			}
			if tl, ok := ctx.junctionManager.LightAt(p); ok {
				v.HasLight = true
				v.Green = tl.IsGreen()
			}
			res[i][col] = v
		}
	}
	return res
}

var arrows = map[entity.Direction]byte{
	entity.East:  '>',
	entity.South: 'v',
	entity.West:  '<',
	entity.North: '^',
}

// Symbol 单字符表示：车辆数优先，其次信号灯，最后方向
func (v CellView) Symbol() byte {
	switch {
	case !v.Transitable:
		return '#'
	case v.Vehicles > 9:
		return '+'
	case v.Vehicles > 0:
		return byte('0' + v.Vehicles)
	case v.HasLight && v.Green:
		return 'G'
	case v.HasLight:
		return 'R'
	}
	return arrows[v.Direction]
}

// Render 以字符画输出当前状态，每行一个网格行，最上方一行在前
func (ctx *Context) Render() string {
	var b strings.Builder
	for _, row := range ctx.Projection() {
		for _, v := range row {
			b.WriteByte(v.Symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
