package grid

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/randengine"
)

// 生成方向时相对前一个可通行格子的转向权重：直行、左转、右转
var turnWeights = []float64{0.8, 0.1, 0.1}

// 四邻域的枚举顺序，影响避让场景中候选格子的尝试顺序
var neighborOrder = []entity.Direction{entity.South, entity.West, entity.East, entity.North}

// Topology 路网方向矩阵
// 功能：保存每个格子的行驶方向，回答可通行性、方向、路口等查询
// 说明：矩阵按行存储，第0行为最上方一行；对外的entity.Pos第0行为最下方一行，
// 两者的换算只在本类型内部进行：storageRow = height - Row - 1
type Topology struct {
	width  int
	height int
	matrix [][]entity.Direction // [storageRow][col]

	transitable int // 可通行格子数
}

// Generate 随机生成方向矩阵
// 功能：生成近似道路结构的方向矩阵（长直路段+偶尔转弯）
// 参数：width,height-网格尺寸，nonTransitablePercent-不可通行格子百分比，generator-随机数引擎
// 返回：生成的方向矩阵
// 算法说明：
// 1. 从左上角开始按行遍历，左下角的起点固定为向东
// 2. 其他格子先以nonTransitablePercent/100的概率设为不可通行，总数不超过round(百分比*格子总数)
// 3. 否则相对于前一个可通行格子的方向：80%直行，10%左转，10%右转
func Generate(width, height int, nonTransitablePercent float64, generator *randengine.Engine) *Topology {
	t := newTopology(width, height)
	p := nonTransitablePercent / 100
	target := int(math.Round(p * float64(width*height)))
	placed := 0
	prev := entity.East
	for r := range height {
		for c := range width {
			if r == height-1 && c == 0 {
				t.matrix[r][c] = entity.East
				prev = entity.East
				continue
			}
			if placed < target && generator.PTrue(p) {
				t.matrix[r][c] = entity.NonTransitable
				placed++
				continue
			}
			d := prev
			switch generator.DiscreteDistribution(turnWeights) {
			case 1:
				d = prev.Left()
			case 2:
				d = prev.Right()
			}
			t.matrix[r][c] = d
			prev = d
		}
	}
	t.transitable = width*height - placed
	log.Debugf("generated %dx%d topology with %d non-transitable cells (target %d)", width, height, placed, target)
	return t
}

// NewTopologyFromMatrix 从固定矩阵构建方向矩阵
// 参数：matrix-按行存储的方向编码，第0行为最上方一行
// 返回：方向矩阵；矩阵非矩形、含非法编码或起点不是向东时返回错误
func NewTopologyFromMatrix(matrix [][]int) (*Topology, error) {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return nil, fmt.Errorf("empty direction matrix")
	}
	height, width := len(matrix), len(matrix[0])
	t := newTopology(width, height)
	for r, row := range matrix {
		if len(row) != width {
			return nil, fmt.Errorf("direction matrix row %d has %d columns, expected %d", r, len(row), width)
		}
		for c, v := range row {
			d := entity.Direction(v)
			if v < -1 || v > 3 {
				return nil, fmt.Errorf("invalid direction code %d at [%d][%d]", v, r, c)
			}
			t.matrix[r][c] = d
			if d.Valid() {
				t.transitable++
			}
		}
	}
	if t.matrix[height-1][0] != entity.East {
		return nil, fmt.Errorf("start cell must be east, got %v", t.matrix[height-1][0])
	}
	return t, nil
}

func newTopology(width, height int) *Topology {
	m := make([][]entity.Direction, height)
	for i := range m {
		m[i] = make([]entity.Direction, width)
	}
	return &Topology{width: width, height: height, matrix: m}
}

func (t *Topology) Width() int {
	return t.width
}

func (t *Topology) Height() int {
	return t.height
}

// Start 起点：左下角
func (t *Topology) Start() entity.Pos {
	return entity.Pos{Col: 0, Row: 0}
}

func (t *Topology) TransitableCount() int {
	return t.transitable
}

func (t *Topology) InBounds(p entity.Pos) bool {
	return p.Col >= 0 && p.Col < t.width && p.Row >= 0 && p.Row < t.height
}

// at 读取矩阵，越界视为不可通行
func (t *Topology) at(p entity.Pos) entity.Direction {
	if !t.InBounds(p) {
		return entity.NonTransitable
	}
	return t.matrix[t.height-p.Row-1][p.Col]
}

func (t *Topology) IsTransitable(p entity.Pos) bool {
	return t.at(p).Valid()
}

func (t *Topology) Direction(p entity.Pos) entity.Direction {
	return t.at(p)
}

// Forward 按p所在格子的方向前进一格，结果可能越界
func (t *Topology) Forward(p entity.Pos) (entity.Pos, bool) {
	d := t.at(p)
	if !d.Valid() {
		return p, false
	}
	return p.Step(d), true
}

// IsIntersection 判断p是否为路口
// 功能：p可通行、前方格在边界内且可通行、两者方向垂直时p为路口
// 返回：是否为路口，以及p前方的格子
func (t *Topology) IsIntersection(p entity.Pos) (bool, entity.Pos) {
	forward, ok := t.Forward(p)
	if !ok || !t.InBounds(forward) {
		return false, forward
	}
	return t.at(p).Perpendicular(t.at(forward)), forward
}

// Neighbors 上下左右四邻域中位于边界内的格子，顺序为南、西、东、北
func (t *Topology) Neighbors(p entity.Pos) []entity.Pos {
	res := make([]entity.Pos, 0, len(neighborOrder))
	for _, d := range neighborOrder {
		if n := p.Step(d); t.InBounds(n) {
			res = append(res, n)
		}
	}
	return res
}

// Matrix 按行存储的方向矩阵副本，第0行为最上方一行
func (t *Topology) Matrix() [][]int {
	res := make([][]int, t.height)
	for r, row := range t.matrix {
		res[r] = make([]int, t.width)
		for c, d := range row {
			res[r][c] = int(d)
		}
	}
	return res
}
