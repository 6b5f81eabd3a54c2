package entity

import "fmt"

// Direction 格子行驶方向编码
type Direction int8

// 方向常量
const (
	NonTransitable Direction = -1 // 不可通行
	East           Direction = 0  // 向东（右）
	South          Direction = 1  // 向南（下）
	West           Direction = 2  // 向西（左）
	North          Direction = 3  // 向北（上）
)

// 全部可通行方向，按编码顺序
var Directions = []Direction{East, South, West, North}

// Valid 是否为可通行方向
func (d Direction) Valid() bool {
	return d >= East && d <= North
}

// Opposite 反方向，不可通行方向保持不变
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return d
	}
	return (d + 2) % 4
}

// Left 左转后的方向（编码-1 mod 4）
func (d Direction) Left() Direction {
	if !d.Valid() {
		return d
	}
	return (d + 3) % 4
}

// Right 右转后的方向（编码+1 mod 4）
func (d Direction) Right() Direction {
	if !d.Valid() {
		return d
	}
	return (d + 1) % 4
}

// Perpendicular 两个方向是否互相垂直（编码差的绝对值为1或3）
// 任一方为不可通行时返回false
func (d Direction) Perpendicular(o Direction) bool {
	if !d.Valid() || !o.Valid() {
		return false
	}
	diff := d - o
	if diff < 0 {
		diff = -diff
	}
	return diff == 1 || diff == 3
}

// Offset 空间坐标系下（第0行在最下方）的单位位移
func (d Direction) Offset() (dCol, dRow int) {
	switch d {
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	case North:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case North:
		return "north"
	}
	return "none"
}

// Pos 空间网格坐标，Row=0为最下方一行，Col=0为最左侧一列
type Pos struct {
	Col int
	Row int
}

// Step 沿方向移动一格后的位置（不检查边界）
func (p Pos) Step(d Direction) Pos {
	dc, dr := d.Offset()
	return Pos{Col: p.Col + dc, Row: p.Row + dr}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// grid/topology.go的依赖倒置
// 所有行号换算都在实现内部完成，调用方只使用空间坐标
type ITopology interface {
	Width() int
	Height() int
	Start() Pos // 车辆进入路网的起点

	InBounds(p Pos) bool
	IsTransitable(p Pos) bool         // 越界视为不可通行
	Direction(p Pos) Direction        // 越界或不可通行返回NonTransitable
	Forward(p Pos) (Pos, bool)        // 按所在格方向前进一格的位置，p不可通行时返回false
	IsIntersection(p Pos) (bool, Pos) // 前方格与本格方向垂直时为路口，同时返回前方格
	Neighbors(p Pos) []Pos            // 上下左右四邻域（仅边界内），顺序固定
	TransitableCount() int
}

// grid/space.go的依赖倒置：多占用空间网格
type ISpace interface {
	Place(p Pos)            // 在p放入一辆车
	Move(from, to Pos)      // 将一辆车从from移动到to
	HasVehicle(p Pos) bool  // p是否有车
	VehicleCount(p Pos) int // p上的车辆数
}

// 给交通参与者提供的信号灯读取接口
type ITrafficLight interface {
	ID() int32
	Pos() Pos
	IsGreen() bool
}

// vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32
	Pos() Pos
	Parking() bool
	ParkCounter() int32
	WaitingForCars() int64   // 因前方有车而等待的累计步数
	WaitingForLights() int64 // 因红灯而等待的累计步数
	Reroutes() int64         // 前方有车时改走其他方向的次数

	String() string
}
