package grid

import "github.com/tsinghua-fib-lab/gridtraffic-sim/entity"

// Space 多占用空间网格
// 功能：记录每个格子上的车辆数，同一格子可容纳多辆车（起点注入时可能重叠）
// 说明：车辆移动立即生效，同一步内后更新的车辆能看到先更新车辆的新位置
type Space struct {
	width    int
	height   int
	vehicles []int // 按Row*width+Col索引
}

func NewSpace(width, height int) *Space {
	return &Space{
		width:    width,
		height:   height,
		vehicles: make([]int, width*height),
	}
}

func (s *Space) index(p entity.Pos) int {
	if p.Col < 0 || p.Col >= s.width || p.Row < 0 || p.Row >= s.height {
		log.Panicf("position %v out of %dx%d space", p, s.width, s.height)
	}
	return p.Row*s.width + p.Col
}

func (s *Space) Place(p entity.Pos) {
	s.vehicles[s.index(p)]++
}

func (s *Space) Move(from, to entity.Pos) {
	i := s.index(from)
	if s.vehicles[i] == 0 {
		log.Panicf("no vehicle to move at %v", from)
	}
	s.vehicles[i]--
	s.vehicles[s.index(to)]++
}

func (s *Space) HasVehicle(p entity.Pos) bool {
	return s.VehicleCount(p) > 0
}

// VehicleCount 越界位置视为无车
func (s *Space) VehicleCount(p entity.Pos) int {
	if p.Col < 0 || p.Col >= s.width || p.Row < 0 || p.Row >= s.height {
		return 0
	}
	return s.vehicles[p.Row*s.width+p.Col]
}
