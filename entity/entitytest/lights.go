package entitytest

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/entity"
)

// Light 状态由测试直接设置的信号灯
type Light struct {
	Id    int32
	At    entity.Pos
	Green bool
}

func (l *Light) ID() int32       { return l.Id }
func (l *Light) Pos() entity.Pos { return l.At }
func (l *Light) IsGreen() bool   { return l.Green }

// StaticLights 不随时间变化的信号灯集合，实现entity.IJunctionManager
type StaticLights struct {
	lights []*Light
}

func NewStaticLights(lights ...*Light) *StaticLights {
	return &StaticLights{lights: lights}
}

// Add 增加一盏信号灯
func (s *StaticLights) Add(l *Light) {
	s.lights = append(s.lights, l)
}

func (s *StaticLights) Init() {}

func (s *StaticLights) Update() {}

func (s *StaticLights) Get(id int32) entity.ITrafficLight {
	l, err := s.GetOrError(id)
	if err != nil {
		panic(err)
	}
	return l
}

func (s *StaticLights) GetOrError(id int32) (entity.ITrafficLight, error) {
	l, ok := lo.Find(s.lights, func(l *Light) bool { return l.Id == id })
	if !ok {
		return nil, fmt.Errorf("no id %d in traffic light data", id)
	}
	return l, nil
}

func (s *StaticLights) LightAt(p entity.Pos) (entity.ITrafficLight, bool) {
	l, ok := lo.Find(s.lights, func(l *Light) bool { return l.At == p })
	return l, ok
}

func (s *StaticLights) Lights() []entity.ITrafficLight {
	return lo.Map(s.lights, func(l *Light, _ int) entity.ITrafficLight { return l })
}
