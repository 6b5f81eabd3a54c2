package trafficlight

import "github.com/tsinghua-fib-lab/gridtraffic-sim/entity"

// fixedTrafficLight 固定周期信号灯
// 功能：红绿两相位计时器，每个相位的时长在创建时确定，之后每个周期都不变
type fixedTrafficLight struct {
	id  int32
	pos entity.Pos

	greenDuration int32 // 绿灯时长
	redDuration   int32 // 红灯时长

	greenRemaining int32
	redRemaining   int32
}

// NewFixedTrafficLight 创建固定周期信号灯
// 功能：以绿灯状态启动，绿灯剩余步数为greenDuration
// 参数：id-信号灯ID，pos-所在格子，greenDuration/redDuration-绿灯/红灯时长（正整数）
func NewFixedTrafficLight(id int32, pos entity.Pos, greenDuration, redDuration int32) *fixedTrafficLight {
	if greenDuration <= 0 || redDuration <= 0 {
		log.Panicf("traffic light %d: durations must be positive, got green=%d red=%d", id, greenDuration, redDuration)
	}
	return &fixedTrafficLight{
		id:             id,
		pos:            pos,
		greenDuration:  greenDuration,
		redDuration:    redDuration,
		greenRemaining: greenDuration,
	}
}

// Update 更新阶段，推进一步计时
// 算法说明：
// 1. 绿灯时绿灯剩余步数减1，减到0时进入红灯，红灯剩余步数置为redDuration
// 2. 红灯时对称处理
// 说明：任意时刻红绿剩余步数至多一个为正，稳态下绿灯恰好持续greenDuration步
func (l *fixedTrafficLight) Update() {
	if l.redRemaining == 0 {
		l.greenRemaining = max(0, l.greenRemaining-1)
		if l.greenRemaining == 0 {
			l.redRemaining = l.redDuration
		}
	} else {
		l.redRemaining = max(0, l.redRemaining-1)
		if l.redRemaining == 0 {
			l.greenRemaining = l.greenDuration
		}
	}
}

func (l *fixedTrafficLight) ID() int32 {
	return l.id
}

func (l *fixedTrafficLight) Pos() entity.Pos {
	return l.pos
}

func (l *fixedTrafficLight) IsGreen() bool {
	return l.redRemaining == 0
}

func (l *fixedTrafficLight) GreenRemaining() int32 {
	return l.greenRemaining
}

func (l *fixedTrafficLight) RedRemaining() int32 {
	return l.redRemaining
}

func (l *fixedTrafficLight) GreenDuration() int32 {
	return l.greenDuration
}

func (l *fixedTrafficLight) RedDuration() int32 {
	return l.redDuration
}
