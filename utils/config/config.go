package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultTrafficLight 未配置信号灯时使用的默认值
var DefaultTrafficLight = TrafficLight{
	SamplePercent: 50,
	MinDuration:   1,
	MaxDuration:   10,
}

// RuntimeConfig 运行时配置
// 功能：存储校验并补全默认值之后的配置信息
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All   Config       // 全部配置
	C     Control      // 全局控制配置
	Light TrafficLight // 补全默认值后的信号灯配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：校验配置并补全默认值
// 参数：config-原始配置对象
// 返回：运行时配置指针；配置非法时返回包装了ErrInvalidConfig的错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	rc := &RuntimeConfig{
		All:   config,
		C:     config.Control,
		Light: DefaultTrafficLight,
	}
	if config.TrafficLight != nil {
		rc.Light = *config.TrafficLight
	}
	return rc, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// checkPercent NaN同样视为越界
func checkPercent(name string, v float64) error {
	if !(v >= 0 && v <= 100) {
		return invalid("%s must be within [0, 100], got %v", name, v)
	}
	return nil
}

// Validate 校验配置
// 功能：拒绝所有无法运行的配置（非正的尺寸/步数、越界的百分比、非法的方向矩阵等）
// 返回：第一个发现的错误，均包装ErrInvalidConfig
func (c Config) Validate() error {
	if c.Grid.Width <= 0 {
		return invalid("grid.width must be positive, got %d", c.Grid.Width)
	}
	if c.Grid.Height <= 0 {
		return invalid("grid.height must be positive, got %d", c.Grid.Height)
	}
	if c.Control.Step.Total <= 0 {
		return invalid("control.step.total must be positive, got %d", c.Control.Step.Total)
	}
	if err := checkPercent("grid.non_transitable_percent", c.Grid.NonTransitablePercent); err != nil {
		return err
	}
	if err := checkPercent("vehicle.percent", c.Vehicle.Percent); err != nil {
		return err
	}
	if c.Vehicle.MaxParkingWaitSteps <= 0 {
		return invalid("vehicle.max_parking_wait_steps must be positive, got %d", c.Vehicle.MaxParkingWaitSteps)
	}
	if tl := c.TrafficLight; tl != nil {
		if err := checkPercent("traffic_light.sample_percent", tl.SamplePercent); err != nil {
			return err
		}
		if tl.MinDuration <= 0 {
			return invalid("traffic_light.min_duration must be positive, got %d", tl.MinDuration)
		}
		if tl.MaxDuration < tl.MinDuration {
			return invalid("traffic_light.max_duration %d is less than min_duration %d", tl.MaxDuration, tl.MinDuration)
		}
	}
	if c.Grid.Matrix != nil {
		if err := c.validateMatrix(); err != nil {
			return err
		}
	}
	if m := c.Output.Mongo; m != nil && (m.DB == "" || m.Col == "") {
		return invalid("output.mongo requires db and col")
	}
	if q := c.Output.MQTT; q != nil {
		if q.Topic == "" {
			return invalid("output.mqtt requires topic")
		}
		if q.QoS > 2 {
			return invalid("output.mqtt.qos must be 0, 1 or 2, got %d", q.QoS)
		}
	}
	return nil
}

func (c Config) validateMatrix() error {
	m := c.Grid.Matrix
	if len(m) != c.Grid.Height {
		return invalid("grid.matrix has %d rows, expected height %d", len(m), c.Grid.Height)
	}
	for i, row := range m {
		if len(row) != c.Grid.Width {
			return invalid("grid.matrix row %d has %d columns, expected width %d", i, len(row), c.Grid.Width)
		}
		for j, v := range row {
			if v < -1 || v > 3 {
				return invalid("grid.matrix[%d][%d] = %d is not a direction code", i, j, v)
			}
		}
	}
	// 起点（左下角）必须可通行且向东
	if m[c.Grid.Height-1][0] != 0 {
		return invalid("grid.matrix start cell (bottom-left) must be 0 (east), got %d", m[c.Grid.Height-1][0])
	}
	return nil
}
