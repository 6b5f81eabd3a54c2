package config

// ControlStep 指定模拟器模拟步数的配置项
type ControlStep struct {
	Total int32 `yaml:"total"` // 总步数
}

// Scenario 场景开关
// 功能：选择本次模拟启用的行为变体
// 说明：都不开启时为基础场景
type Scenario struct {
	Avoidance      bool `yaml:"avoidance,omitempty"`       // 前方有车时尝试其他合法方向（第二场景）
	ReactiveLights bool `yaml:"reactive_lights,omitempty"` // 信号灯根据局部占用即时切换（第三场景）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
// 说明：包含步数控制、随机种子与场景开关
type Control struct {
	Step     ControlStep `yaml:"step"`
	Seed     uint64      `yaml:"seed,omitempty"` // 随机数种子，同一种子的模拟结果完全一致
	Scenario Scenario    `yaml:"scenario,omitempty"`
}

// Grid 路网网格配置
// 功能：定义网格尺寸与不可通行比例
// 说明：若提供Matrix则直接使用该方向矩阵（按行存储，第0行为最上方），不再随机生成
type Grid struct {
	Width                 int     `yaml:"width"`
	Height                int     `yaml:"height"`
	NonTransitablePercent float64 `yaml:"non_transitable_percent"` // 不可通行格子百分比[0,100]
	Matrix                [][]int `yaml:"matrix,omitempty"`        // 固定方向矩阵（可选）
}

// Vehicle 车辆配置
type Vehicle struct {
	Percent             float64 `yaml:"percent"`                // 车辆数占可通行格子数的百分比[0,100]
	MaxParkingWaitSteps int32   `yaml:"max_parking_wait_steps"` // 遇到不可通行格子时的停车等待步数
}

// TrafficLight 信号灯配置
// 功能：定义信号灯的放置比例与固定周期的时长范围
type TrafficLight struct {
	SamplePercent float64 `yaml:"sample_percent"` // 在路口格子中放置信号灯的百分比
	MinDuration   int32   `yaml:"min_duration"`   // 红/绿灯时长下限（含）
	MaxDuration   int32   `yaml:"max_duration"`   // 红/绿灯时长上限（含）
}

// MongoOutput MongoDB输出配置
type MongoOutput struct {
	URI string `yaml:"uri"` // MongoDB连接字符串
	DB  string `yaml:"db"`  // 数据库名
	Col string `yaml:"col"` // 集合名
}

// GetDb 获取数据库名
func (p MongoOutput) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p MongoOutput) GetColl() string {
	return p.Col
}

// MQTTOutput MQTT实时指标输出配置
type MQTTOutput struct {
	Broker   string `yaml:"broker"`              // 例如tcp://localhost:1883
	Topic    string `yaml:"topic"`               // 发布主题前缀
	ClientID string `yaml:"client_id,omitempty"` // 为空时使用job名
	QoS      byte   `yaml:"qos,omitempty"`
}

// Output 模拟结果输出配置
// 功能：定义统计结果的去向，均为可选项
type Output struct {
	File  string       `yaml:"file,omitempty"` // 以.pb结尾时输出protobuf二进制，否则输出json
	Mongo *MongoOutput `yaml:"mongo,omitempty"`
	MQTT  *MQTTOutput  `yaml:"mqtt,omitempty"`
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Control      Control       `yaml:"control"`                 // 模拟过程控制
	Grid         Grid          `yaml:"grid"`                    // 路网
	Vehicle      Vehicle       `yaml:"vehicle"`                 // 车辆
	TrafficLight *TrafficLight `yaml:"traffic_light,omitempty"` // 信号灯，为空时使用默认值
	Output       Output        `yaml:"output,omitempty"`        // 输出
}
