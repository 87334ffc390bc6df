package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：控制仿真的时间范围、步长和精度
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 控制器运行控制配置
// 功能：定义仿真运行与控制策略选择的核心参数
type Control struct {
	Step   ControlStep `yaml:"step"`
	Policy string      `yaml:"policy"` // 控制策略（可选项：fixed binary queue）
}

// Signal 信号配时配置
// 功能：定义路口信号配时与超时参数
// 说明：所有时间单位均为秒
type Signal struct {
	MinGreen      float64   `yaml:"min_green"`      // 最小绿灯时长
	MaxGreen      float64   `yaml:"max_green"`      // 最大绿灯时长
	Yellow        float64   `yaml:"yellow"`         // 黄灯时长
	AllRed        float64   `yaml:"all_red"`        // 全红清空时长
	FixedGreen    []float64 `yaml:"fixed_green"`    // 固定配时方案（每个进口道一项）
	SensorTimeout float64   `yaml:"sensor_timeout"` // 传感器读数过期时间
	LinkTimeout   float64   `yaml:"link_timeout"`   // 通信链路超时时间
	DecisionEpoch float64   `yaml:"decision_epoch"` // 主控决策周期
}

// Approach 单个进口道配置
// 功能：定义一个进口道的名称与到达车流
type Approach struct {
	Name string  `yaml:"name"`           // 进口道名称
	Flow float64 `yaml:"flow"`           // 到达流量（辆/小时）
	Len  float64 `yaml:"len,omitempty"`  // 进口道长度（米），默认100
}

// Comm 通信链路模型配置
// 功能：定义无线链路不可靠性的仿真参数
// 说明：消息可能丢失、重复或延迟，协议须通过epoch计数器与超时自行保证正确性
type Comm struct {
	LossRate      float64 `yaml:"loss_rate"`      // 丢包概率
	DuplicateRate float64 `yaml:"duplicate_rate"` // 重复概率
	MaxDelay      float64 `yaml:"max_delay"`      // 最大投递延迟（秒）
}

// Trials 多次试验配置
// 功能：定义多随机种子重复试验
type Trials struct {
	Seeds []uint64 `yaml:"seeds,omitempty"` // 随机种子列表，为空则只跑单次（种子42）
}

// Mongo MongoDB输出配置
type Mongo struct {
	URI string `yaml:"uri,omitempty"` // MongoDB连接字符串，为空则禁用
	DB  string `yaml:"db,omitempty"`  // 数据库名
	Col string `yaml:"col,omitempty"` // 集合名
}

// Output 试验结果输出配置
// 功能：定义试验指标的输出位置（CSV文件、MongoDB）
type Output struct {
	CSV   string `yaml:"csv,omitempty"` // CSV文件路径，为空则禁用
	Mongo Mongo  `yaml:"mongo,omitempty"`
}

// Config YAML配置文件的根结构
// 功能：定义整个信控系统的配置结构
type Config struct {
	Control    Control    `yaml:"control"`    // 运行控制
	Signal     Signal     `yaml:"signal"`     // 信号配时
	Approaches []Approach `yaml:"approaches"` // 进口道列表
	Comm       Comm       `yaml:"comm"`       // 通信链路模型
	Trials     Trials     `yaml:"trials"`     // 多次试验
	Output     Output     `yaml:"output"`     // 结果输出
}
