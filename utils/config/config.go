package config

import "fmt"

// RuntimeConfig 运行时配置
// 功能：存储校验与填充默认值后的运行时配置信息
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	S   Signal  // 信号配时配置
	N   int     // 进口道数量
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，进行配置验证与默认值填充
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针与错误信息
// 算法说明：
// 1. 填充默认值：配时、超时、决策周期、进口道长度
// 2. 校验固定配时方案长度与进口道数量一致
// 3. 校验配时区间min_green<=max_green、清空时长为正
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	if len(config.Approaches) == 0 {
		return nil, fmt.Errorf("config: no approaches")
	}
	if config.Control.Step.Interval <= 0 {
		config.Control.Step.Interval = 0.5
	}
	if config.Control.Policy == "" {
		config.Control.Policy = "fixed"
	}
	s := &config.Signal
	if s.MinGreen <= 0 {
		s.MinGreen = 10
	}
	if s.MaxGreen <= 0 {
		s.MaxGreen = 40
	}
	if s.Yellow <= 0 {
		s.Yellow = 3
	}
	if s.AllRed <= 0 {
		s.AllRed = 1
	}
	if s.SensorTimeout <= 0 {
		s.SensorTimeout = 5
	}
	if s.LinkTimeout <= 0 {
		s.LinkTimeout = 3
	}
	if s.DecisionEpoch <= 0 {
		s.DecisionEpoch = config.Control.Step.Interval
	}
	if len(s.FixedGreen) == 0 {
		s.FixedGreen = make([]float64, len(config.Approaches))
		for i := range s.FixedGreen {
			s.FixedGreen[i] = s.MinGreen
		}
	}
	if len(s.FixedGreen) != len(config.Approaches) {
		return nil, fmt.Errorf("config: fixed_green has %d entries but there are %d approaches", len(s.FixedGreen), len(config.Approaches))
	}
	if s.MinGreen > s.MaxGreen {
		return nil, fmt.Errorf("config: min_green %f > max_green %f", s.MinGreen, s.MaxGreen)
	}
	for i := range config.Approaches {
		if config.Approaches[i].Len <= 0 {
			config.Approaches[i].Len = 100
		}
	}

	rc.All = config
	rc.C = config.Control
	rc.S = config.Signal
	rc.N = len(config.Approaches)

	return rc, nil
}
