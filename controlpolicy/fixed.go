package controlpolicy

import (
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// fixedTime 固定配时策略
// 功能：按预设方案给每个进口道固定的绿灯时长，完全忽略传感器输入
// 说明：作为对照基线，同时也是其他策略在传感器失效时的退化目标
type fixedTime struct {
	s config.Signal
}

// NewFixedTime 创建固定配时策略
// 参数：s-信号配时配置，FixedGreen为每个进口道的固定绿灯时长
func NewFixedTime(s config.Signal) entity.IControlPolicy {
	return &fixedTime{s: s}
}

func (p *fixedTime) Name() string {
	return "fixed"
}

// Decide 决定当前绿灯相位延长还是结束
// 说明：到达固定时长即结束，不受排队估计影响
func (p *fixedTime) Decide(current int, estimates []entity.QueueEstimate, elapsedGreen float64) entity.Decision {
	if elapsedGreen >= p.s.FixedGreen[current] {
		return entity.DecisionEnd
	}
	return entity.DecisionExtend
}

// NextGreenDuration 计算进口道下一次绿灯的时长
// 返回：配置的固定时长
func (p *fixedTime) NextGreenDuration(approach int, estimates []entity.QueueEstimate) float64 {
	return p.s.FixedGreen[approach]
}
