// 提供三种信控策略：固定配时、二值占用、排队长度
// 三种策略实现同一决策接口，由主控在相位开始时调用NextGreenDuration确定
// 绿灯承诺时长，并在每个决策周期调用Decide决定延长或结束当前绿灯
package controlpolicy

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

var (
	ErrUnknownPolicy = errors.New("controlpolicy: unknown policy name")
)

// New 按名称创建控制策略
// 功能：策略工厂，名称为配置文件control.policy的取值
// 参数：name-策略名（fixed binary queue），s-信号配时配置
// 返回：策略实例与错误信息
func New(name string, s config.Signal) (entity.IControlPolicy, error) {
	switch name {
	case "fixed":
		return NewFixedTime(s), nil
	case "binary":
		return NewBinaryPresence(s), nil
	case "queue":
		return NewQueueBased(s), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// clampGreen 将绿灯时长限制到[minGreen, maxGreen]
func clampGreen(d float64, s config.Signal) float64 {
	if d < s.MinGreen {
		return s.MinGreen
	}
	if d > s.MaxGreen {
		return s.MaxGreen
	}
	return d
}
