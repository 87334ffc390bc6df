package controlpolicy

import (
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// queueBased 排队长度策略
// 功能：按排队车辆数在各进口道之间按比例分配绿灯时长
// 说明：对应能计数的检测手段（分区计数、地感线圈）；
// 绿灯时长在相位开始时一次性承诺，排队消散时可提前结束
type queueBased struct {
	s config.Signal

	// 相位开始时写入，表达当前绿灯的承诺时长与是否处于退化模式
	committed float64
	degraded  bool
}

// NewQueueBased 创建排队长度策略
func NewQueueBased(s config.Signal) entity.IControlPolicy {
	return &queueBased{s: s}
}

func (p *queueBased) Name() string {
	return "queue"
}

// Decide 决定当前绿灯相位延长还是结束
// 算法说明：
// 1. 未到最小绿灯时长一律延长
// 2. 正常模式下排队消散（新读数为0）即提前结束，避免空放
// 3. 到达承诺时长即结束
func (p *queueBased) Decide(current int, estimates []entity.QueueEstimate, elapsedGreen float64) entity.Decision {
	if elapsedGreen < p.s.MinGreen {
		return entity.DecisionExtend
	}
	est := estimates[current]
	if !p.degraded && !est.Stale && est.Count == 0 {
		// 排队已消散，提前让行其他进口道
		return entity.DecisionEnd
	}
	if elapsedGreen >= p.committed {
		return entity.DecisionEnd
	}
	return entity.DecisionExtend
}

// NextGreenDuration 计算进口道下一次绿灯的时长
// 算法说明：
// 1. 读数过期时退化为该进口道的固定配时时长
// 2. 按该进口道排队数占全部进口道排队总数的比例，在
//    [minGreen, maxGreen]区间内线性分配：
//    green = minGreen + (maxGreen-minGreen) * q / Σq
// 3. 排队总数为0时退化为固定配时时长
// 说明：比例分配保证排队翻倍的进口道（截断前）获得成比例更长的绿灯
func (p *queueBased) NextGreenDuration(approach int, estimates []entity.QueueEstimate) float64 {
	est := estimates[approach]
	if est.Stale {
		p.degraded = true
		p.committed = p.s.FixedGreen[approach]
		log.Warnf("queue: approach %d estimate stale, fall back to fixed %gs", approach, p.committed)
		return p.committed
	}
	sum := lo.SumBy(estimates, func(e entity.QueueEstimate) float64 {
		if e.Stale {
			return 0
		}
		return float64(e.Count)
	})
	if sum <= 0 {
		p.degraded = false
		p.committed = p.s.FixedGreen[approach]
		return p.committed
	}
	p.degraded = false
	p.committed = clampGreen(p.s.MinGreen+(p.s.MaxGreen-p.s.MinGreen)*float64(est.Count)/sum, p.s)
	return p.committed
}
