package controlpolicy

import (
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// binaryPresence 二值占用策略
// 功能：只根据传感器的占用标志决策，不感知排队长度
// 说明：对应只能检测有车/无车的单阈值超声波传感器；
// 绿灯先承诺最小时长，只要占用持续且未到最大时长就继续延长
type binaryPresence struct {
	s config.Signal

	// 相位开始时写入，表达当前绿灯的承诺时长与是否处于退化模式
	committed float64
	degraded  bool
}

// NewBinaryPresence 创建二值占用策略
func NewBinaryPresence(s config.Signal) entity.IControlPolicy {
	return &binaryPresence{s: s}
}

func (p *binaryPresence) Name() string {
	return "binary"
}

// Decide 决定当前绿灯相位延长还是结束
// 算法说明：
// 1. 未到最小绿灯时长一律延长
// 2. 退化模式（相位开始时读数已过期）下按承诺的固定时长走完即结束
// 3. 正常模式下占用持续且未到最大绿灯时长则延长，否则结束
// 说明：运行中读数过期视为占用消失，避免卡死在失效读数上
func (p *binaryPresence) Decide(current int, estimates []entity.QueueEstimate, elapsedGreen float64) entity.Decision {
	if elapsedGreen < p.s.MinGreen {
		return entity.DecisionExtend
	}
	if p.degraded {
		if elapsedGreen >= p.committed {
			return entity.DecisionEnd
		}
		return entity.DecisionExtend
	}
	est := estimates[current]
	if !est.Stale && est.Presence && elapsedGreen < p.s.MaxGreen {
		return entity.DecisionExtend
	}
	return entity.DecisionEnd
}

// NextGreenDuration 计算进口道下一次绿灯的时长
// 返回：正常模式下为最小绿灯时长（延长由Decide驱动）；
// 读数过期时退化为该进口道的固定配时时长
func (p *binaryPresence) NextGreenDuration(approach int, estimates []entity.QueueEstimate) float64 {
	est := estimates[approach]
	if est.Stale {
		p.degraded = true
		p.committed = p.s.FixedGreen[approach]
		log.Warnf("binary: approach %d estimate stale, fall back to fixed %gs", approach, p.committed)
		return p.committed
	}
	p.degraded = false
	p.committed = p.s.MinGreen
	return p.committed
}
