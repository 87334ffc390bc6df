package comm

import (
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

// 主从之间的线上报文定义
// 说明：链路按不可靠信道建模（丢失、重复、乱序），
// 协议正确性由PhaseCommand中的CycleEpoch计数器与上层超时机制保证，
// 不依赖任何传输层的可靠性承诺

// Measurement 测量报文（从控->主控）
// 功能：上报一个进口道的排队估计
type Measurement struct {
	ApproachID int32   `json:"approachId"` // 进口道编号
	Count      int32   `json:"count"`      // 排队车辆数估计
	Presence   bool    `json:"presence"`   // 车辆占用标志
	Timestamp  float64 `json:"timestamp"`  // 读数产生时刻（秒）
}

// PhaseCommand 相位命令报文（主控->从控）
// 功能：命令一个进口道切换到指定灯色并保持指定时长
// 说明：CycleEpoch单调递增，从控用其丢弃过期、重复与乱序命令；
// 命令一经发出即不可变，由目标从控消费
type PhaseCommand struct {
	ApproachID int32             `json:"approachId"` // 目标进口道编号
	Color      entity.LightState `json:"color"`      // 目标灯色
	DurationMs int64             `json:"durationMs"` // 命令时长（毫秒）
	CycleEpoch int64             `json:"cycleEpoch"` // 决策周期计数器
}

// Duration 获取命令时长（秒）
func (c PhaseCommand) Duration() float64 {
	return float64(c.DurationMs) / 1000
}

// Heartbeat 心跳报文（双向）
// 功能：独立于测量与命令节拍的链路活性证明，用于两侧的链路超时检测；
// 从控按心跳周期上报，主控按决策周期向各从控广播
type Heartbeat struct {
	ApproachID int32   `json:"approachId"` // 进口道编号
	Timestamp  float64 `json:"timestamp"`  // 发出时刻（秒）
}
