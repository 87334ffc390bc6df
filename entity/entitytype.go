package entity

import "fmt"

// LightState 信号灯色
// 说明：单个进口道信号灯在某一时刻的灯色
type LightState int32

const (
	LightStateRed    LightState = iota // 红灯
	LightStateYellow                   // 黄灯
	LightStateGreen                    // 绿灯
)

// String 获取灯色的字符串表示
func (s LightState) String() string {
	switch s {
	case LightStateRed:
		return "RED"
	case LightStateYellow:
		return "YELLOW"
	case LightStateGreen:
		return "GREEN"
	default:
		return fmt.Sprintf("LightState(%d)", int32(s))
	}
}

// Decision 控制策略对当前绿灯相位的决策
type Decision int32

const (
	DecisionExtend Decision = iota // 延长当前绿灯
	DecisionEnd                    // 结束当前绿灯
)

// String 获取决策的字符串表示
func (d Decision) String() string {
	if d == DecisionExtend {
		return "EXTEND"
	}
	return "END"
}

// QueueEstimate 排队估计
// 功能：传感器对一个进口道排队情况的一次估计
// 说明：Count为排队车辆数（二值传感器下为0/1），Presence为占用标志，
// Timestamp为读数产生时刻；Stale由读数超时判定写入，表示该估计已过期
type QueueEstimate struct {
	Count     int32   // 排队车辆数估计
	Presence  bool    // 车辆占用标志
	Timestamp float64 // 读数产生时刻（仿真秒）
	Stale     bool    // 读数过期标志
}

// HasDemand 判断该进口道是否有放行需求
// 功能：供主控轮询调度时判断是否可跳过该进口道
// 说明：过期估计视为需求未知，按有需求处理，保证传感器失效时的活性
func (q QueueEstimate) HasDemand() bool {
	if q.Stale {
		return true
	}
	return q.Presence || q.Count > 0
}

// VehicleObservation 车辆观测
// 说明：传感器视角下一辆车的观测量
type VehicleObservation struct {
	DistToStopLine float64 // 到停车线的距离（米）
	V              float64 // 速度（米/秒）
}

// 依赖倒置，表达各模块对外部实现的接口需求

// 传感器接口
// 说明：Sample不允许阻塞，返回的读数可能无效或过期，由上层判定
type ISensor interface {
	Sample(t float64) QueueEstimate // 采样一次，t为当前时刻
}

// 进口道路段接口，传感器的观测对象
type IRoadSegment interface {
	Index() int                     // 进口道编号
	Len() float64                   // 路段长度（米）
	Observe() []VehicleObservation  // 当前路段上全部车辆的观测快照
}

// 控制策略接口
// 说明：三种策略（固定配时、二值占用、排队长度）的统一决策面
type IControlPolicy interface {
	Name() string
	// Decide 决定当前绿灯相位延长还是结束
	Decide(current int, estimates []QueueEstimate, elapsedGreen float64) Decision
	// NextGreenDuration 计算进口道下一次绿灯的时长（相位开始时调用一次）
	NextGreenDuration(approach int, estimates []QueueEstimate) float64
}

// 进口道控制器接口（主控与任务循环的视角）
type IApproach interface {
	Index() int             // 进口道编号
	Color() LightState      // 当前灯色快照
	Prepare()               // 准备阶段，写入快照
	Update(dt float64)      // 更新阶段，推进状态机与采样
}
