package approach

import (
	"flag"

	"git.fiblab.net/general/common/v2/mathutil"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/comm"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

var (
	sampleInterval    = flag.Float64("approach.sample_interval", 0.5, "传感器采样周期（秒）")
	heartbeatInterval = flag.Float64("approach.heartbeat_interval", 0.5, "心跳发送周期（秒）")
)

// pendingGreen 待执行的绿灯命令
// 说明：收到绿灯命令后先强制红灯并本地计满清空时间，到readyAt才点亮绿灯
type pendingGreen struct {
	readyAt  float64 // 本地清空计时到期时刻
	duration float64 // 命令的绿灯时长
}

// Approach 进口道控制器（从控）
// 功能：执行一个进口道的信号灯状态机与传感器采样，
// 通过报文端口与主控交互
// 说明：状态机为 RED -> GREEN -> YELLOW -> RED，红灯为初始与安全驻留状态；
// 从控绝不自行进入绿灯，绿灯只能由主控的显式命令触发，
// 且在点亮前无条件先压红灯并本地计满清空时间（纵深防御）
type Approach struct {
	ctx entity.ITaskContext

	index  int
	sensor entity.ISensor
	port   comm.ISlavePort

	// 运行时数据
	color         entity.LightState // 当前灯色
	deadline      float64           // 当前命令时长的到期时刻
	pending       *pendingGreen     // 待执行的绿灯命令
	lastEpoch     int64             // 已接受命令的最大epoch
	lastMasterT   float64           // 最近一次收到主控报文的时刻
	lastSampleT   float64           // 最近一次采样时刻
	lastHeartbeat float64           // 最近一次心跳时刻

	// snapshot，用于保存输出的数据
	colorSnapshot entity.LightState
}

// NewApproach 创建进口道控制器
// 参数：ctx-任务上下文，index-进口道编号，sensor-传感器，port-报文端口
// 返回：初始化完成的进口道控制器实例，初始灯色为红灯
func NewApproach(ctx entity.ITaskContext, index int, sensor entity.ISensor, port comm.ISlavePort) *Approach {
	return &Approach{
		ctx:           ctx,
		index:         index,
		sensor:        sensor,
		port:          port,
		color:         entity.LightStateRed,
		colorSnapshot: entity.LightStateRed,
		lastEpoch:     -1,
		lastSampleT:   -mathutil.INF,
		lastHeartbeat: -mathutil.INF,
	}
}

// Index 获取进口道编号
func (a *Approach) Index() int {
	return a.index
}

// Color 获取当前灯色快照
func (a *Approach) Color() entity.LightState {
	return a.colorSnapshot
}

// Prepare 准备阶段
// 功能：将运行时灯色写入快照，供路网与其他模块只读访问
func (a *Approach) Prepare() {
	a.colorSnapshot = a.color
}

// Update 更新阶段，执行从控的核心逻辑
// 参数：dt-时间步长
// 算法说明：
// 1. 处理到达的主控命令（epoch过滤）
// 2. 看门狗：主控静默超过链路超时则退回红灯（安全驻留）
// 3. 本地清空计时到期后点亮待执行的绿灯
// 4. 命令时长走完后降级：绿灯->黄灯->红灯
// 5. 按固定节拍采样并上报测量值、发送心跳
// 说明：采样与相位执行互不阻塞，相位切换只由命令与本地计时驱动
func (a *Approach) Update(dt float64) {
	now := a.ctx.Clock().T
	s := a.ctx.RuntimeConfig().S

	for _, frame := range a.port.Poll() {
		msg, err := frame.Decode()
		if err != nil {
			log.Warnf("approach %d: discard malformed frame: %v", a.index, err)
			continue
		}
		switch v := msg.(type) {
		case comm.PhaseCommand:
			a.handleCommand(v, now)
		case comm.Heartbeat:
			a.lastMasterT = now
		default:
			log.Warnf("approach %d: unexpected message %s", a.index, frame.TypeID)
		}
	}

	// 看门狗：与主控失联时红灯是唯一安全状态
	if now-a.lastMasterT > s.LinkTimeout && a.color != entity.LightStateRed {
		log.Warnf("approach %d: master silent for %.1fs, fall back to RED", a.index, now-a.lastMasterT)
		a.color = entity.LightStateRed
		a.pending = nil
	}

	if a.pending != nil && now >= a.pending.readyAt {
		a.color = entity.LightStateGreen
		a.deadline = now + a.pending.duration
		a.pending = nil
		log.Debugf("approach %d: GREEN on, deadline %.1f", a.index, a.deadline)
	}

	// 命令时长耗尽后的本地降级，保证清空时序不依赖后续命令送达
	if now >= a.deadline {
		switch a.color {
		case entity.LightStateGreen:
			a.color = entity.LightStateYellow
			a.deadline = now + s.Yellow
		case entity.LightStateYellow:
			a.color = entity.LightStateRed
		}
	}

	if now-a.lastSampleT >= *sampleInterval {
		a.lastSampleT = now
		est := a.sensor.Sample(now)
		a.send(comm.Measurement{
			ApproachID: int32(a.index),
			Count:      est.Count,
			Presence:   est.Presence,
			Timestamp:  est.Timestamp,
		})
	}
	if now-a.lastHeartbeat >= *heartbeatInterval {
		a.lastHeartbeat = now
		a.send(comm.Heartbeat{ApproachID: int32(a.index), Timestamp: now})
	}
}

// handleCommand 处理一条相位命令
// 算法说明：
// 1. epoch不大于已接受值的命令按过期/重复丢弃（协议故障，本地恢复）
// 2. 绿灯命令：无条件先压红灯，本地计满全红清空时间后才点亮
// 3. 黄灯命令：仅在绿灯时生效，驱动正常的清空流程
// 4. 红灯命令：立即执行并撤销待执行的绿灯
func (a *Approach) handleCommand(cmd comm.PhaseCommand, now float64) {
	// 重复命令虽被丢弃，但仍是主控存活的证明
	a.lastMasterT = now
	if cmd.CycleEpoch <= a.lastEpoch {
		log.Debugf("approach %d: discard command epoch %d (last %d)", a.index, cmd.CycleEpoch, a.lastEpoch)
		return
	}
	a.lastEpoch = cmd.CycleEpoch

	s := a.ctx.RuntimeConfig().S
	switch cmd.Color {
	case entity.LightStateGreen:
		// 点亮绿灯前无条件回到红灯并本地走完清空时间，
		// 单条被延迟或损坏的命令不可能缩短安全间隔
		a.color = entity.LightStateRed
		a.pending = &pendingGreen{
			readyAt:  now + s.AllRed,
			duration: cmd.Duration(),
		}
	case entity.LightStateYellow:
		if a.color == entity.LightStateGreen {
			a.color = entity.LightStateYellow
			a.deadline = now + cmd.Duration()
		} else {
			log.Debugf("approach %d: ignore YELLOW command in %s", a.index, a.color)
		}
	case entity.LightStateRed:
		a.color = entity.LightStateRed
		a.pending = nil
	}
}

// send 编码并发送一条报文
func (a *Approach) send(msg any) {
	frame, err := comm.Encode(msg)
	if err != nil {
		log.Errorf("approach %d: encode error: %v", a.index, err)
		return
	}
	a.port.Send(frame)
}
