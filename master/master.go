// 主控协调器：汇集各进口道的测量值，运行选定的控制策略，
// 并在保证任意时刻至多一个进口道为绿灯的前提下下发相位命令。
// 不同进口道的绿灯之间强制插入黄灯+全红的清空序列，
// 清空时序由主控调度与从控本地驻留双重保证
package master

import (
	"flag"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/comm"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

var (
	maxRepeat = flag.Int("master.max_repeat", 6, "同一进口道连续获得绿灯的最大次数")
)

// State 主控状态机状态
type State int32

const (
	StateInit              State = iota // 初始状态，尚未下发任何命令
	StateAwaitMeasurements              // 收集测量值
	StateScheduling                     // 运行控制策略
	StateCommanding                     // 下发相位命令
	StateHalted                         // 安全违例后的终止状态
)

// phaseKind 主控视角的全局相位类别
type phaseKind int32

const (
	phaseAllRed phaseKind = iota // 全红（启动、清空、全部从控失联）
	phaseGreen                   // 某一进口道绿灯
	phaseYellow                  // 当前绿灯进口道的黄灯清空
)

// CycleRecord 一次绿灯放行记录
// 功能：记录主控每次下发绿灯命令的完整参数，供指标统计与重放比对
type CycleRecord struct {
	Epoch    int64   // 命令的周期计数
	Approach int     // 获得绿灯的进口道
	Start    float64 // 命令下发时刻
	Duration float64 // 承诺的绿灯时长
	Queue    int32   // 下发时该进口道的排队估计
	Degraded bool    // 是否由过期读数退化产生
}

// Master 主控协调器
// 功能：持有全局相位调度的唯一权威状态
// 说明：结构内所有可变状态只由决策循环写入，不存在外部写者；
// 进口道的相位与排队信息仅为从控上报数据的只读镜像
type Master struct {
	ctx    entity.ITaskContext
	policy entity.IControlPolicy
	port   comm.IMasterPort
	n      int

	state State
	epoch int64 // 周期计数器，随每条命令单调递增

	// 从控上报数据镜像
	estimates []entity.QueueEstimate // 每个进口道最近一次排队估计
	lastHeard []float64              // 每个进口道最近一次来报时刻
	commanded []entity.LightState    // 每个进口道最近命令的灯色

	// 全局相位
	phase         phaseKind
	active        int     // 当前（或最近）放行的进口道
	phaseStart    float64 // 当前相位开始时刻
	phaseDeadline float64 // 当前相位到期时刻
	committed     float64 // 当前绿灯的承诺时长
	repeatCount   int     // 当前进口道连续获得绿灯的次数

	lastDecisionT float64 // 上一个决策周期的时刻

	cycles []CycleRecord // 绿灯放行历史
}

// New 创建主控协调器
// 参数：ctx-任务上下文，policy-控制策略，port-报文端口，n-进口道数量
func New(ctx entity.ITaskContext, policy entity.IControlPolicy, port comm.IMasterPort, n int) *Master {
	m := &Master{
		ctx:           ctx,
		policy:        policy,
		port:          port,
		n:             n,
		state:         StateInit,
		estimates:     make([]entity.QueueEstimate, n),
		lastHeard:     make([]float64, n),
		commanded:     make([]entity.LightState, n),
		phase:         phaseAllRed,
		active:        -1,
		lastDecisionT: -mathutil.INF,
		cycles:        make([]CycleRecord, 0),
	}
	for i := range m.estimates {
		m.estimates[i].Timestamp = -mathutil.INF
		m.lastHeard[i] = -mathutil.INF
		m.commanded[i] = entity.LightStateRed
	}
	return m
}

// State 获取当前状态机状态
func (m *Master) State() State {
	return m.state
}

// Epoch 获取当前周期计数
func (m *Master) Epoch() int64 {
	return m.epoch
}

// Cycles 获取绿灯放行历史
func (m *Master) Cycles() []CycleRecord {
	return m.cycles
}

// Estimate 获取一个进口道的排队估计镜像（含过期标志）
func (m *Master) Estimate(index int) entity.QueueEstimate {
	return m.estimates[index]
}

// Update 更新阶段，执行主控的一个时间步
// 参数：dt-时间步长
// 算法说明：
// 1. 非阻塞收取全部到达报文，刷新测量与心跳镜像（AWAIT_MEASUREMENTS）
// 2. 按决策周期节拍推进相位状态机（SCHEDULING）：
//    绿灯期间由策略决定延长或结束；结束后依次经过黄灯、全红清空
// 3. 全红走完后选取下一个放行的进口道并下发绿灯命令（COMMANDING）
// 说明：静默的从控不会阻塞收集，其最近值被复用并按超时标记过期
func (m *Master) Update(dt float64) {
	if m.state == StateHalted {
		return
	}
	now := m.ctx.Clock().T

	if m.state == StateInit {
		// 上电先把所有进口道压到红灯，全红驻留后才开始调度
		for i := 0; i < m.n; i++ {
			m.command(i, entity.LightStateRed, 0)
		}
		m.phase = phaseAllRed
		m.phaseStart = now
		m.phaseDeadline = now + m.ctx.RuntimeConfig().S.AllRed
		m.state = StateAwaitMeasurements
		return
	}

	m.state = StateAwaitMeasurements
	m.collect(now)

	// 决策周期节拍
	if now-m.lastDecisionT < m.ctx.RuntimeConfig().S.DecisionEpoch {
		return
	}
	m.lastDecisionT = now

	// 主控心跳：从控的链路看门狗以此判定主控存活，
	// 绿灯期间没有相位命令，心跳是唯一的存活证明
	m.broadcastHeartbeat(now)

	m.state = StateScheduling
	m.refreshStaleness(now)
	m.step(now)
	m.state = StateAwaitMeasurements
}

// broadcastHeartbeat 向全部从控发送心跳
func (m *Master) broadcastHeartbeat(now float64) {
	for i := 0; i < m.n; i++ {
		frame, err := comm.Encode(comm.Heartbeat{ApproachID: int32(i), Timestamp: now})
		if err != nil {
			log.Errorf("encode heartbeat error: %v", err)
			return
		}
		m.port.Send(i, frame)
	}
}

// collect 非阻塞收取报文并刷新镜像
// 说明：时间戳早于已有镜像的测量值按乱序丢弃（协议故障，本地恢复）
func (m *Master) collect(now float64) {
	for _, frame := range m.port.Poll() {
		msg, err := frame.Decode()
		if err != nil {
			log.Warnf("discard malformed frame: %v", err)
			continue
		}
		switch v := msg.(type) {
		case comm.Measurement:
			i := int(v.ApproachID)
			if i < 0 || i >= m.n {
				log.Warnf("measurement from unknown approach %d", v.ApproachID)
				continue
			}
			if v.Timestamp < m.estimates[i].Timestamp {
				log.Debugf("discard out-of-order measurement from approach %d", i)
				continue
			}
			m.estimates[i] = entity.QueueEstimate{
				Count:     v.Count,
				Presence:  v.Presence,
				Timestamp: v.Timestamp,
			}
			m.lastHeard[i] = now
		case comm.Heartbeat:
			i := int(v.ApproachID)
			if i < 0 || i >= m.n {
				log.Warnf("heartbeat from unknown approach %d", v.ApproachID)
				continue
			}
			m.lastHeard[i] = now
		default:
			log.Warnf("unexpected message %s", frame.TypeID)
		}
	}
}

// refreshStaleness 按读数超时刷新过期标志
func (m *Master) refreshStaleness(now float64) {
	timeout := m.ctx.RuntimeConfig().S.SensorTimeout
	for i := range m.estimates {
		m.estimates[i].Stale = now-m.estimates[i].Timestamp > timeout
	}
}

// alive 判断一个进口道的链路是否存活
func (m *Master) alive(i int, now float64) bool {
	return now-m.lastHeard[i] <= m.ctx.RuntimeConfig().S.LinkTimeout
}

// step 推进全局相位状态机
func (m *Master) step(now float64) {
	s := m.ctx.RuntimeConfig().S
	switch m.phase {
	case phaseGreen:
		// 放行中的从控失联时立即进入清空，其本地看门狗会自行退红
		if !m.alive(m.active, now) {
			log.Warnf("approach %d lost during GREEN, start clearance", m.active)
			m.startClearance(now)
			return
		}
		elapsed := now - m.phaseStart
		if m.policy.Decide(m.active, m.estimates, elapsed) == entity.DecisionEnd {
			m.startClearance(now)
		}
	case phaseYellow:
		if now >= m.phaseDeadline {
			m.command(m.active, entity.LightStateRed, 0)
			m.phase = phaseAllRed
			m.phaseStart = now
			m.phaseDeadline = now + s.AllRed
		}
	case phaseAllRed:
		if now >= m.phaseDeadline {
			m.serveNext(now)
		}
	}
}

// startClearance 结束当前绿灯，进入黄灯清空
func (m *Master) startClearance(now float64) {
	s := m.ctx.RuntimeConfig().S
	m.command(m.active, entity.LightStateYellow, s.Yellow)
	m.phase = phaseYellow
	m.phaseStart = now
	m.phaseDeadline = now + s.Yellow
}

// serveNext 选取并放行下一个进口道
// 算法说明：
// 1. 从当前进口道的下一个开始轮询，只考虑链路存活的进口道
// 2. 排队为零的进口道仅在存在其他有需求进口道时被跳过，
//    防止需求数据单独决定放行顺序时的无限饥饿
// 3. 同一进口道连续放行达到上限后让位于其他有需求的进口道
// 4. 无存活进口道时保持全红，等待下一个决策周期
// 说明：下发绿灯前断言无其他进口道处于绿灯命令，
// 该断言在状态机构造上不可触发，一旦触发按安全违例终止调度
func (m *Master) serveNext(now float64) {
	s := m.ctx.RuntimeConfig().S

	candidates := make([]int, 0, m.n)
	for k := 1; k <= m.n; k++ {
		i := ((m.active + k) % m.n + m.n) % m.n
		if m.alive(i, now) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		log.Warnf("no alive approach, stay ALL-RED")
		m.phaseDeadline = now + s.DecisionEpoch
		return
	}

	anyDemand := lo.SomeBy(candidates, func(i int) bool { return m.estimates[i].HasDemand() })
	next := -1
	for _, i := range candidates {
		if anyDemand && !m.estimates[i].HasDemand() {
			continue
		}
		if i == m.active && m.repeatCount >= *maxRepeat && len(candidates) > 1 {
			log.Infof("approach %d reached repeat limit %d, skip", i, *maxRepeat)
			continue
		}
		next = i
		break
	}
	if next < 0 {
		next = candidates[0]
	}

	m.state = StateCommanding
	if err := m.assertSafeGreen(next); err != nil {
		m.haltOnSafetyViolation(err)
		return
	}

	duration := m.policy.NextGreenDuration(next, m.estimates)
	if next == m.active {
		m.repeatCount++
	} else {
		m.repeatCount = 1
	}
	m.active = next
	m.phase = phaseGreen
	m.phaseStart = now
	m.committed = duration
	m.command(next, entity.LightStateGreen, duration)
	m.cycles = append(m.cycles, CycleRecord{
		Epoch:    m.epoch,
		Approach: next,
		Start:    now,
		Duration: duration,
		Queue:    m.estimates[next].Count,
		Degraded: m.estimates[next].Stale,
	})
	log.Infof("[%s] approach %d GREEN %.1fs (queue=%d stale=%v epoch=%d)",
		m.ctx.Clock(), next, duration, m.estimates[next].Count, m.estimates[next].Stale, m.epoch)
}

// command 下发一条相位命令
// 说明：epoch先递增后发送，保证每条命令携带唯一且单调的计数
func (m *Master) command(i int, color entity.LightState, duration float64) {
	m.epoch++
	frame, err := comm.Encode(comm.PhaseCommand{
		ApproachID: int32(i),
		Color:      color,
		DurationMs: int64(duration * 1000),
		CycleEpoch: m.epoch,
	})
	if err != nil {
		log.Errorf("encode command error: %v", err)
		return
	}
	m.port.Send(i, frame)
	m.commanded[i] = color
}
