package comm

import (
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/container"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/randengine"
)

// ISlavePort 从控侧报文端口
type ISlavePort interface {
	Send(frame *Frame)   // 异步发送到主控，不保证送达
	Poll() []*Frame      // 非阻塞取出已到达的报文
}

// IMasterPort 主控侧报文端口
type IMasterPort interface {
	Send(approach int, frame *Frame) // 异步发送到指定从控，不保证送达
	Poll() []*Frame                  // 非阻塞取出已到达的报文
}

// lossyQueue 不可靠投递队列
// 功能：模拟单方向无线信道的丢包、重复与延迟
// 说明：帧按到期时刻排入优先队列，Poll只取出到期帧；
// 所有随机量来自注入的种子引擎，同种子下投递序列完全可复现
type lossyQueue struct {
	engine  *randengine.Engine
	cfg     config.Comm
	pending *container.PriorityQueue[*Frame]
}

func newLossyQueue(engine *randengine.Engine, cfg config.Comm) *lossyQueue {
	return &lossyQueue{
		engine:  engine,
		cfg:     cfg,
		pending: container.NewPriorityQueue[*Frame](),
	}
}

// push 帧入队
// 说明：丢弃、复制与延迟的判定各自独立
func (q *lossyQueue) push(frame *Frame, now float64) {
	if q.engine.PTrue(q.cfg.LossRate) {
		log.Debugf("link: frame %s dropped", frame.TypeID)
		return
	}
	q.pending.HeapPush(frame, now+q.engine.UniformDelay(q.cfg.MaxDelay))
	if q.engine.PTrue(q.cfg.DuplicateRate) {
		dup := *frame
		q.pending.HeapPush(&dup, now+q.engine.UniformDelay(q.cfg.MaxDelay))
		log.Debugf("link: frame %s duplicated", frame.TypeID)
	}
}

// poll 取出全部到期帧
func (q *lossyQueue) poll(now float64) []*Frame {
	frames := make([]*Frame, 0)
	for q.pending.Len() > 0 && q.pending.FirstPriority() <= now {
		f, _ := q.pending.HeapPop()
		frames = append(frames, f)
	}
	return frames
}

// SimLink 仿真无线链路
// 功能：连接一个主控与N个从控的不可靠信道
// 说明：每个方向一条独立的不可靠投递队列
type SimLink struct {
	ctx entity.ITaskContext

	toMaster *lossyQueue
	toSlave  []*lossyQueue
}

// NewSimLink 创建仿真链路
// 功能：按通信配置初始化主从之间的全部信道
// 参数：ctx-任务上下文，engine-随机数引擎，n-从控数量
func NewSimLink(ctx entity.ITaskContext, engine *randengine.Engine, n int) *SimLink {
	cfg := ctx.RuntimeConfig().All.Comm
	l := &SimLink{
		ctx:      ctx,
		toMaster: newLossyQueue(engine, cfg),
		toSlave:  make([]*lossyQueue, n),
	}
	for i := range l.toSlave {
		l.toSlave[i] = newLossyQueue(engine, cfg)
	}
	return l
}

// slavePort 从控侧端口实现
type slavePort struct {
	link  *SimLink
	index int
}

func (p *slavePort) Send(frame *Frame) {
	p.link.toMaster.push(frame, p.link.ctx.Clock().T)
}

func (p *slavePort) Poll() []*Frame {
	return p.link.toSlave[p.index].poll(p.link.ctx.Clock().T)
}

// masterPort 主控侧端口实现
type masterPort struct {
	link *SimLink
}

func (p *masterPort) Send(approach int, frame *Frame) {
	if approach < 0 || approach >= len(p.link.toSlave) {
		log.Errorf("link: send to unknown approach %d", approach)
		return
	}
	p.link.toSlave[approach].push(frame, p.link.ctx.Clock().T)
}

func (p *masterPort) Poll() []*Frame {
	return p.link.toMaster.poll(p.link.ctx.Clock().T)
}

// SlavePort 获取指定从控的端口
func (l *SimLink) SlavePort(index int) ISlavePort {
	return &slavePort{link: l, index: index}
}

// MasterPort 获取主控端口
func (l *SimLink) MasterPort() IMasterPort {
	return &masterPort{link: l}
}
