package approach

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/comm"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

// Manager 进口道管理器
// 功能：持有全部进口道控制器并驱动其两阶段执行
type Manager struct {
	ctx entity.ITaskContext

	approaches []*Approach
}

// NewManager 创建进口道管理器
// 功能：为每个进口道路段创建传感器与控制器
// 参数：ctx-任务上下文，roads-进口道路段列表，ports-每个进口道的报文端口
// 说明：传感器模型随控制策略选择：二值占用策略使用超声波模型，
// 其余策略使用分区计数模型（固定配时下测量值仅用于观测）
func NewManager(ctx entity.ITaskContext, roads []entity.IRoadSegment, ports []comm.ISlavePort) *Manager {
	policy := ctx.RuntimeConfig().C.Policy
	m := &Manager{ctx: ctx}
	m.approaches = lo.Map(roads, func(road entity.IRoadSegment, i int) *Approach {
		var sensor entity.ISensor
		if policy == "binary" {
			sensor = NewUltrasonicSensor(road)
		} else {
			sensor = NewZoneCountSensor(road)
		}
		return NewApproach(ctx, i, sensor, ports[i])
	})
	return m
}

// Get 根据编号获取进口道控制器
// 说明：编号越界时panic，编号由配置静态决定
func (m *Manager) Get(index int) entity.IApproach {
	if index < 0 || index >= len(m.approaches) {
		log.Panicf("no index %d in approach data", index)
	}
	return m.approaches[index]
}

// Approaches 获取全部进口道控制器
func (m *Manager) Approaches() []entity.IApproach {
	return lo.Map(m.approaches, func(a *Approach, _ int) entity.IApproach { return a })
}

// Prepare 准备阶段，处理所有进口道的快照写入
// 说明：使用并行处理提高性能
func (m *Manager) Prepare() {
	parallel.GoFor(m.approaches, func(a *Approach) { a.Prepare() })
}

// Update 更新阶段，执行所有进口道的模拟逻辑
// 参数：dt-时间步长
// 说明：按编号顺序串行执行。各从控共享同一条上行链路，
// 发送顺序必须固定，否则同种子重放会产生不同的投递序列
func (m *Manager) Update(dt float64) {
	for _, a := range m.approaches {
		a.Update(dt)
	}
}
