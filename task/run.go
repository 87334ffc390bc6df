package task

import (
	"flag"
	"sync"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/sim"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 600, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并让各模块把运行时数据写入快照
// 算法说明：
// 1. 更新时钟：步数加一并计算当前时间
// 2. 心跳日志：定期输出系统状态信息
// 3. 并行准备：并发执行进口道管理器与路网的准备操作
// 说明：确保所有组件在更新阶段前都处于正确的快照状态
func (ctx *Context) prepare() {
	ctx.clock.Tick()

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) processed=%d",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.network.Processed(),
		)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.approachManager.Prepare() // approach
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.network.Prepare() // road
	}()
	wg.Wait()
}

// update 更新阶段，每步执行一次
// 功能：执行一步仿真的主要逻辑
// 说明：路网、从控、主控按固定顺序串行推进——三者通过链路与
// 灯色快照交互，更新顺序是确定性重放的一部分，不做并行化
func (ctx *Context) update() {
	dt := ctx.clock.DT
	ctx.network.Update(dt)         // road: 车辆到达与放行
	ctx.approachManager.Update(dt) // approach: 采样、心跳、相位执行
	ctx.master.Update(dt)          // master: 收集、决策、下发命令
}

// Run 运行一次完整试验
// 功能：从起始步推进到结束步并汇总指标
// 返回：本次试验的指标汇总
func (ctx *Context) Run() sim.TrialResult {
	for {
		ctx.prepare()
		ctx.update()
		if ctx.clock.InternalStep+1 >= ctx.clock.END_STEP {
			break
		}
	}
	log.Infof("trial complete: %s", ctx.clock)

	duration := float64(ctx.clock.END_STEP-ctx.clock.START_STEP) * ctx.clock.DT
	return sim.NewTrialResult(
		ctx.seed,
		ctx.runtimeConfig.C.Policy,
		duration,
		int64(len(ctx.master.Cycles())),
		ctx.network.Processed(),
		ctx.network.TotalWait(),
	)
}
