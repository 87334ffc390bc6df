package task

import (
	"github.com/tsinghua-fib-lab/adaptive-signal-control/clock"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/comm"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/controlpolicy"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity/approach"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/master"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/sim"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/randengine"
)

// Context 任务上下文
// 功能：包含一次试验的所有变量和状态，替代全局变量
// 说明：管理时钟、路网、链路、进口道管理器与主控；
// 所有时间戳来自内部时钟，同配置同种子的两次运行产生完全相同的放行序列
type Context struct {
	seed uint64

	// 时钟
	clock *clock.Clock
	// 随机数引擎
	engine *randengine.Engine
	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 仿真路网
	network *sim.Network
	// 主从之间的仿真链路
	link *comm.SimLink
	// 进口道管理器
	approachManager *approach.Manager
	// 主控协调器
	master *master.Master
}

// NewContext 创建新的任务上下文
// 功能：初始化一次试验的所有组件
// 参数：c-配置对象，seed-随机种子
// 返回：初始化完成的Context实例与错误信息
// 算法说明：
// 1. 校验配置并创建时钟与随机数引擎
// 2. 创建仿真路网（合成车流）与不可靠链路
// 3. 创建进口道管理器并与路网灯色互相绑定
// 4. 按配置创建控制策略与主控协调器
func NewContext(c config.Config, seed uint64) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		seed:          seed,
		runtimeConfig: rc,
	}
	ctx.clock = clock.New(rc.C.Step)
	ctx.engine = randengine.New(seed)

	ctx.network = sim.NewNetwork(ctx, ctx.engine)
	ctx.link = comm.NewSimLink(ctx, ctx.engine, rc.N)

	ports := make([]comm.ISlavePort, rc.N)
	for i := range ports {
		ports[i] = ctx.link.SlavePort(i)
	}
	ctx.approachManager = approach.NewManager(ctx, ctx.network.Roads(), ports)
	ctx.network.BindLights(ctx.approachManager.Approaches())

	policy, err := controlpolicy.New(rc.C.Policy, rc.S)
	if err != nil {
		return nil, err
	}
	ctx.master = master.New(ctx, policy, ctx.link.MasterPort(), rc.N)

	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Network() *sim.Network {
	return ctx.network
}

func (ctx *Context) ApproachManager() *approach.Manager {
	return ctx.approachManager
}

func (ctx *Context) Master() *master.Master {
	return ctx.master
}

func (ctx *Context) Approaches() []entity.IApproach {
	return ctx.approachManager.Approaches()
}
