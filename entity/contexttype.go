package entity

import (
	"github.com/tsinghua-fib-lab/adaptive-signal-control/clock"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// ITaskContext 任务上下文接口
// 说明：entity/approach、master等模块通过本接口读取时钟与配置，
// 避免对task包的直接依赖
type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
}
