package master

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

var (
	ErrSafetyViolation = errors.New("master: conflicting green would be commanded")
)

// assertSafeGreen 下发绿灯前的安全断言
// 功能：校验除目标外的所有进口道均处于红灯命令且全局相位为全红
// 返回：违例描述，正常时为nil
// 说明：状态机构造上本断言不可能失败，它存在的意义是把
// "两个进口道同时绿灯"从一个潜在的现场事故变成一次可观测的进程终止
func (m *Master) assertSafeGreen(next int) error {
	if m.phase != phaseAllRed {
		return fmt.Errorf("%w: global phase is not ALL-RED", ErrSafetyViolation)
	}
	for i, c := range m.commanded {
		if i != next && c != entity.LightStateRed {
			return fmt.Errorf("%w: approach %d still commanded %s", ErrSafetyViolation, i, c)
		}
	}
	return nil
}

// haltOnSafetyViolation 安全违例处理
// 功能：强制全部进口道红灯并终止调度
// 说明：安全违例是唯一的致命错误类别；传感器故障、链路故障、
// 协议故障均在本地恢复，绝不升级到这里
func (m *Master) haltOnSafetyViolation(err error) {
	log.Errorf("SAFETY VIOLATION: %v, forcing ALL-RED and halting scheduling", err)
	for i := 0; i < m.n; i++ {
		m.command(i, entity.LightStateRed, 0)
	}
	m.phase = phaseAllRed
	m.state = StateHalted
}
