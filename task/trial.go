package task

import (
	"fmt"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/sim"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// defaultSeed 未配置种子列表时的单次试验种子
const defaultSeed uint64 = 42

// RunTrials 按配置执行全部试验
// 功能：对种子列表中的每个种子跑一次完整仿真，汇总并输出指标
// 参数：c-配置对象
// 返回：全部试验结果与错误信息
// 算法说明：
// 1. 种子列表为空时退化为单次试验
// 2. 每个种子独立构建任务上下文，试验之间不共享任何状态
// 3. 全部试验结束后按配置写出CSV与MongoDB
func RunTrials(c config.Config) ([]sim.TrialResult, error) {
	seeds := c.Trials.Seeds
	if len(seeds) == 0 {
		seeds = []uint64{defaultSeed}
	}

	results := make([]sim.TrialResult, 0, len(seeds))
	for i, seed := range seeds {
		log.Infof("TRIAL %d/%d - seed %d, policy %s", i+1, len(seeds), seed, c.Control.Policy)
		ctx, err := NewContext(c, seed)
		if err != nil {
			return nil, fmt.Errorf("task: build trial %d: %w", i+1, err)
		}
		r := ctx.Run()
		log.Infof("%s", r)
		results = append(results, r)
	}

	if c.Output.CSV != "" {
		if err := sim.WriteCSV(c.Output.CSV, results); err != nil {
			return results, err
		}
		log.Infof("results saved to %s", c.Output.CSV)
	}
	if err := sim.WriteMongo(c.Output.Mongo, results); err != nil {
		return results, err
	}
	return results, nil
}
