package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// TrialResult 单次试验的指标汇总
// 功能：记录一次完整仿真运行的性能指标
// 说明：与固定配时基线的对比分析（ANOVA）在仓库之外进行，
// 这里只负责产出每次试验的原始指标
type TrialResult struct {
	RunID      string  `bson:"run_id" json:"runId"`           // 本次运行的唯一标识
	Seed       uint64  `bson:"seed" json:"seed"`              // 随机种子
	Policy     string  `bson:"policy" json:"policy"`          // 控制策略
	DurationS  float64 `bson:"duration_s" json:"durationS"`   // 仿真时长（秒）
	Cycles     int64   `bson:"cycles" json:"cycles"`          // 绿灯放行次数
	Vehicles   int64   `bson:"vehicles" json:"vehicles"`      // 放行车辆数
	AvgWait    float64 `bson:"avg_wait" json:"avgWait"`       // 平均等待时间（秒）
	Throughput float64 `bson:"throughput" json:"throughput"`  // 通行能力（辆/小时）
}

// NewTrialResult 汇总一次试验的指标
// 参数：seed-随机种子，policy-策略名，duration-仿真时长，
// cycles-放行次数，vehicles-放行车辆数，totalWait-累计等待时间
func NewTrialResult(seed uint64, policy string, duration float64, cycles, vehicles int64, totalWait float64) TrialResult {
	r := TrialResult{
		RunID:     uuid.NewString(),
		Seed:      seed,
		Policy:    policy,
		DurationS: duration,
		Cycles:    cycles,
		Vehicles:  vehicles,
	}
	if vehicles > 0 {
		r.AvgWait = totalWait / float64(vehicles)
	}
	if duration > 0 {
		r.Throughput = float64(vehicles) / duration * 3600
	}
	return r
}

// String 获取试验结果的字符串表示
func (r TrialResult) String() string {
	return fmt.Sprintf("Trial{seed=%d policy=%s cycles=%d vehicles=%d avgWait=%.2fs throughput=%.0f/h}",
		r.Seed, r.Policy, r.Cycles, r.Vehicles, r.AvgWait, r.Throughput)
}
