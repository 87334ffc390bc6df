// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"

	"git.fiblab.net/general/common/v2/mathutil"
	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能
// 说明：基于golang.org/x/exp/rand库，同一种子产生完全相同的序列
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 按给定概率返回true
// 功能：进行一次伯努利试验
// 参数：p-概率（[0,1]之外的值按0或1截断）
// 返回：以概率p为true
func (e *Engine) PTrue(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return e.Float64() < p
}

// ExpGap 按指数分布生成事件间隔
// 功能：生成泊松到达过程的下一个事件间隔
// 参数：rate-事件速率（次/秒）
// 返回：间隔时间（秒），rate<=0时返回正无穷
func (e *Engine) ExpGap(rate float64) float64 {
	if rate <= 0 {
		return mathutil.INF
	}
	return e.ExpFloat64() / rate
}

// UniformDelay 生成[0,max)内均匀分布的延迟
// 功能：为链路投递延迟建模
// 参数：max-最大延迟（秒）
// 返回：延迟时间（秒）
func (e *Engine) UniformDelay(max float64) float64 {
	if max <= 0 {
		return 0
	}
	return e.Float64() * max
}
