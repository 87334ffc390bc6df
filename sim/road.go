// 仿真路网：为核心信控提供合成的传感器输入并记录时延指标。
// 这里只建模停车线前的排队与放行，不复现车辆跟驰物理
package sim

import (
	"flag"

	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/container"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/randengine"
)

var (
	vehLength   = flag.Float64("sim.vehicle_length", 4.5, "车辆长度（米）")
	vehGap      = flag.Float64("sim.vehicle_gap", 2, "排队车辆间距（米）")
	freeSpeed   = flag.Float64("sim.free_speed", 8, "进口道自由流车速（米/秒）")
	satHeadway  = flag.Float64("sim.saturation_headway", 2, "绿灯放行饱和车头时距（秒）")
	waitSpeedTh = flag.Float64("sim.wait_speed", 0.1, "等待判定车速阈值（米/秒）")
)

// Vehicle 仿真车辆
// 说明：S坐标为到停车线的距离，随车辆前进而减小
type Vehicle struct {
	arrivalT float64 // 进入路段时刻
	dist     float64 // 到停车线的距离（米）
	v        float64 // 当前速度（米/秒）
	waitT    float64 // 累计等待时间（秒）
}

// V 获取速度
func (v *Vehicle) V() float64 {
	return v.v
}

// Length 获取车长
func (v *Vehicle) Length() float64 {
	return *vehLength
}

// Road 进口道路段
// 功能：维护一个进口道上的到达、排队与放行
// 说明：到达为泊松过程，绿灯期间按饱和车头时距逐辆放行
type Road struct {
	index  int
	length float64
	rate   float64 // 到达速率（辆/秒）
	engine *randengine.Engine

	vehicles       *container.List[*Vehicle]
	nextArrivalT   float64
	nextDischargeT float64
	light          func() entity.LightState // 进口道灯色快照的读取函数

	// 指标
	processed int64   // 已放行车辆数
	totalWait float64 // 已放行车辆的累计等待时间
}

// Index 获取进口道编号
func (r *Road) Index() int {
	return r.index
}

// Len 获取路段长度
func (r *Road) Len() float64 {
	return r.length
}

// Observe 获取当前路段上全部车辆的观测快照
// 说明：传感器的观测面，不暴露内部链表
func (r *Road) Observe() []entity.VehicleObservation {
	obs := make([]entity.VehicleObservation, 0, r.vehicles.Len())
	for n := r.vehicles.First(); n != nil; n = n.Next() {
		obs = append(obs, entity.VehicleObservation{
			DistToStopLine: n.Value.dist,
			V:              n.Value.v,
		})
	}
	return obs
}

// QueueLen 获取当前排队车辆数（低速车辆）
func (r *Road) QueueLen() int {
	count := 0
	for n := r.vehicles.First(); n != nil; n = n.Next() {
		if n.Value.v < *waitSpeedTh {
			count++
		}
	}
	return count
}

// update 推进路段状态一个时间步
// 参数：now-当前时刻，dt-时间步长
// 算法说明：
// 1. 按泊松过程在路段末端生成到达车辆
// 2. 绿灯且队首已到停车线时，按饱和车头时距放行队首车辆
// 3. 其余车辆以自由流车速前进，受前车位置约束排队
// 4. 低速车辆累计等待时间
func (r *Road) update(now, dt float64) {
	for now >= r.nextArrivalT {
		r.vehicles.Insert(&container.ListNode[*Vehicle]{
			S:     r.length,
			Value: &Vehicle{arrivalT: r.nextArrivalT, dist: r.length, v: *freeSpeed},
		})
		r.nextArrivalT += r.engine.ExpGap(r.rate)
	}

	green := r.light != nil && r.light() == entity.LightStateGreen
	if green {
		if head := r.vehicles.First(); head != nil && head.Value.dist <= 0.5 && now >= r.nextDischargeT {
			r.processed++
			r.totalWait += head.Value.waitT
			head.Remove()
			r.nextDischargeT = now + *satHeadway
		}
	}

	minDist := 0.0
	for n := r.vehicles.First(); n != nil; n = n.Next() {
		veh := n.Value
		next := veh.dist - *freeSpeed*dt
		if next < minDist {
			next = minDist
		}
		veh.v = (veh.dist - next) / dt
		veh.dist = next
		n.S = next
		if veh.v < *waitSpeedTh {
			veh.waitT += dt
		}
		minDist = next + *vehLength + *vehGap
	}
}

// Network 仿真路网
// 功能：持有全部进口道路段并汇总指标
type Network struct {
	ctx entity.ITaskContext

	roads []*Road
}

// NewNetwork 创建仿真路网
// 功能：按配置为每个进口道建立路段与到达过程
// 参数：ctx-任务上下文，engine-随机数引擎
// 说明：首个到达间隔在构造时就从引擎取出，
// 路段构造顺序因此也是确定性的一部分
func NewNetwork(ctx entity.ITaskContext, engine *randengine.Engine) *Network {
	approaches := ctx.RuntimeConfig().All.Approaches
	n := &Network{ctx: ctx}
	n.roads = make([]*Road, 0, len(approaches))
	for i, a := range approaches {
		rate := a.Flow / 3600
		r := &Road{
			index:        i,
			length:       a.Len,
			rate:         rate,
			engine:       engine,
			vehicles:     &container.List[*Vehicle]{},
			nextArrivalT: ctx.Clock().T + engine.ExpGap(rate),
		}
		n.roads = append(n.roads, r)
	}
	return n
}

// Roads 获取全部路段的观测接口
func (n *Network) Roads() []entity.IRoadSegment {
	return lo.Map(n.roads, func(r *Road, _ int) entity.IRoadSegment { return r })
}

// BindLights 绑定各进口道的灯色快照
// 说明：路网与进口道控制器存在构造顺序上的相互依赖，
// 控制器建成后由任务上下文完成绑定
func (n *Network) BindLights(approaches []entity.IApproach) {
	for i, r := range n.roads {
		a := approaches[i]
		r.light = a.Color
	}
}

// Prepare 准备阶段
// 说明：路段状态只由Update写入，准备阶段无事可做，保留两阶段结构
func (n *Network) Prepare() {}

// Update 更新阶段，推进全部路段
// 参数：dt-时间步长
// 说明：按编号顺序串行执行，保证同种子重放的到达序列一致
func (n *Network) Update(dt float64) {
	now := n.ctx.Clock().T
	for _, r := range n.roads {
		r.update(now, dt)
	}
}

// Processed 获取已放行车辆总数
func (n *Network) Processed() int64 {
	return lo.SumBy(n.roads, func(r *Road) int64 { return r.processed })
}

// TotalWait 获取已放行车辆的累计等待时间
func (n *Network) TotalWait() float64 {
	return lo.SumBy(n.roads, func(r *Road) float64 { return r.totalWait })
}
