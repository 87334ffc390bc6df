package approach

import (
	"flag"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
)

var (
	nearSensorDist   = flag.Float64("sensor.near_distance", 25, "二值传感器近端检测距离（米）")
	farSensorDist    = flag.Float64("sensor.far_distance", 60, "二值传感器远端检测距离（米）")
	sensorPersist    = flag.Float64("sensor.persistence", 2, "二值传感器占用判定所需的持续时间（秒）")
	binaryQueueSpeed = flag.Float64("sensor.binary_queue_speed", 0.5, "二值传感器排队车速阈值（米/秒）")
	zoneNearDist     = flag.Float64("sensor.zone_near", 25, "分区计数近区边界（米）")
	zoneMediumDist   = flag.Float64("sensor.zone_medium", 60, "分区计数中区边界（米）")
	zoneFarDist      = flag.Float64("sensor.zone_far", 100, "分区计数远区边界（米）")
	zoneQueueSpeed   = flag.Float64("sensor.zone_queue_speed", 2, "分区计数排队车速阈值（米/秒）")
)

// ultrasonicSensor 二值超声波传感器模型
// 功能：在近、远两个固定点检测是否有低速车辆占用
// 说明：占用需持续超过persistence时间才被判定为检出，
// 模拟真实超声波触发器对瞬时经过车辆的抗扰
type ultrasonicSensor struct {
	road entity.IRoadSegment

	nearDetectT float64 // 近端首次连续检出时刻，负值表示当前无检出
	farDetectT  float64 // 远端首次连续检出时刻，负值表示当前无检出
}

// NewUltrasonicSensor 创建二值超声波传感器
// 参数：road-被观测的进口道路段
func NewUltrasonicSensor(road entity.IRoadSegment) entity.ISensor {
	return &ultrasonicSensor{road: road, nearDetectT: -1, farDetectT: -1}
}

// Sample 采样一次
// 算法说明：
// 1. 扫描路段上的低速车辆，判定近、远检测点当前是否被占用
// 2. 对两个检测点分别维护持续时间，未满persistence不算检出
// 3. Count为检出的检测点个数（0..2），Presence为是否有任一检出
func (s *ultrasonicSensor) Sample(t float64) entity.QueueEstimate {
	nearNow, farNow := false, false
	for _, v := range s.road.Observe() {
		if v.V >= *binaryQueueSpeed {
			continue
		}
		if v.DistToStopLine <= *nearSensorDist {
			nearNow = true
		}
		if v.DistToStopLine <= *farSensorDist {
			farNow = true
		}
	}

	nearOccupied := s.persist(&s.nearDetectT, nearNow, t)
	farOccupied := s.persist(&s.farDetectT, farNow, t)

	count := int32(0)
	if nearOccupied {
		count++
	}
	if farOccupied {
		count++
	}
	return entity.QueueEstimate{
		Count:     count,
		Presence:  nearOccupied || farOccupied,
		Timestamp: t,
	}
}

// persist 占用持续时间判定
func (s *ultrasonicSensor) persist(detectT *float64, now bool, t float64) bool {
	if !now {
		*detectT = -1
		return false
	}
	if *detectT < 0 {
		*detectT = t
	}
	return t-*detectT >= *sensorPersist
}

// zoneCountSensor 分区计数传感器模型
// 功能：统计近、中、远三个检测区内的排队车辆数
// 说明：模拟地感线圈组或相机计数系统，给出真实排队长度而非二值占用
type zoneCountSensor struct {
	road entity.IRoadSegment
}

// NewZoneCountSensor 创建分区计数传感器
func NewZoneCountSensor(road entity.IRoadSegment) entity.ISensor {
	return &zoneCountSensor{road: road}
}

// Sample 采样一次
// 算法说明：
// 1. 只统计低于排队车速阈值的车辆，快速通过的车辆不计入排队
// 2. 按到停车线距离落入近/中/远三个检测区分别计数
// 3. Count为三区计数之和，远区之外的车辆不可见
func (s *zoneCountSensor) Sample(t float64) entity.QueueEstimate {
	near, medium, far := int32(0), int32(0), int32(0)
	for _, v := range s.road.Observe() {
		if v.V >= *zoneQueueSpeed {
			continue
		}
		switch d := v.DistToStopLine; {
		case d <= *zoneNearDist:
			near++
		case d <= *zoneMediumDist:
			medium++
		case d <= *zoneFarDist:
			far++
		}
	}
	count := near + medium + far
	if count > 0 {
		log.Debugf("zone sensor %d: near=%d medium=%d far=%d", s.road.Index(), near, medium, far)
	}
	return entity.QueueEstimate{
		Count:     count,
		Presence:  count > 0,
		Timestamp: t,
	}
}
