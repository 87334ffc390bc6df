package approach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/adaptive-signal-control/clock"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/comm"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/entity"
	"github.com/tsinghua-fib-lab/adaptive-signal-control/utils/config"
)

// testCtx 测试用任务上下文
type testCtx struct {
	clock *clock.Clock
	rc    *config.RuntimeConfig
}

func (c *testCtx) Clock() *clock.Clock                  { return c.clock }
func (c *testCtx) RuntimeConfig() *config.RuntimeConfig { return c.rc }

// fakeSlavePort 测试用从控端口，链路无损无延迟
type fakeSlavePort struct {
	out   []*comm.Frame
	inbox []*comm.Frame
}

func (p *fakeSlavePort) Send(frame *comm.Frame) {
	p.out = append(p.out, frame)
}

func (p *fakeSlavePort) Poll() []*comm.Frame {
	frames := p.inbox
	p.inbox = nil
	return frames
}

func (p *fakeSlavePort) command(t *testing.T, epoch int64, color entity.LightState, duration float64) {
	frame, err := comm.Encode(comm.PhaseCommand{
		ApproachID: 0,
		Color:      color,
		DurationMs: int64(duration * 1000),
		CycleEpoch: epoch,
	})
	require.NoError(t, err)
	p.inbox = append(p.inbox, frame)
}

func (p *fakeSlavePort) heartbeat(now float64) {
	frame, err := comm.Encode(comm.Heartbeat{ApproachID: 0, Timestamp: now})
	if err != nil {
		panic(err)
	}
	p.inbox = append(p.inbox, frame)
}

// stubSensor 返回固定读数的传感器
type stubSensor struct {
	count    int32
	presence bool
}

func (s *stubSensor) Sample(t float64) entity.QueueEstimate {
	return entity.QueueEstimate{Count: s.count, Presence: s.presence, Timestamp: t}
}

// fakeRoad 测试用进口道路段
type fakeRoad struct {
	index int
	obs   []entity.VehicleObservation
}

func (r *fakeRoad) Index() int   { return r.index }
func (r *fakeRoad) Len() float64 { return 100 }
func (r *fakeRoad) Observe() []entity.VehicleObservation {
	return r.obs
}

func newTestApproach(t *testing.T) (*Approach, *fakeSlavePort, *testCtx) {
	c := config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 7200, Interval: 0.5},
		},
		Signal: config.Signal{
			MinGreen:   10,
			MaxGreen:   40,
			Yellow:     3,
			AllRed:     1,
			FixedGreen: []float64{25},
		},
		Approaches: []config.Approach{{Name: "north", Flow: 360}},
	}
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	ctx := &testCtx{clock: clock.New(rc.C.Step), rc: rc}
	port := &fakeSlavePort{}
	return NewApproach(ctx, 0, &stubSensor{count: 2, presence: true}, port), port, ctx
}

// step 推进一步：时钟前进，保持主控心跳，执行从控
func step(a *Approach, port *fakeSlavePort, ctx *testCtx, keepAlive bool) {
	ctx.clock.Tick()
	if keepAlive {
		port.heartbeat(ctx.clock.T)
	}
	a.Update(ctx.clock.DT)
}

func TestApproachNeverSelfPromotes(t *testing.T) {
	a, port, ctx := newTestApproach(t)

	// 只有心跳、没有命令时永远保持红灯
	for i := 0; i < 100; i++ {
		step(a, port, ctx, true)
		assert.Equal(t, entity.LightStateRed, a.color)
	}

	// 期间持续上报测量值与心跳
	nMeasure, nHeartbeat := 0, 0
	for _, frame := range port.out {
		msg, err := frame.Decode()
		require.NoError(t, err)
		switch msg.(type) {
		case comm.Measurement:
			nMeasure++
		case comm.Heartbeat:
			nHeartbeat++
		}
	}
	assert.Equal(t, 100, nMeasure)
	assert.Equal(t, 100, nHeartbeat)
}

func TestApproachGreenRequiresLocalDwell(t *testing.T) {
	a, port, ctx := newTestApproach(t)
	s := ctx.rc.S

	port.command(t, 1, entity.LightStateGreen, 10)
	step(a, port, ctx, false) // t=0.5，收到绿灯命令
	// 绿灯命令先压红灯，本地计满全红清空时间
	assert.Equal(t, entity.LightStateRed, a.color)
	require.NotNil(t, a.pending)
	assert.Equal(t, ctx.clock.T+s.AllRed, a.pending.readyAt)

	step(a, port, ctx, true) // t=1.0，仍在清空
	assert.Equal(t, entity.LightStateRed, a.color)
	step(a, port, ctx, true) // t=1.5，清空到期
	assert.Equal(t, entity.LightStateGreen, a.color)
	assert.Equal(t, ctx.clock.T+10, a.deadline)
}

func TestApproachLocalDegradationAfterDeadline(t *testing.T) {
	a, port, ctx := newTestApproach(t)
	s := ctx.rc.S

	port.command(t, 1, entity.LightStateGreen, 10)
	for a.color != entity.LightStateGreen {
		step(a, port, ctx, true)
	}
	deadline := a.deadline

	// 后续没有任何相位命令（全部丢失）：时长耗尽后本地降级 绿->黄->红
	for {
		step(a, port, ctx, true)
		if ctx.clock.T >= deadline {
			break
		}
		assert.Equal(t, entity.LightStateGreen, a.color)
	}
	assert.Equal(t, entity.LightStateYellow, a.color)
	for ctx.clock.T < deadline+s.Yellow {
		step(a, port, ctx, true)
	}
	assert.Equal(t, entity.LightStateRed, a.color)
}

func TestApproachStaleEpochDiscard(t *testing.T) {
	a, port, ctx := newTestApproach(t)

	port.command(t, 5, entity.LightStateGreen, 10)
	step(a, port, ctx, false)
	require.NotNil(t, a.pending)

	// 迟到的低epoch红灯命令被丢弃，不撤销待执行的绿灯
	port.command(t, 3, entity.LightStateRed, 0)
	step(a, port, ctx, false)
	assert.NotNil(t, a.pending)
	assert.Equal(t, int64(5), a.lastEpoch)

	// 新epoch红灯命令立即生效并撤销
	port.command(t, 6, entity.LightStateRed, 0)
	step(a, port, ctx, false)
	assert.Nil(t, a.pending)
	assert.Equal(t, entity.LightStateRed, a.color)
}

func TestApproachYellowOnlyFromGreen(t *testing.T) {
	a, port, ctx := newTestApproach(t)

	// 红灯时收到黄灯命令：忽略
	port.command(t, 1, entity.LightStateYellow, 3)
	step(a, port, ctx, false)
	assert.Equal(t, entity.LightStateRed, a.color)

	// 绿灯时收到黄灯命令：进入清空
	port.command(t, 2, entity.LightStateGreen, 20)
	for a.color != entity.LightStateGreen {
		step(a, port, ctx, true)
	}
	port.command(t, 3, entity.LightStateYellow, 3)
	step(a, port, ctx, false)
	assert.Equal(t, entity.LightStateYellow, a.color)
}

func TestApproachWatchdog(t *testing.T) {
	a, port, ctx := newTestApproach(t)
	s := ctx.rc.S

	port.command(t, 1, entity.LightStateGreen, 30)
	for a.color != entity.LightStateGreen {
		step(a, port, ctx, true)
	}
	lost := ctx.clock.T

	// 主控静默：超过链路超时后退回红灯，不等命令时长走完
	for ctx.clock.T-lost <= s.LinkTimeout {
		step(a, port, ctx, false)
	}
	assert.Equal(t, entity.LightStateRed, a.color)

	// 心跳恢复不会自动恢复绿灯
	for i := 0; i < 20; i++ {
		step(a, port, ctx, true)
	}
	assert.Equal(t, entity.LightStateRed, a.color)
}

func TestUltrasonicSensorPersistence(t *testing.T) {
	road := &fakeRoad{index: 0}
	s := NewUltrasonicSensor(road)

	// 停着的车需要持续占用才被判定检出
	road.obs = []entity.VehicleObservation{{DistToStopLine: 10, V: 0.1}}
	est := s.Sample(0)
	assert.False(t, est.Presence)
	est = s.Sample(1)
	assert.False(t, est.Presence)
	est = s.Sample(2)
	assert.True(t, est.Presence)
	// 近端与远端检测点同时覆盖
	assert.Equal(t, int32(2), est.Count)

	// 占用消失后立即复位
	road.obs = nil
	est = s.Sample(2.5)
	assert.False(t, est.Presence)
	assert.Equal(t, int32(0), est.Count)
}

func TestUltrasonicSensorIgnoresMovingVehicles(t *testing.T) {
	road := &fakeRoad{index: 0}
	s := NewUltrasonicSensor(road)

	road.obs = []entity.VehicleObservation{{DistToStopLine: 10, V: 7}}
	for i := 0; i < 10; i++ {
		est := s.Sample(float64(i))
		assert.False(t, est.Presence)
	}
}

func TestUltrasonicSensorFarOnly(t *testing.T) {
	road := &fakeRoad{index: 0}
	s := NewUltrasonicSensor(road)

	// 只有远端检测点覆盖范围内有车
	road.obs = []entity.VehicleObservation{{DistToStopLine: 40, V: 0.1}}
	s.Sample(0)
	est := s.Sample(3)
	assert.True(t, est.Presence)
	assert.Equal(t, int32(1), est.Count)
}

func TestZoneCountSensor(t *testing.T) {
	road := &fakeRoad{index: 0, obs: []entity.VehicleObservation{
		{DistToStopLine: 10, V: 0.1},  // 近区
		{DistToStopLine: 40, V: 1.5},  // 中区
		{DistToStopLine: 80, V: 0.0},  // 远区
		{DistToStopLine: 150, V: 0.1}, // 远区之外，不可见
		{DistToStopLine: 20, V: 7.0},  // 快速通过，不计入排队
	}}
	s := NewZoneCountSensor(road)

	est := s.Sample(5)
	assert.Equal(t, int32(3), est.Count)
	assert.True(t, est.Presence)
	assert.Equal(t, 5.0, est.Timestamp)

	road.obs = nil
	est = s.Sample(6)
	assert.Equal(t, int32(0), est.Count)
	assert.False(t, est.Presence)
}

func TestManagerSensorSelection(t *testing.T) {
	for policy, want := range map[string]bool{"binary": true, "fixed": false, "queue": false} {
		c := config.Config{
			Control: config.Control{
				Step:   config.ControlStep{Start: 0, Total: 100, Interval: 0.5},
				Policy: policy,
			},
			Approaches: []config.Approach{{Name: "north", Flow: 360}},
		}
		rc, err := config.NewRuntimeConfig(c)
		require.NoError(t, err)
		ctx := &testCtx{clock: clock.New(rc.C.Step), rc: rc}
		m := NewManager(ctx, []entity.IRoadSegment{&fakeRoad{}}, []comm.ISlavePort{&fakeSlavePort{}})
		_, isUltrasonic := m.approaches[0].sensor.(*ultrasonicSensor)
		assert.Equal(t, want, isUltrasonic, "policy %s", policy)
	}
}
