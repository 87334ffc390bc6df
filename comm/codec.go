package comm

import (
	"encoding/json"
	"fmt"
)

// 报文类型标签
const (
	TypeMeasurement  = "Measurement"
	TypePhaseCommand = "PhaseCommand"
	TypeHeartbeat    = "Heartbeat"
)

// Frame 类型标记的JSON帧
// 功能：线上传输的统一封包格式
// 说明：TypeID标识负载类型，接收端据此还原为具体报文结构
type Frame struct {
	TypeID string          `json:"typeId"`
	JSON   json.RawMessage `json:"json"`
}

// Encode 将报文封装为帧
// 功能：序列化报文负载并打上类型标签
// 参数：object-三种报文之一
// 返回：帧指针与错误信息，未知报文类型返回错误
func Encode(object any) (*Frame, error) {
	var typeID string
	switch object.(type) {
	case Measurement, *Measurement:
		typeID = TypeMeasurement
	case PhaseCommand, *PhaseCommand:
		typeID = TypePhaseCommand
	case Heartbeat, *Heartbeat:
		typeID = TypeHeartbeat
	default:
		return nil, fmt.Errorf("comm: cannot encode unknown message type %T", object)
	}
	jsonBytes, err := json.Marshal(object)
	if err != nil {
		return nil, err
	}
	return &Frame{TypeID: typeID, JSON: jsonBytes}, nil
}

// Decode 将帧还原为报文
// 功能：根据类型标签反序列化负载
// 返回：Measurement、PhaseCommand或Heartbeat值与错误信息
// 说明：未知类型标签按协议错误处理，由调用方决定丢弃
func (f *Frame) Decode() (any, error) {
	switch f.TypeID {
	case TypeMeasurement:
		var m Measurement
		if err := json.Unmarshal(f.JSON, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypePhaseCommand:
		var c PhaseCommand
		if err := json.Unmarshal(f.JSON, &c); err != nil {
			return nil, err
		}
		return c, nil
	case TypeHeartbeat:
		var h Heartbeat
		if err := json.Unmarshal(f.JSON, &h); err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("comm: frame type %q does not match any known message type", f.TypeID)
	}
}
