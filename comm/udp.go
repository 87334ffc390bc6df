package comm

import (
	"encoding/json"
	"errors"
	"net"
)

// UDP传输，用于实机部署（主控与各进口道控制器分别为独立设备）
// 说明：UDP本身即为不可靠信道，报文语义与SimLink完全一致，
// 正确性同样由epoch计数器与超时机制保证

const udpBufSize = 4096

// UDPEndpoint UDP报文端点
// 功能：在一条UDP双向通路上收发帧
// 说明：接收在后台goroutine中进行，Poll非阻塞；
// 接收缓冲打满时丢弃新帧（与无线信道丢包同语义）
type UDPEndpoint struct {
	conn *net.UDPConn
	peer *net.UDPAddr
	in   chan *Frame
	done chan struct{}
}

// NewUDPEndpoint 创建UDP端点
// 功能：监听本地地址并指定对端地址
// 参数：listen-本地监听地址，peer-对端地址（可为空，此时回复到最近来源）
// 返回：端点指针与错误信息
func NewUDPEndpoint(listen, peer string) (*UDPEndpoint, error) {
	laddr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	e := &UDPEndpoint{
		conn: conn,
		in:   make(chan *Frame, 256),
		done: make(chan struct{}),
	}
	if peer != "" {
		if e.peer, err = net.ResolveUDPAddr("udp", peer); err != nil {
			conn.Close()
			return nil, err
		}
	}
	go e.readLoop()
	return e, nil
}

// readLoop 后台接收循环
// 说明：解析失败的数据报按协议错误丢弃并记录
func (e *UDPEndpoint) readLoop() {
	buf := make([]byte, udpBufSize)
	for {
		n, addr, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-e.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Errorf("udp: read error: %v", err)
			continue
		}
		var frame Frame
		if err := json.Unmarshal(buf[:n], &frame); err != nil {
			log.Warnf("udp: discard malformed datagram from %v: %v", addr, err)
			continue
		}
		if e.peer == nil {
			e.peer = addr
		}
		select {
		case e.in <- &frame:
		default:
			log.Warnf("udp: receive buffer full, frame %s dropped", frame.TypeID)
		}
	}
}

// Send 发送帧到对端
// 功能：序列化并发出一个数据报，发送失败只记录不上抛
func (e *UDPEndpoint) Send(frame *Frame) {
	if e.peer == nil {
		log.Warnf("udp: no peer address yet, frame %s dropped", frame.TypeID)
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		log.Errorf("udp: marshal error: %v", err)
		return
	}
	if _, err := e.conn.WriteToUDP(data, e.peer); err != nil {
		log.Warnf("udp: write error: %v", err)
	}
}

// Addr 获取实际监听地址
// 说明：监听地址端口为0时由系统分配，部署时据此交换对端地址
func (e *UDPEndpoint) Addr() string {
	return e.conn.LocalAddr().String()
}

// Poll 非阻塞取出已到达的帧
func (e *UDPEndpoint) Poll() []*Frame {
	frames := make([]*Frame, 0)
	for {
		select {
		case f := <-e.in:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

// Close 关闭端点
func (e *UDPEndpoint) Close() error {
	close(e.done)
	return e.conn.Close()
}
