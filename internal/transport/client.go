// Package transport 维护与伴随程序（串口桥接程序）的 TCP 连接。
// 伴随程序把收到的串口数据包装成 {"data":"<base64>"} 的 JSON 文档下发；
// 本端发送的指令帧则为原始字节。
package transport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConnected 尚未连接到伴随程序
var ErrNotConnected = errors.New("未连接到伴随程序")

// envelope 伴随程序下发数据的 JSON 封装
type envelope struct {
	Data string `json:"data"`
}

type Client struct {
	addr         string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	log          *logrus.Logger

	mu   sync.Mutex
	conn net.Conn

	connected atomic.Bool
	dialing   atomic.Bool

	payload chan []byte
	state   chan bool
	done    chan struct{}
	closed  sync.Once
}

func NewClient(addr string, dialTimeout, writeTimeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		addr:         addr,
		dialTimeout:  dialTimeout,
		writeTimeout: writeTimeout,
		log:          log,
		payload:      make(chan []byte, 64),
		state:        make(chan bool, 8),
		done:         make(chan struct{}),
	}
}

// Payload 返回解封后的接收数据通道
func (c *Client) Payload() <-chan []byte { return c.payload }

// StateChanges 返回连接状态变更通道
func (c *Client) StateChanges() <-chan bool { return c.state }

// Connected 返回当前是否已连接
func (c *Client) Connected() bool { return c.connected.Load() }

// TryConnect 由 1 Hz 节拍轮询调用：未连接时发起一次拨号，
// 任意时刻最多只有一次拨号在进行中，不做指数退避。
func (c *Client) TryConnect() {
	if c.connected.Load() || !c.dialing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.dialing.Store(false)

		conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
		if err != nil {
			c.log.Debugf("连接伴随程序失败: %v", err)
			return
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.connected.Store(true)
		c.notifyState(true)
		c.log.Infof("已连接到伴随程序: %s", conn.RemoteAddr())

		go c.readLoop(conn)
	}()
}

// readLoop 持续解码伴随程序下发的 JSON 封装，把 base64 负载投递到
// 数据通道；解码出错时断开连接，等待下一次轮询重连。
func (c *Client) readLoop(conn net.Conn) {
	defer c.dropConn(conn)

	dec := json.NewDecoder(conn)
	for {
		var env envelope
		if err := dec.Decode(&env); err != nil {
			select {
			case <-c.done:
			default:
				c.log.Warnf("伴随程序连接断开: %v", err)
			}
			return
		}

		data, err := base64.StdEncoding.DecodeString(env.Data)
		if err != nil {
			c.log.Warnf("base64 解码失败: %v", err)
			continue
		}
		if len(data) == 0 {
			continue
		}

		select {
		case c.payload <- data:
		case <-c.done:
			return
		}
	}
}

// dropConn 关闭连接并广播断开事件
func (c *Client) dropConn(conn net.Conn) {
	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.mu.Unlock()
		c.connected.Store(false)
		c.notifyState(false)
		return
	}
	c.mu.Unlock()
}

func (c *Client) notifyState(up bool) {
	select {
	case c.state <- up:
	case <-c.done:
	}
}

// Write 把原始字节发给伴随程序，返回实际写出的字节数
func (c *Client) Write(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return 0, ErrNotConnected
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return conn.Write(p)
}

// Close 关闭客户端及当前连接
func (c *Client) Close() error {
	c.closed.Do(func() { close(c.done) })

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.connected.Store(false)
	if conn != nil {
		return conn.Close()
	}
	return nil
}
