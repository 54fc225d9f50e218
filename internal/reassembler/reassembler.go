// Package reassembler 从任意分片的输入字节流中提取完整的遥测帧。
package reassembler

import (
	"bytes"

	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

// MaxBufferSize 缓冲区上限：超过该值仍未凑出完整帧时整体丢弃，
// 防止持续的垃圾数据撑爆内存
const MaxBufferSize = 10240

var (
	frameStart = []byte(protocol.FrameStart)
	frameEnd   = []byte(protocol.FrameEnd)
)

// Reassembler 持有接收缓冲区，按 /* ... */ 定界符切分遥测帧。
// 非并发安全，只能在单一事件循环中使用。
type Reassembler struct {
	buf []byte

	// OnPurge 缓冲区被整体丢弃时回调（参数为丢弃的字节数），可为 nil
	OnPurge func(discarded int)
}

// New 创建一个空的重组器
func New() *Reassembler {
	return &Reassembler{}
}

// Push 追加一段接收数据并提取所有完整帧（不含定界符），
// 帧按结束定界符在字节流中出现的顺序返回。不足一帧的尾部数据
// 保留在缓冲区中等待下一段数据。
func (r *Reassembler) Push(data []byte) [][]byte {
	r.buf = append(r.buf, data...)

	var frames [][]byte
	for {
		start := bytes.Index(r.buf, frameStart)
		if start < 0 {
			break
		}
		end := bytes.Index(r.buf[start+len(frameStart):], frameEnd)
		if end < 0 {
			break
		}

		body := r.buf[start+len(frameStart) : start+len(frameStart)+end]
		frame := make([]byte, len(body))
		copy(frame, body)
		frames = append(frames, frame)

		// 丢弃已消费部分（包括结束定界符）
		r.buf = r.buf[start+len(frameStart)+end+len(frameEnd):]
	}

	// 垃圾数据保护：长时间凑不出完整帧则整体清空
	if len(r.buf) > MaxBufferSize {
		discarded := len(r.buf)
		r.buf = nil
		if r.OnPurge != nil {
			r.OnPurge(discarded)
		}
	}

	return frames
}

// Pending 返回当前缓冲区中未消费的字节数
func (r *Reassembler) Pending() int {
	return len(r.buf)
}

// Reset 清空缓冲区
func (r *Reassembler) Reset() {
	r.buf = nil
}
