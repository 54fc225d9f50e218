package xbee

import (
	"encoding/binary"
	"errors"
)

// XBee API 帧常量
const (
	// StartDelimiter API 帧起始字节
	StartDelimiter = 0x7E

	frameTypeTransmitRequest = 0x10
	frameID                  = 0x00 // 0x00 表示不需要 ACK
	broadcastRadius          = 0x00
	txOptions                = 0x00

	// headerSize API 负载中指令数据之前的固定字节数
	headerSize = 2 + 8 + 2 + 2
)

// 广播目的地址（XCTU 中配置的电台地址）
var (
	address64 = [8]byte{0x00, 0x13, 0xA2, 0x00, 0x41, 0xB1, 0x8C, 0x8D}
	address16 = [2]byte{0xFF, 0xFE}
)

// ErrEmptyCommand 指令内容为空
var ErrEmptyCommand = errors.New("指令内容为空")

// Encode 把文本指令封装为 XBee API 发射请求帧 (Transmit Request, 0x10)：
//
//	0x7E | 长度(2 字节大端) | 负载 | 校验和
//
// 长度字段为负载的字节数，校验和 = 0xFF - (负载字节累加和 & 0xFF)。
func Encode(command string) ([]byte, error) {
	if command == "" {
		return nil, ErrEmptyCommand
	}

	payload := make([]byte, 0, headerSize+len(command))
	payload = append(payload, frameTypeTransmitRequest, frameID)
	payload = append(payload, address64[:]...)
	payload = append(payload, address16[:]...)
	payload = append(payload, broadcastRadius, txOptions)
	payload = append(payload, command...)

	frame := make([]byte, 0, len(payload)+4)
	frame = append(frame, StartDelimiter)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, Checksum(payload))
	return frame, nil
}

// Checksum 计算 API 负载的校验和
func Checksum(payload []byte) byte {
	var sum uint16
	for _, b := range payload {
		sum += uint16(b)
	}
	return byte(0xFF - (sum & 0xFF))
}
