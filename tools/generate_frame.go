package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/xbee"
)

func main() {
	command := flag.String("cmd", "CMD,1026,SIM,ENABLE;", "指令字符串")
	flag.Parse()

	frame, err := xbee.Encode(*command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "编码失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("指令:     %s\n", *command)
	fmt.Printf("十六进制: %s\n", hex.EncodeToString(frame))
	fmt.Printf("字节数组: % x\n", frame)
	fmt.Printf("Go格式:   []byte{%s}\n", toGoArray(frame))
	parseAndDisplay(frame)
}

// toGoArray 把字节序列格式化为 Go 数组字面量
func toGoArray(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}
	return strings.Join(parts, ", ")
}

// parseAndDisplay 解析并展示帧各字段
func parseAndDisplay(frame []byte) {
	if len(frame) < 4 {
		return
	}

	length := binary.BigEndian.Uint16(frame[1:3])
	payload := frame[3 : len(frame)-1]
	checksum := frame[len(frame)-1]

	fmt.Println("解析结果:")
	fmt.Printf("  起始字节: 0x%02X\n", frame[0])
	fmt.Printf("  负载长度: %d\n", length)
	fmt.Printf("  帧类型:   0x%02X\n", payload[0])
	fmt.Printf("  校验和:   0x%02X (验证: %v)\n", checksum, xbee.Checksum(payload) == checksum)
}
