// 假的伴随程序：模拟 Serial Studio 插件服务器，用于手工联调。
// 监听插件端口，把预置的遥测帧封装成 {"data":"<base64>"} JSON
// 下发给地面站，并以十六进制回显地面站发来的指令帧。
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"time"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:7777", "监听地址")
	interval := flag.Duration("interval", time.Second, "遥测帧下发间隔")
	split := flag.Bool("split", false, "把每帧拆成两段下发（测试重组）")
	flag.Parse()

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatalf("监听失败: %v", err)
	}
	fmt.Printf("假伴随程序监听中: %s\n", *listen)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("接受连接失败: %v", err)
			continue
		}
		fmt.Printf("地面站已连接: %s\n", conn.RemoteAddr())
		go serve(conn, *interval, *split)
	}
}

func serve(conn net.Conn, interval time.Duration, split bool) {
	defer conn.Close()

	// 回显收到的指令帧
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			fmt.Printf("[RX] % x\n", buf[:n])
		}
	}()

	// 周期性下发模拟遥测帧
	seq := 0
	for {
		frame := makeFrame(seq)
		if err := sendEnvelopes(conn, frame, split); err != nil {
			fmt.Printf("连接断开: %v\n", err)
			return
		}
		fmt.Printf("[TX] %s\n", frame)
		seq++
		time.Sleep(interval)
	}
}

// makeFrame 构造一条带定界符的模拟遥测帧
func makeFrame(seq int) string {
	tag := "6026"
	if seq%2 == 1 {
		tag = "1026"
	}
	return fmt.Sprintf("/*%s,%d,%.1f,%.1f*/", tag, seq, 25.0+float64(seq%10), 101325.0-float64(seq))
}

// sendEnvelopes 把帧封装成 JSON 下发，split 模式拆成两段
func sendEnvelopes(conn net.Conn, frame string, split bool) error {
	chunks := []string{frame}
	if split && len(frame) > 4 {
		mid := len(frame) / 2
		chunks = []string{frame[:mid], frame[mid:]}
	}

	for _, chunk := range chunks {
		env := map[string]string{
			"data": base64.StdEncoding.EncodeToString([]byte(chunk)),
		}
		data, err := json.Marshal(env)
		if err != nil {
			return err
		}
		if _, err := conn.Write(data); err != nil {
			return err
		}
	}
	return nil
}
