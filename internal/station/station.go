// Package station 把各组件装配成地面站核心，并运行单一事件循环：
// 所有定时节拍、接收数据和操作员指令都在同一个 goroutine 上串行处理，
// 共享状态（接收缓冲区、会话日志句柄、回放游标）无需加锁。
package station

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/config"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/monitor"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/reassembler"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/router"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/simulation"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/storage"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/transport"
	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/xbee"
	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

type Station struct {
	cfg *config.Config
	log *logrus.Logger

	transport *transport.Client
	reasm     *reassembler.Reassembler
	router    *router.Router
	feeder    *simulation.Feeder
	mirror    *storage.Mirror
	monitor   *monitor.Monitor

	// commands 操作员指令队列，闭包在事件循环线程上执行
	commands chan func()

	// currentTime 20 Hz 刷新的界面时间字符串
	currentTime atomic.Value

	containerTelemetry bool
}

func New(cfg *config.Config, log *logrus.Logger) *Station {
	s := &Station{
		cfg:      cfg,
		log:      log,
		commands: make(chan func(), 16),
	}

	s.transport = transport.NewClient(
		cfg.Companion.Address(),
		cfg.Companion.DialTimeout,
		cfg.Companion.WriteTimeout,
		log,
	)

	s.reasm = reassembler.New()
	s.reasm.OnPurge = func(discarded int) {
		monitor.BufferPurges.Inc()
		log.Warnf("接收缓冲区超限，丢弃 %d 字节垃圾数据", discarded)
	}

	s.router = router.New(log, cfg.Storage.BaseDir, cfg.Storage.AppName)
	s.router.Subscribe(func(rec protocol.TelemetryRecord) {
		log.Debugf("RX: %s", rec.Raw)
	})

	s.feeder = simulation.NewFeeder(log, s.transport.Connected, s.sendData, cfg.Simulation.StartupDelay)

	// 可选的 Redis 遥测镜像：连接失败只告警，不影响地面站运行
	if cfg.Redis.Enabled {
		mirror, err := storage.NewMirror(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.Channel,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			log,
		)
		if err != nil {
			log.Warnf("Redis镜像不可用: %v", err)
		} else {
			s.mirror = mirror
			s.router.Subscribe(func(rec protocol.TelemetryRecord) {
				if err := s.mirror.Publish(context.Background(), rec); err != nil {
					log.Warnf("镜像遥测记录失败: %v", err)
				}
			})
		}
	}

	if cfg.Monitor.Enabled {
		s.monitor = monitor.NewMonitor(log)
	}

	s.currentTime.Store("")
	return s
}

// Run 运行事件循环直到 ctx 取消
func (s *Station) Run(ctx context.Context) error {
	if s.monitor != nil {
		s.monitor.StartMetricsServer(s.cfg.Monitor.MetricsPort)
		s.monitor.StartRuntimeMonitor()
	}

	// 启动时立即尝试连接，之后由 1 Hz 节拍轮询
	s.transport.TryConnect()

	tick1Hz := time.NewTicker(time.Second)
	defer tick1Hz.Stop()
	tick20Hz := time.NewTicker(50 * time.Millisecond)
	defer tick20Hz.Stop()

	s.log.Info("地面站核心已启动")

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case data := <-s.transport.Payload():
			monitor.BytesReceived.Add(float64(len(data)))
			for _, frame := range s.reasm.Push(data) {
				s.router.Route(frame)
			}

		case up := <-s.transport.StateChanges():
			if up {
				monitor.Connected.Set(1)
				s.log.Info("伴随程序连接已建立")
			} else {
				monitor.Connected.Set(0)
				s.log.Warn("伴随程序连接已断开")
			}

		case <-tick1Hz.C:
			s.transport.TryConnect()
			s.feeder.Tick(time.Now())

		case <-tick20Hz.C:
			s.currentTime.Store(time.Now().Format("15:04:05.000"))

		case fn := <-s.commands:
			fn()
		}
	}
}

func (s *Station) shutdown() {
	if err := s.router.Close(); err != nil {
		s.log.Errorf("关闭会话日志失败: %v", err)
	}
	if err := s.transport.Close(); err != nil {
		s.log.Errorf("关闭传输连接失败: %v", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Close(); err != nil {
			s.log.Errorf("关闭Redis镜像失败: %v", err)
		}
	}
	s.log.Info("地面站核心已关闭")
}

// do 把操作排入事件循环执行
func (s *Station) do(fn func()) {
	s.commands <- fn
}

// Connected 返回是否已连接到伴随程序
func (s *Station) Connected() bool {
	return s.transport.Connected()
}

// CurrentTime 返回界面时间字符串（hh:mm:ss.zzz）
func (s *Station) CurrentTime() string {
	return s.currentTime.Load().(string)
}

// SetSimulationMode 开启/关闭仿真模式
func (s *Station) SetSimulationMode(enabled bool) {
	s.do(func() { s.feeder.SetMode(enabled) })
}

// ActivateSimulation 启动/停止仿真回放
func (s *Station) ActivateSimulation(activated bool) {
	s.do(func() { s.feeder.SetActivated(activated) })
}

// LoadSimulationCSV 加载仿真数据集
func (s *Station) LoadSimulationCSV(path string) {
	s.do(func() {
		if err := s.feeder.Load(path); err != nil {
			s.log.Errorf("加载仿真 CSV 失败: %v", err)
		}
	})
}

// SetContainerTelemetry 开启/关闭容器舱遥测
func (s *Station) SetContainerTelemetry(enabled bool) {
	s.do(func() {
		if !s.transport.Connected() {
			return
		}
		s.containerTelemetry = enabled
		s.sendData(protocol.ContainerTelemetryCommand(enabled))
	})
}

// SyncTime 向容器舱下发当前时间
func (s *Station) SyncTime() {
	s.do(func() {
		if !s.transport.Connected() {
			return
		}
		s.sendData(protocol.TimeSyncCommand(time.Now()))
	})
}

// SendCommand 发送任意指令字符串
func (s *Station) SendCommand(command string) {
	s.do(func() { s.sendData(command) })
}

// sendData 编码并发送一条指令，返回是否全部字节发出。
// 指令为空或传输未连接时不发送。只能在事件循环线程上调用。
func (s *Station) sendData(data string) bool {
	if data == "" {
		return false
	}
	if !s.transport.Connected() {
		return false
	}

	frame, err := xbee.Encode(data)
	if err != nil {
		return false
	}

	n, err := s.transport.Write(frame)
	if err != nil || n != len(frame) {
		monitor.SendErrors.Inc()
		s.log.Warnf("指令发送失败: %v (已写出 %d/%d 字节)", err, n, len(frame))
		return false
	}

	monitor.FramesSent.Inc()
	s.log.Debugf("TX: %s", data)
	return true
}
