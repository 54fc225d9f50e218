package monitor

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// 连接指标
	Connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cansat_companion_connected",
		Help: "与伴随程序的连接状态 (1=已连接)",
	})

	// 接收指标
	FramesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cansat_frames_received_total",
			Help: "接收的遥测帧总数",
		},
		[]string{"source"},
	)

	BytesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cansat_bytes_received_total",
		Help: "接收的字节总数",
	})

	UnmatchedFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cansat_unmatched_frames_total",
		Help: "前缀未匹配到已知遥测源的帧数",
	})

	BufferPurges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cansat_buffer_purges_total",
		Help: "接收缓冲区因垃圾数据被整体丢弃的次数",
	})

	// 发送指标
	FramesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cansat_frames_sent_total",
		Help: "发送成功的指令帧数",
	})

	SendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cansat_send_errors_total",
		Help: "指令发送失败次数",
	})

	// 持久化指标
	LogWriteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cansat_log_write_errors_total",
		Help: "会话日志写入失败次数",
	})

	// Goroutine指标
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cansat_goroutines",
		Help: "当前Goroutine数量",
	})

	// 内存指标
	MemoryUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cansat_memory_usage_bytes",
		Help: "内存使用量",
	})
)

type Monitor struct {
	log *logrus.Logger
}

func NewMonitor(log *logrus.Logger) *Monitor {
	// 注册指标
	prometheus.MustRegister(
		Connected,
		FramesReceived,
		BytesReceived,
		UnmatchedFrames,
		BufferPurges,
		FramesSent,
		SendErrors,
		LogWriteErrors,
		GoroutineCount,
		MemoryUsage,
	)

	return &Monitor{log: log}
}

// StartMetricsServer 启动Metrics HTTP服务器
func (m *Monitor) StartMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	m.log.Infof("Metrics服务器启动: %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.log.Errorf("Metrics服务器错误: %v", err)
		}
	}()
}

// StartRuntimeMonitor 启动运行时监控
func (m *Monitor) StartRuntimeMonitor() {
	ticker := time.NewTicker(10 * time.Second)

	go func() {
		for range ticker.C {
			GoroutineCount.Set(float64(runtime.NumGoroutine()))

			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			MemoryUsage.Set(float64(memStats.Alloc))

			m.log.Debugf("Goroutines: %d, 内存: %.2f MB",
				runtime.NumGoroutine(),
				float64(memStats.Alloc)/1024/1024,
			)
		}
	}()
}
