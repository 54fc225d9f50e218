// Package simulation 实现仿真模式：加载气压仿真数据集，
// 以 1 Hz 节奏逐行回放给 CanSat。
package simulation

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

// SendFunc 指令发送回调，返回数据是否全部发出
type SendFunc func(command string) bool

// Feeder 仿真回放状态机，状态迁移只发生在事件循环线程上：
//
//	DISABLED -> ENABLED_IDLE   SetMode(true)，需要传输已连接
//	ENABLED_IDLE -> ACTIVE     SetActivated(true)，需要已加载非空数据集
//	ACTIVE -> ENABLED_IDLE     SetActivated(false) 或数据集回放完毕
//	任意 -> DISABLED           SetMode(false)
type Feeder struct {
	log       *logrus.Logger
	send      SendFunc
	connected func() bool

	startupDelay time.Duration

	enabled   bool
	activated bool
	readyAt   time.Time

	dataset *Dataset
	row     int
}

func NewFeeder(log *logrus.Logger, connected func() bool, send SendFunc, startupDelay time.Duration) *Feeder {
	return &Feeder{
		log:          log,
		send:         send,
		connected:    connected,
		startupDelay: startupDelay,
	}
}

// Enabled 返回仿真模式是否开启
func (f *Feeder) Enabled() bool { return f.enabled }

// Activated 返回回放是否进行中
func (f *Feeder) Activated() bool { return f.enabled && f.activated }

// DatasetLoaded 返回是否已加载数据集
func (f *Feeder) DatasetLoaded() bool { return f.dataset != nil }

// DatasetName 返回已加载数据集的文件名
func (f *Feeder) DatasetName() string {
	if f.dataset == nil {
		return ""
	}
	return f.dataset.Name()
}

// SetMode 开启/关闭仿真模式并把模式变更下发给 CanSat。
// 传输未连接时不做任何状态变更。
func (f *Feeder) SetMode(enabled bool) {
	if !f.connected() {
		return
	}

	f.activated = false
	f.enabled = enabled
	f.send(protocol.SimulationModeCommand(enabled))
	f.log.Infof("仿真模式: enabled=%v", enabled)
}

// SetActivated 启动/停止仿真回放。启动要求模式已开启且数据集非空；
// 第一行数据在启动延迟之后才发送。停止时下发停用指令并回到空闲状态。
func (f *Feeder) SetActivated(activated bool) {
	if !f.connected() || !f.enabled {
		return
	}

	if !activated {
		if f.activated {
			f.activated = false
			f.send(protocol.SimulationModeCommand(false))
			f.log.Info("仿真回放已停止")
		}
		return
	}

	if f.dataset == nil || f.dataset.Len() == 0 {
		f.log.Warn("仿真数据集为空，无法启动回放")
		return
	}

	f.activated = true
	f.readyAt = time.Now().Add(f.startupDelay)
	f.send(protocol.SimulationActivateCommand())
	f.log.Infof("等待 %v 后开始发送仿真数据...", f.startupDelay)
}

// Load 加载仿真 CSV：成功后游标复位到首行，并强制停止进行中的回放
func (f *Feeder) Load(path string) error {
	dataset, err := LoadDataset(path)
	if err != nil {
		return err
	}

	if f.Activated() {
		f.SetActivated(false)
	}

	f.dataset = dataset
	f.row = 0
	f.log.Infof("已加载仿真 CSV: %s (%d 行)", dataset.Name(), dataset.Len())
	return nil
}

// Tick 1 Hz 回放节拍。回放未激活、启动延迟未到或传输断开时不发送。
// 空行只报告错误不中断回放；到达数据集末尾后自动停用。
func (f *Feeder) Tick(now time.Time) {
	if !f.Activated() || !f.connected() {
		return
	}
	if now.Before(f.readyAt) {
		return
	}

	if f.row >= f.dataset.Len() {
		f.activated = false
		f.send(protocol.SimulationModeCommand(false))
		f.log.Info("压力仿真结束：已到达 CSV 文件末尾")
		return
	}

	row := f.dataset.Row(f.row)
	field := ""
	if len(row) > 0 {
		field = row[0]
	}

	if field == "" {
		f.log.Errorf("仿真 CSV 第 %d 行列数无效", f.row)
	} else {
		f.send(protocol.SimulatedPressureCommand(field))
	}

	f.row++
}
