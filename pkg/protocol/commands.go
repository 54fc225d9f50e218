package protocol

import (
	"fmt"
	"time"
)

// 指令字符串格式：逗号分隔、分号结尾，例如 CMD,1026,SIM,ENABLE;

// SimulationModeCommand 构造仿真模式开关指令
func SimulationModeCommand(enabled bool) string {
	mode := "DISABLE"
	if enabled {
		mode = "ENABLE"
	}
	return fmt.Sprintf("CMD,%s,SIM,%s;", TeamID, mode)
}

// SimulationActivateCommand 构造仿真启动指令
func SimulationActivateCommand() string {
	return fmt.Sprintf("CMD,%s,SIM,ACTIVATE;", TeamID)
}

// ContainerTelemetryCommand 构造容器舱遥测开关指令
func ContainerTelemetryCommand(on bool) string {
	state := "OFF"
	if on {
		state = "ON"
	}
	return fmt.Sprintf("CMD,%s,CX,%s;", TeamID, state)
}

// TimeSyncCommand 构造时间同步指令（hh:mm:ss）
func TimeSyncCommand(t time.Time) string {
	return fmt.Sprintf("CMD,%s,ST,%s;", TeamID, t.Format("15:04:05"))
}

// SimulatedPressureCommand 构造仿真气压回放指令
func SimulatedPressureCommand(field string) string {
	return fmt.Sprintf("CMD,%s,SIMP,%s;", TeamID, field)
}
