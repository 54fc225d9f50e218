package protocol

import "time"

// 遥测源标签（帧前缀）
const (
	// TagContainer 容器舱遥测帧前缀
	TagContainer = "1026"
	// TagPayload 载荷舱遥测帧前缀
	TagPayload = "6026"
)

// 遥测源标题（用于会话日志文件命名）
const (
	TitleContainer = "Container"
	TitlePayload   = "Payload"
)

// 遥测帧定界符
const (
	FrameStart = "/*"
	FrameEnd   = "*/"
)

// TeamID 队伍编号，所有指令的第二个字段
const TeamID = "1026"

// TelemetryRecord 路由后的遥测记录
type TelemetryRecord struct {
	Source    string    `json:"source,omitempty"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Raw       []byte    `json:"raw"`
}

// Matched 返回该记录是否匹配到已知遥测源
func (r TelemetryRecord) Matched() bool {
	return r.Source != ""
}

// TitleForTag 根据帧前缀返回遥测源标题，未匹配时返回空字符串
func TitleForTag(tag string) string {
	switch tag {
	case TagContainer:
		return TitleContainer
	case TagPayload:
		return TitlePayload
	default:
		return ""
	}
}
