// Package router 按帧前缀分类遥测帧，追加写入对应的会话日志文件，
// 并把每一帧分发给已注册的观察者。
package router

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kaan-Sat/CC2022-Control-Panel/internal/monitor"
	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

// Observer 遥测记录观察者，按注册顺序在事件循环线程上被调用
type Observer func(protocol.TelemetryRecord)

type Router struct {
	log     *logrus.Logger
	baseDir string
	appName string

	// 每个遥测源一个会话日志，首帧时惰性创建，整个会话期间保持打开
	files map[string]*os.File

	observers []Observer
}

func New(log *logrus.Logger, baseDir, appName string) *Router {
	return &Router{
		log:     log,
		baseDir: baseDir,
		appName: appName,
		files:   make(map[string]*os.File),
	}
}

// Subscribe 注册一个观察者
func (r *Router) Subscribe(fn Observer) {
	r.observers = append(r.observers, fn)
}

// Route 处理一个已提取的遥测帧：匹配到已知前缀的帧追加写入会话日志，
// 未匹配的帧只上报给观察者。空帧直接忽略。
func (r *Router) Route(frame []byte) {
	if len(frame) == 0 {
		return
	}

	record := protocol.TelemetryRecord{
		Timestamp: time.Now(),
		Raw:       frame,
	}

	switch {
	case bytes.HasPrefix(frame, []byte(protocol.TagPayload)):
		record.Source = protocol.TagPayload
		record.Title = protocol.TitlePayload
	case bytes.HasPrefix(frame, []byte(protocol.TagContainer)):
		record.Source = protocol.TagContainer
		record.Title = protocol.TitleContainer
	}

	if record.Matched() {
		monitor.FramesReceived.WithLabelValues(record.Title).Inc()
		r.persist(record)
	} else {
		monitor.UnmatchedFrames.Inc()
		r.log.Warnf("未知遥测帧前缀: %s", frame)
	}

	// 无论持久化结果如何都上报给观察者
	for _, fn := range r.observers {
		fn(record)
	}
}

// persist 把记录追加写入对应的会话日志，失败时丢弃该帧并继续运行
func (r *Router) persist(record protocol.TelemetryRecord) {
	file, ok := r.files[record.Source]
	if !ok {
		var err error
		file, err = r.createSessionLog(record.Title, record.Timestamp)
		if err != nil {
			monitor.LogWriteErrors.Inc()
			r.log.Errorf("创建%s会话日志失败: %v", record.Title, err)
			return
		}
		r.files[record.Source] = file
	}

	line := make([]byte, 0, len(record.Raw)+1)
	line = append(line, record.Raw...)
	line = append(line, '\n')
	if _, err := file.Write(line); err != nil {
		monitor.LogWriteErrors.Inc()
		r.log.Errorf("写入%s会话日志失败: %v", record.Title, err)
	}
}

// createSessionLog 创建新的会话日志文件，目录按 年/月/日 分区
func (r *Router) createSessionLog(title string, at time.Time) (*os.File, error) {
	dir := filepath.Join(r.baseDir, r.appName, at.Format("2006"), at.Format("Jan"), at.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", title, at.Format("15-04-05")))
	r.log.Infof("创建会话日志: %s", path)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return file, nil
}

// Close 关闭所有会话日志文件
func (r *Router) Close() error {
	var firstErr error
	for tag, file := range r.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.files, tag)
	}
	return firstErr
}
