package simulation

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendRecorder struct {
	sent []string
}

func (s *sendRecorder) send(cmd string) bool {
	s.sent = append(s.sent, cmd)
	return true
}

func newTestFeeder(t *testing.T, connected bool, delay time.Duration) (*Feeder, *sendRecorder) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	rec := &sendRecorder{}
	f := NewFeeder(log, func() bool { return connected }, rec.send, delay)
	return f, rec
}

func loadRows(t *testing.T, f *Feeder, content string) {
	t.Helper()
	require.NoError(t, f.Load(writeCSV(t, content)))
}

func TestSetModeRequiresConnection(t *testing.T) {
	f, rec := newTestFeeder(t, false, 0)

	f.SetMode(true)
	assert.False(t, f.Enabled())
	assert.Empty(t, rec.sent)
}

func TestSetModeSendsCommand(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)

	f.SetMode(true)
	assert.True(t, f.Enabled())
	assert.Equal(t, []string{"CMD,1026,SIM,ENABLE;"}, rec.sent)

	f.SetMode(false)
	assert.False(t, f.Enabled())
	assert.Equal(t, "CMD,1026,SIM,DISABLE;", rec.sent[1])
}

func TestActivateRejectedWithoutDataset(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)
	f.SetMode(true)
	rec.sent = nil

	// 未加载数据集时启动回放被拒绝，状态保持空闲
	f.SetActivated(true)
	assert.False(t, f.Activated())
	assert.Empty(t, rec.sent)
}

func TestActivateRejectedWhenDisabled(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)
	loadRows(t, f, "10.5\n")

	f.SetActivated(true)
	assert.False(t, f.Activated())
	assert.Empty(t, rec.sent)
}

func TestActivateSendsCommandAndDelaysFirstRow(t *testing.T) {
	f, rec := newTestFeeder(t, true, time.Minute)
	f.SetMode(true)
	loadRows(t, f, "10.5\n11.0\n")
	rec.sent = nil

	f.SetActivated(true)
	require.True(t, f.Activated())
	assert.Equal(t, []string{"CMD,1026,SIM,ACTIVATE;"}, rec.sent)

	// 启动延迟未到，节拍不发送数据
	f.Tick(time.Now())
	assert.Len(t, rec.sent, 1)

	// 延迟过后开始逐行回放
	f.Tick(time.Now().Add(2 * time.Minute))
	require.Len(t, rec.sent, 2)
	assert.Equal(t, "CMD,1026,SIMP,10.5;", rec.sent[1])

	f.Tick(time.Now().Add(2 * time.Minute))
	require.Len(t, rec.sent, 3)
	assert.Equal(t, "CMD,1026,SIMP,11.0;", rec.sent[2])
}

func TestTickDeactivatesAtEndOfDataset(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)
	f.SetMode(true)
	loadRows(t, f, "10.5\n")
	f.SetActivated(true)
	rec.sent = nil

	now := time.Now().Add(time.Second)
	f.Tick(now)
	require.Equal(t, []string{"CMD,1026,SIMP,10.5;"}, rec.sent)

	// 数据集回放完毕：停用并下发停用指令，模式保持开启
	f.Tick(now.Add(time.Second))
	require.Len(t, rec.sent, 2)
	assert.Equal(t, "CMD,1026,SIM,DISABLE;", rec.sent[1])
	assert.False(t, f.Activated())
	assert.True(t, f.Enabled())

	// 已停用后不会再发送
	f.Tick(now.Add(2 * time.Second))
	assert.Len(t, rec.sent, 2)
}

func TestTickSkipsMalformedRow(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)
	f.SetMode(true)
	loadRows(t, f, ",x\n10.5\n")
	f.SetActivated(true)
	rec.sent = nil

	now := time.Now().Add(time.Second)

	// 首字段为空：报错但游标继续前进
	f.Tick(now)
	assert.Empty(t, rec.sent)

	f.Tick(now)
	assert.Equal(t, []string{"CMD,1026,SIMP,10.5;"}, rec.sent)
}

func TestLoadResetsCursorAndDeactivates(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)
	f.SetMode(true)
	loadRows(t, f, "1\n2\n3\n")
	f.SetActivated(true)

	now := time.Now().Add(time.Second)
	f.Tick(now)
	f.Tick(now)
	require.True(t, f.Activated())

	// 重新加载：强制停用并复位游标
	loadRows(t, f, "9\n")
	assert.False(t, f.Activated())
	rec.sent = nil

	f.SetActivated(true)
	f.Tick(time.Now().Add(time.Second))
	assert.Equal(t, []string{"CMD,1026,SIM,ACTIVATE;", "CMD,1026,SIMP,9;"}, rec.sent)
}

func TestSetActivatedFalseReturnsToIdle(t *testing.T) {
	f, rec := newTestFeeder(t, true, 0)
	f.SetMode(true)
	loadRows(t, f, "1\n")
	f.SetActivated(true)
	rec.sent = nil

	f.SetActivated(false)
	assert.False(t, f.Activated())
	assert.True(t, f.Enabled())
	assert.Equal(t, []string{"CMD,1026,SIM,DISABLE;"}, rec.sent)
}
