package router

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

func newTestRouter(t *testing.T) (*Router, string) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	base := t.TempDir()
	r := New(log, base, "CC2022-Control-Panel")
	t.Cleanup(func() { r.Close() })
	return r, base
}

func sessionFiles(t *testing.T, base string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestRouteAppendsToSameSessionLog(t *testing.T) {
	r, base := newTestRouter(t)

	// 同一个源的两帧写入同一个文件，不会重复建文件
	r.Route([]byte("1026,1,100"))
	r.Route([]byte("1026,2,200"))

	files := sessionFiles(t, base)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "Container_")

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "1026,1,100\n1026,2,200\n", string(data))
}

func TestRouteCreatesIndependentLogsPerSource(t *testing.T) {
	r, base := newTestRouter(t)

	r.Route([]byte("1026,container"))
	r.Route([]byte("6026,payload"))

	files := sessionFiles(t, base)
	require.Len(t, files, 2)

	names := []string{filepath.Base(files[0]), filepath.Base(files[1])}
	joined := names[0] + " " + names[1]
	assert.Contains(t, joined, "Container_")
	assert.Contains(t, joined, "Payload_")
}

func TestRouteUnmatchedFrameNotPersisted(t *testing.T) {
	r, base := newTestRouter(t)

	var seen []protocol.TelemetryRecord
	r.Subscribe(func(rec protocol.TelemetryRecord) { seen = append(seen, rec) })

	r.Route([]byte("9999,unknown"))

	assert.Empty(t, sessionFiles(t, base))
	require.Len(t, seen, 1)
	assert.False(t, seen[0].Matched())
	assert.Equal(t, "9999,unknown", string(seen[0].Raw))
}

func TestRouteEmptyFrameIgnored(t *testing.T) {
	r, base := newTestRouter(t)

	called := false
	r.Subscribe(func(protocol.TelemetryRecord) { called = true })

	r.Route(nil)
	r.Route([]byte{})

	assert.False(t, called)
	assert.Empty(t, sessionFiles(t, base))
}

func TestRouteObserverOrder(t *testing.T) {
	r, _ := newTestRouter(t)

	var order []int
	r.Subscribe(func(protocol.TelemetryRecord) { order = append(order, 1) })
	r.Subscribe(func(protocol.TelemetryRecord) { order = append(order, 2) })

	r.Route([]byte("6026,x"))
	assert.Equal(t, []int{1, 2}, order)
}

func TestRoutePathLayout(t *testing.T) {
	r, base := newTestRouter(t)

	r.Route([]byte("6026,a"))
	files := sessionFiles(t, base)
	require.Len(t, files, 1)

	rel, err := filepath.Rel(base, files[0])
	require.NoError(t, err)

	// {AppName}/{yyyy}/{Mon}/{dd}/Payload_{HH-mm-ss}.csv
	segments := splitPath(rel)
	require.Len(t, segments, 5)
	assert.Equal(t, "CC2022-Control-Panel", segments[0])
	assert.Regexp(t, `^\d{4}$`, segments[1])
	assert.Regexp(t, `^[A-Z][a-z]{2}$`, segments[2])
	assert.Regexp(t, `^\d{2}$`, segments[3])
	assert.Regexp(t, `^Payload_\d{2}-\d{2}-\d{2}\.csv$`, segments[4])
}

func splitPath(path string) []string {
	var parts []string
	for {
		dir, file := filepath.Split(path)
		parts = append([]string{file}, parts...)
		dir = filepath.Clean(dir)
		if dir == "." || dir == string(filepath.Separator) {
			break
		}
		path = dir
	}
	return parts
}
