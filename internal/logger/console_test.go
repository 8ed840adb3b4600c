package logger

import (
	"bytes"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var logLineRE = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[INFO\] hello world\n$`)

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.Infof("hello %s", "world")
	assert.Regexp(t, logLineRE, buf.String())
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		configured string
		expected   []string
		suppressed []string
	}{
		{configured: "trace", expected: []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{configured: "info", expected: []string{"INFO", "WARN", "ERROR"}, suppressed: []string{"TRACE", "DEBUG"}},
		{configured: "error", expected: []string{"ERROR"}, suppressed: []string{"TRACE", "DEBUG", "INFO", "WARN"}},
		{configured: "bogus", expected: []string{"INFO"}, suppressed: []string{"DEBUG"}},
		{configured: "", expected: []string{"INFO"}, suppressed: []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run("level "+tt.configured, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.configured)

			cl.Tracef("msg")
			cl.Debugf("msg")
			cl.Infof("msg")
			cl.Warnf("msg")
			cl.Errorf("msg")

			out := buf.String()
			for _, level := range tt.expected {
				assert.Contains(t, out, "["+level+"]")
			}
			for _, level := range tt.suppressed {
				assert.NotContains(t, out, "["+level+"]")
			}
		})
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "info")
	assert.NotPanics(t, func() { cl.Infof("dropped") })
}

func TestConsoleLoggerConcurrent(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cl.Infof("worker %d", n)
		}(i)
	}
	wg.Wait()

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 20, lines)
}

func TestScanLifecycleMessages(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.LogScanStart("dataset.json", 100, 4950, 0.75)
	cl.LogScanComplete("dataset.json", 7, 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "scan start: dataset.json (100 records, 4950 pairs, threshold 0.75)")
	assert.Contains(t, out, "scan complete: dataset.json (7 duplicate pairs, 1.5s)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2.0s", formatDuration(2*time.Second))
	assert.Equal(t, "1m5s", formatDuration(65*time.Second))
}
