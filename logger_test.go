package periodic

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrintfLoggerLogsErrorsOnly(t *testing.T) {
	var b bytes.Buffer
	logger := PrintfLogger(log.New(&b, "", 0))

	logger.Info("fire", "elapsed", time.Second)
	assert.Empty(t, b.String())

	logger.Error(errors.New("broken"), "stop", "reason", "callback")
	got := b.String()
	assert.Contains(t, got, "stop")
	assert.Contains(t, got, "error=broken")
	assert.Contains(t, got, "reason=callback")
}

func TestVerbosePrintfLoggerLogsInfo(t *testing.T) {
	var b bytes.Buffer
	logger := VerbosePrintfLogger(log.New(&b, "", 0))

	logger.Info("start", "interval", 100*time.Millisecond)
	got := b.String()
	assert.Contains(t, got, "start")
	assert.Contains(t, got, "interval=100ms")
}

// time.Time values are formatted as RFC3339 rather than Go's default.
func TestPrintfLoggerFormatsTimes(t *testing.T) {
	var b bytes.Buffer
	logger := VerbosePrintfLogger(log.New(&b, "", 0))

	first := time.Date(2019, time.July, 16, 15, 9, 0, 0, time.UTC)
	logger.Info("start", "first", first)
	assert.Contains(t, b.String(), "first=2019-07-16T15:09:00Z")
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "%s", formatString(0))
	assert.Equal(t, "%s, %v=%v", formatString(2))
	assert.Equal(t, "%s, %v=%v, %v=%v", formatString(4))
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := ZapLogger(zap.New(core))

	logger.Info("fire", "elapsed", 150*time.Millisecond)
	logger.Error(errors.New("broken"), "panic", "stack", "...")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "fire", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, 150*time.Millisecond, entries[0].ContextMap()["elapsed"])

	assert.Equal(t, "panic", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "broken", entries[1].ContextMap()["error"])
}

// The timer's lifecycle events flow through the configured logger.
func TestTimerLogsLifecycle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tm := New(GoExecutor{}, WithLogger(ZapLogger(zap.New(core))))

	done := make(chan struct{})
	tm.StartDuration(time.Hour, func(err error, _ time.Duration) bool {
		if err != nil {
			close(done)
		}
		return false
	})
	tm.Cancel()

	select {
	case <-done:
	case <-time.After(ONE_SECOND):
		t.FailNow()
	}

	// The stop event lands just after the final callback returns.
	var msgs []string
	for end := time.Now().Add(ONE_SECOND); time.Now().Before(end); time.Sleep(5 * time.Millisecond) {
		msgs = msgs[:0]
		for _, e := range logs.All() {
			msgs = append(msgs, e.Message)
		}
		if len(msgs) >= 3 {
			break
		}
	}
	assert.Contains(t, msgs, "start")
	assert.Contains(t, msgs, "cancel")
	assert.Contains(t, msgs, "stop")
}
