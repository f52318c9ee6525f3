package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogBufferWrapsAround(t *testing.T) {
	lb := NewLogBuffer(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Message: msg})
	}

	var got []string
	for _, e := range lb.Recent(0) {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"d", "c", "b"}, got)

	assert.Len(t, lb.Recent(2), 2)
	assert.Empty(t, NewLogBuffer(4).Recent(10))
}

func TestLogHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogHandler(lb, slog.LevelInfo))

	logger.Debug("dropped")
	logger.With("component", "ppu").Warn("late frame", "lag", 3)

	entries := lb.Recent(0)
	assert.Len(t, entries, 1)
	assert.Equal(t, slog.LevelWarn, entries[0].Level)
	assert.Equal(t, "late frame component=ppu lag=3", entries[0].Message)
}

func TestLogEntryString(t *testing.T) {
	entry := LogEntry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   slog.LevelError,
		Message: "boom",
	}
	assert.Equal(t, "03:04:05 [ERR] boom", entry.String())
}
