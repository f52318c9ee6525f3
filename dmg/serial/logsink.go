// Package serial provides the device plugged into the link port.
package serial

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// transferCycles is how long one byte takes with the internal clock
// (8 bits at 8192 Hz), in machine cycles.
const transferCycles = 1024

// LogSink is a serial device with nothing on the other end: outgoing bytes
// are collected and logged line by line, incoming bytes read as 0xFF.
// Test ROMs commonly report their results this way.
type LogSink struct {
	irqHandler     func()
	sb, sc         uint8
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool
	line      []byte
	output    []byte
}

type LogSinkOption func(*LogSink)

// WithFixedTiming completes transfers after the real transfer time instead
// of immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithLogger sets the logger lines are written to.
func WithLogger(l *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = l } }

// NewLogSink creates a new logging serial device. irq is called when a
// transfer completes and should request the serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	}
}

func (s *LogSink) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc | 0x7E
	}
	return 0xFF
}

// Tick advances a pending transfer by the given amount of machine cycles.
func (s *LogSink) Tick(cycles uint64) {
	if !s.transferActive {
		return
	}
	s.countdown -= int(cycles)
	if s.countdown <= 0 {
		s.completeTransfer()
	}
}

// Output returns every byte sent so far.
func (s *LogSink) Output() string {
	return string(s.output)
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// bit 7 starts the transfer, bit 0 selects the internal clock. With an
	// external clock and nothing connected the transfer never ends.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	s.output = append(s.output, b)
	if b == 0 || b == '\n' || b == '\r' {
		s.flushLine()
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = transferCycles
}

func (s *LogSink) flushLine() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

func (s *LogSink) completeTransfer() {
	s.sb = 0xFF
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	s.countdown = 0
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
