package debug

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/disasm"
)

// Tracer logs every executed instruction together with the register file.
// Lines are emitted at debug level, so the handler level has to allow them.
type Tracer struct {
	logger *slog.Logger
	mem    disasm.Reader
}

// NewTracer creates a tracer that disassembles from mem. A nil logger uses
// the default one.
func NewTracer(mem disasm.Reader, logger *slog.Logger) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{logger: logger, mem: mem}
}

// Trace logs the instruction the CPU is about to execute.
func (t *Tracer) Trace(regs cpu.Registers, cycles uint64) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	line := disasm.At(t.mem, regs.PC)
	t.logger.Debug("trace",
		"pc", fmt.Sprintf("0x%04X", regs.PC),
		"op", line.Instruction,
		"regs", regs.String(),
		"cycles", cycles)
}
