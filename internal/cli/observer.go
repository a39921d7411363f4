package cli

import (
	"strings"

	"go.uber.org/zap"

	"nexus-pusher/internal/relay"
)

// consoleObserver renders relay progress through a Printer and mirrors
// every log line to the structured logger.
type consoleObserver struct {
	printer *Printer
	logger  *zap.Logger
	image   string
}

func newConsoleObserver(printer *Printer, logger *zap.Logger, image string) *consoleObserver {
	if printer == nil {
		printer = DefaultPrinter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &consoleObserver{printer: printer, logger: logger, image: image}
}

func (o *consoleObserver) OnStart() {
	o.printer.Section("Relaying " + o.image)
}

func (o *consoleObserver) OnLogLine(line string) {
	o.logger.Debug("relay", zap.String("line", line))
	switch {
	case strings.HasPrefix(line, ">>> "):
		o.printer.Step(strings.TrimPrefix(line, ">>> "))
	case strings.HasPrefix(line, "Process failed: "):
		// reported by OnFailure
	default:
		o.printer.Println("  " + line)
	}
}

func (o *consoleObserver) OnStateChange(from, to relay.State) {
	o.logger.Debug("Relay state", zap.String("from", string(from)), zap.String("to", string(to)))
}

func (o *consoleObserver) OnSuccess() {
	o.printer.Success("Relay completed")
}

func (o *consoleObserver) OnFailure(message string) {
	o.printer.Error("Relay failed: " + message)
}
