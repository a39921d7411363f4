package cli

// This file implements terminal output for the CLI on top of pterm.
// Everything user-facing goes through a Printer so quiet mode and tests can
// redirect or silence it.

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Printer writes styled output. Errors and warnings are printed even in
// quiet mode.
type Printer struct {
	Quiet bool
	// Writer receives regular output; nil means os.Stdout.
	Writer io.Writer
	// ErrWriter receives warnings and errors; nil means os.Stderr.
	ErrWriter io.Writer
}

// DefaultPrinter is the process-wide printer used by the package helpers.
var DefaultPrinter = &Printer{}

func (p *Printer) out() io.Writer {
	if p.Writer != nil {
		return p.Writer
	}
	return os.Stdout
}

func (p *Printer) errOut() io.Writer {
	if p.ErrWriter != nil {
		return p.ErrWriter
	}
	return os.Stderr
}

func (p *Printer) write(s string) {
	if p.Quiet {
		return
	}
	_, _ = io.WriteString(p.out(), s)
}

// Println prints a plain line.
func (p *Printer) Println(a ...any) { p.write(fmt.Sprintln(a...)) }

// Printf prints formatted plain text.
func (p *Printer) Printf(format string, a ...any) { p.write(fmt.Sprintf(format, a...)) }

// Header prints a full-width title banner.
func (p *Printer) Header(title string) { p.write(pterm.DefaultHeader.Sprintln(title)) }

// Section prints a section title.
func (p *Printer) Section(title string) { p.write(pterm.DefaultSection.Sprintln(title)) }

// Step prints a numbered-style progress step.
func (p *Printer) Step(msg string) { p.write(pterm.Cyan("→ ") + msg + "\n") }

// Info prints an informational message.
func (p *Printer) Info(msg string) { p.write(pterm.Info.Sprintln(msg)) }

// Success prints a success message.
func (p *Printer) Success(msg string) { p.write(pterm.Success.Sprintln(msg)) }

// Warn prints a warning, also in quiet mode.
func (p *Printer) Warn(msg string) { _, _ = io.WriteString(p.errOut(), pterm.Warning.Sprintln(msg)) }

// Error prints an error, also in quiet mode.
func (p *Printer) Error(msg string) { _, _ = io.WriteString(p.errOut(), pterm.Error.Sprintln(msg)) }

// Table prints rows with the first row as header.
func (p *Printer) Table(data [][]string) { p.table(data, false) }

// TableBoxed prints rows with the first row as header inside a box.
func (p *Printer) TableBoxed(data [][]string) { p.table(data, true) }

func (p *Printer) table(data [][]string, boxed bool) {
	if len(data) == 0 {
		return
	}
	tp := pterm.DefaultTable.WithHasHeader().WithData(data)
	if boxed {
		tp = tp.WithBoxed()
	}
	s, err := tp.Srender()
	if err != nil {
		p.Warn(fmt.Sprintf("failed to render table: %v", err))
		return
	}
	p.write(s + "\n")
}

// SpinnerStart shows a spinner until the returned stop function is called
// with the final status. In quiet mode nothing is shown.
func (p *Printer) SpinnerStart(text string) func(success bool, msg string) {
	if p.Quiet {
		return func(bool, string) {}
	}
	spinner, err := pterm.DefaultSpinner.WithWriter(p.out()).Start(text)
	if err != nil {
		p.Step(text)
		return func(success bool, msg string) {
			if success {
				p.Success(msg)
			} else {
				p.Error(msg)
			}
		}
	}
	return func(success bool, msg string) {
		if success {
			spinner.Success(msg)
		} else {
			spinner.Fail(msg)
		}
	}
}

// Package-level helpers that print through DefaultPrinter.

func Header(title string)        { DefaultPrinter.Header(title) }
func Section(title string)       { DefaultPrinter.Section(title) }
func Step(msg string)            { DefaultPrinter.Step(msg) }
func Info(msg string)            { DefaultPrinter.Info(msg) }
func Success(msg string)         { DefaultPrinter.Success(msg) }
func Warn(msg string)            { DefaultPrinter.Warn(msg) }
func Error(msg string)           { DefaultPrinter.Error(msg) }
func Table(data [][]string)      { DefaultPrinter.Table(data) }
func TableBoxed(data [][]string) { DefaultPrinter.TableBoxed(data) }

// Color helpers.

func Green(s string) string  { return pterm.Green(s) }
func Yellow(s string) string { return pterm.Yellow(s) }
func Red(s string) string    { return pterm.Red(s) }
func Cyan(s string) string   { return pterm.Cyan(s) }
