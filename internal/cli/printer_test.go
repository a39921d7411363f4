package cli

import (
	"bytes"
	"strings"
	"testing"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Printer{Writer: &buf, ErrWriter: &buf}, &buf
}

func TestPrintTable(t *testing.T) {
	p, buf := newTestPrinter()
	p.Table([][]string{
		{"Step", "Reference"},
		{"Pull", "nginx:latest"},
		{"Push", "nexus.example.com/repository/docker/nginx:latest"},
	})

	if !strings.Contains(buf.String(), "nexus.example.com/repository/docker/nginx:latest") {
		t.Errorf("table output missing row: %q", buf.String())
	}
}

func TestPrintTableBoxed(t *testing.T) {
	p, buf := newTestPrinter()
	p.TableBoxed([][]string{
		{"Field", "Value"},
		{"Run ID", "run-1"},
	})

	if !strings.Contains(buf.String(), "run-1") {
		t.Errorf("boxed table output missing row: %q", buf.String())
	}
}

func TestPrintTableEmpty(t *testing.T) {
	p, buf := newTestPrinter()
	p.Table([][]string{})
	p.TableBoxed([][]string{})

	if buf.Len() != 0 {
		t.Errorf("empty table should print nothing, got %q", buf.String())
	}
}

func TestPrinterColors(t *testing.T) {
	// Color functions should return non-empty strings
	if Green("test") == "" {
		t.Error("Green should return non-empty string")
	}
	if Yellow("test") == "" {
		t.Error("Yellow should return non-empty string")
	}
	if Red("test") == "" {
		t.Error("Red should return non-empty string")
	}
	if Cyan("test") == "" {
		t.Error("Cyan should return non-empty string")
	}
}

func TestPrinterQuietMode(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &Printer{Quiet: true, Writer: &out, ErrWriter: &errOut}

	p.Section("test")
	p.Step("test")
	p.Info("test")
	p.Success("test")
	p.Println("test")
	if out.Len() != 0 {
		t.Errorf("quiet printer wrote %q", out.String())
	}

	p.Warn("careful")
	p.Error("broken")
	if !strings.Contains(errOut.String(), "careful") || !strings.Contains(errOut.String(), "broken") {
		t.Errorf("warnings and errors must print in quiet mode, got %q", errOut.String())
	}
}

func TestPrinterSpinnerQuietMode(t *testing.T) {
	p := &Printer{Quiet: true}
	stop := p.SpinnerStart("working")
	stop(true, "done")
}

func TestPrinterPrintf(t *testing.T) {
	p, buf := newTestPrinter()
	p.Printf("value=%d\n", 1)

	if buf.String() != "value=1\n" {
		t.Errorf("Printf wrote %q", buf.String())
	}
}
