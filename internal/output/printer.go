package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Printer writes human-readable pipeline output. App lines describe what the
// tool is doing; Warn lines flag per-item problems that did not stop the
// batch.
type Printer struct {
	out io.Writer
	err io.Writer
}

func NewPrinter(out, errOut io.Writer) *Printer {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = out
	}
	return &Printer{out: out, err: errOut}
}

func (p *Printer) App(text string) {
	if text == "" {
		return
	}
	_, _ = io.WriteString(p.out, ensureTrailingNewline(text))
}

func (p *Printer) Appf(format string, args ...any) {
	p.App(fmt.Sprintf(format, args...))
}

func (p *Printer) Warnf(format string, args ...any) {
	_, _ = io.WriteString(p.err, "Warning: "+ensureTrailingNewline(fmt.Sprintf(format, args...)))
}

// RunCommand echoes the command invocation, runs it, and returns its stdout.
// stderr is folded into the returned error.
func (p *Printer) RunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	p.App("  Running: " + formatCommand(name, args))
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func ensureTrailingNewline(text string) string {
	if strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}

func formatCommand(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(name))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n'\"\\$&|;<>*?[]{}()") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", "'\"'\"'") + "'"
}
