package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external command with stdin. It lets tests stub
// pdftotext.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// CommandConverter shells out to poppler's pdftotext in layout mode. The
// document is streamed through stdin so it never touches the disk.
type CommandConverter struct {
	path    string
	timeout time.Duration
	runner  Runner
}

// NewCommandConverter creates a pdftotext converter. An empty path means
// "pdftotext" from PATH; a zero timeout disables the deadline.
func NewCommandConverter(path string, timeout time.Duration) *CommandConverter {
	return NewCommandConverterWithRunner(path, timeout, execRunner{})
}

// NewCommandConverterWithRunner is NewCommandConverter with a custom runner
func NewCommandConverterWithRunner(path string, timeout time.Duration, runner Runner) *CommandConverter {
	if path == "" {
		path = "pdftotext"
	}
	return &CommandConverter{path: path, timeout: timeout, runner: runner}
}

// Name returns the backend name
func (c *CommandConverter) Name() string { return BackendPdftotext }

// Text runs pdftotext -layout -enc UTF-8 -eol unix - -
func (c *CommandConverter) Text(ctx context.Context, data []byte) (string, error) {
	if err := CheckSignature(data); err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, errb, err := c.runner.Run(ctx, data, c.path, "-layout", "-enc", "UTF-8", "-eol", "unix", "-", "-")
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		if msg != "" {
			return "", fmt.Errorf("pdftotext: %w: %s", err, msg)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	// pages are separated by form feeds
	return strings.ReplaceAll(string(out), "\f", "\n"), nil
}
