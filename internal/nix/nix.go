package nix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is the evaluator/builder looked up on PATH when none is configured.
const DefaultBinary = "nix"

// ErrNoOutput is returned by Build when the tool succeeds but prints no output path.
var ErrNoOutput = errors.New("no output path printed")

// Tool shells out to the nix command line. Evaluation and building are
// entirely delegated to it.
type Tool struct {
	binary  string
	args    []string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

type Option func(*Tool)

// WithVerbose passes the child's output streams through to stdout/stderr
// instead of discarding them. Nil writers default to the process streams.
func WithVerbose(enabled bool, stdout, stderr io.Writer) Option {
	return func(t *Tool) {
		t.verbose = enabled
		t.stdout = stdout
		t.stderr = stderr
	}
}

// WithArgs sets extra arguments inserted before the subcommand, e.g.
// --extra-experimental-features or --option pairs.
func WithArgs(args ...string) Option {
	return func(t *Tool) {
		t.args = append([]string(nil), args...)
	}
}

func New(binary string, opts ...Option) *Tool {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	t := &Tool{binary: binary}
	for _, apply := range opts {
		if apply != nil {
			apply(t)
		}
	}
	if t.stdout == nil {
		t.stdout = os.Stdout
	}
	if t.stderr == nil {
		t.stderr = os.Stderr
	}
	return t
}

func (t *Tool) Binary() string {
	return t.binary
}

func (t *Tool) command(ctx context.Context, sub ...string) *exec.Cmd {
	args := make([]string, 0, len(t.args)+len(sub))
	args = append(args, t.args...)
	args = append(args, sub...)
	return exec.CommandContext(ctx, t.binary, args...)
}

// Probe reports whether attr evaluates, without building anything. A tool
// that cannot be started and a failed evaluation both report false.
func (t *Tool) Probe(ctx context.Context, attr string) bool {
	cmd := t.command(ctx, "eval", "--raw", attr)
	if t.verbose {
		cmd.Stdout = t.stdout
		cmd.Stderr = t.stderr
	} else {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	}
	return cmd.Run() == nil
}

// Build materializes attr without creating a result symlink and returns the
// first printed output path. Later outputs (e.g. man, doc) are ignored.
func (t *Tool) Build(ctx context.Context, attr string) (string, error) {
	cmd := t.command(ctx, "build", "--no-link", "--print-out-paths", attr)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if t.verbose {
		cmd.Stderr = t.stderr
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := lastLine(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s build %s: %w: %s", t.binary, attr, err, msg)
		}
		return "", fmt.Errorf("%s build %s: %w", t.binary, attr, err)
	}

	out, ok := firstLine(stdout.String())
	if !ok {
		return "", fmt.Errorf("%s build %s: %w", t.binary, attr, ErrNoOutput)
	}
	return out, nil
}

func firstLine(s string) (string, bool) {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, true
		}
	}
	return "", false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
