package launch

import (
	"errors"
	"strings"
)

// PathVar is the environment variable holding the executable search path.
const PathVar = "PATH"

// SearchPath joins dirs with ':' and appends inherited when it is non-empty.
func SearchPath(dirs []string, inherited string) string {
	parts := append([]string(nil), dirs...)
	if inherited != "" {
		parts = append(parts, inherited)
	}
	return strings.Join(parts, ":")
}

// Environ returns a copy of env with PATH set to path. Every existing PATH
// entry is dropped so the child sees exactly one.
func Environ(env []string, path string) []string {
	prefix := PathVar + "="
	out := make([]string, 0, len(env)+1)
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			continue
		}
		out = append(out, e)
	}
	return append(out, prefix+path)
}

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// ErrUnsupported is returned by the default exec on platforms without execve.
var ErrUnsupported = errors.New("process replacement is not supported on this platform")

type Launcher struct {
	exec ExecFunc
}

type Option func(*Launcher)

// WithExec swaps the process replacement call; tests use it to observe the
// final argv and environment.
func WithExec(fn ExecFunc) Option {
	return func(l *Launcher) {
		l.exec = fn
	}
}

func New(opts ...Option) *Launcher {
	l := &Launcher{exec: execve}
	for _, apply := range opts {
		if apply != nil {
			apply(l)
		}
	}
	return l
}

// Exec runs exe with args in place of the current process. argv[0] is the
// program name as the user typed it. On success it does not return.
func (l *Launcher) Exec(exe, name string, args []string, env []string) error {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	argv = append(argv, args...)
	return l.exec(exe, argv, env)
}
