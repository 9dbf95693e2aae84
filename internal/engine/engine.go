package engine

import (
	"context"
	"io"
	"os"
	"strings"

	"ntrun/internal/config"
	"ntrun/internal/launch"
	"ntrun/internal/output"
	"ntrun/internal/paths"
	"ntrun/internal/resolve"

	"github.com/charmbracelet/log"
)

// Resolver maps a program name to an attribute path.
type Resolver interface {
	Resolve(ctx context.Context, req resolve.Request) (string, bool)
}

// Builder materializes an attribute path and returns its output location.
type Builder interface {
	Build(ctx context.Context, attr string) (string, error)
}

// Executor replaces the current process. It returns only on failure.
type Executor interface {
	Exec(exe, name string, args []string, env []string) error
}

type Engine struct {
	resolver Resolver
	builder  Builder
	executor Executor
	logger   *log.Logger
	stdout   io.Writer
	environ  func() []string
}

type Option func(*Engine)

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStdout sets where dry-run plans are printed.
func WithStdout(w io.Writer) Option {
	return func(e *Engine) {
		e.stdout = w
	}
}

// WithEnviron sets the environment the child inherits, PATH included.
func WithEnviron(fn func() []string) Option {
	return func(e *Engine) {
		e.environ = fn
	}
}

func NewEngine(resolver Resolver, builder Builder, executor Executor, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		builder:  builder,
		executor: executor,
		stdout:   os.Stdout,
		environ:  os.Environ,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(e)
		}
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Run resolves, builds, locates and executes the program described by cfg.
// Stages run strictly in sequence; the first failure ends the run with a
// *RunError. On a successful exec Run does not return.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) error {
	program := cfg.Run.Program
	name := cfg.Resolve.Name
	if name == "" {
		name = program
	}

	attr, ok := e.resolver.Resolve(ctx, resolve.Request{
		Repo:  cfg.Resolve.Flake,
		Name:  name,
		Exact: cfg.Resolve.Exact,
	})
	if !ok {
		// A canceled lookup is not a missing package.
		return &RunError{Kind: KindResolve, Name: name, Repo: cfg.Resolve.Flake, Err: ctx.Err()}
	}
	e.logger.Debug("resolved", "attr", attr)

	out, err := e.builder.Build(ctx, attr)
	if err != nil {
		return &RunError{Kind: KindBuild, Name: name, Repo: cfg.Resolve.Flake, Attribute: attr, Err: err}
	}
	e.logger.Debug("built", "attr", attr, "output", out)

	dirs := paths.Collect(out)
	e.logger.Debug("collected search dirs", "count", len(dirs), "dirs", dirs)

	exe, err := paths.Locate(dirs, program)
	if err != nil {
		return &RunError{Kind: KindNoExecutable, Name: program, Repo: cfg.Resolve.Flake, Attribute: attr, Output: out, Err: err}
	}
	e.logger.Debug("located executable", "path", exe)

	env := e.environ()
	searchPath := launch.SearchPath(dirs, lookupEnv(env, launch.PathVar))
	childEnv := launch.Environ(env, searchPath)

	if cfg.Runtime.DryRun {
		err := output.PrintPlan(e.stdout, cfg.Runtime.Format, output.Plan{
			Attribute:  attr,
			Output:     out,
			SearchDirs: dirs,
			Executable: exe,
			Argv:       append([]string{program}, cfg.Run.Args...),
			Path:       searchPath,
		})
		if err != nil {
			return &RunError{Kind: KindReport, Name: program, Repo: cfg.Resolve.Flake, Attribute: attr, Output: out, Err: err}
		}
		return nil
	}

	if err := e.executor.Exec(exe, program, cfg.Run.Args, childEnv); err != nil {
		return &RunError{Kind: KindLaunch, Name: program, Repo: cfg.Resolve.Flake, Attribute: attr, Output: out, Err: err}
	}
	return nil
}

// lookupEnv returns the first value of key in env, the entry getenv would
// report.
func lookupEnv(env []string, key string) string {
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, key+"="); ok {
			return v
		}
	}
	return ""
}
