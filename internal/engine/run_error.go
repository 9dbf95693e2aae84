package engine

import (
	"errors"
	"fmt"
)

// Kind classifies why a run stopped.
type Kind int

const (
	// KindResolve: neither the exact attribute nor any namespace evaluated.
	KindResolve Kind = iota + 1
	// KindBuild: nix build failed to start, exited non-zero or printed nothing.
	KindBuild
	// KindNoExecutable: no search directory holds an executable with the program name.
	KindNoExecutable
	// KindLaunch: the final exec failed.
	KindLaunch
	// KindReport: the dry-run plan could not be written.
	KindReport
)

func (k Kind) String() string {
	switch k {
	case KindResolve:
		return "resolve"
	case KindBuild:
		return "build"
	case KindNoExecutable:
		return "no-executable"
	case KindLaunch:
		return "launch"
	case KindReport:
		return "report"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RunError is the error returned by Engine.Run for every failure after
// configuration has been accepted.
type RunError struct {
	Kind      Kind
	Name      string
	Repo      string
	Attribute string
	Output    string
	Err       error
}

func (e *RunError) Error() string {
	switch e.Kind {
	case KindResolve:
		if e.Err != nil {
			return fmt.Sprintf("resolving %s in %s: %v", e.Name, e.Repo, e.Err)
		}
		return fmt.Sprintf("could not find %s in %s", e.Name, e.Repo)
	case KindBuild:
		return fmt.Sprintf("failed to build %s: %v", e.Attribute, e.Err)
	case KindNoExecutable:
		return fmt.Sprintf("no executable named %q in %s or its propagated build inputs", e.Name, e.Output)
	case KindLaunch:
		return fmt.Sprintf("failed to exec %s: %v", e.Name, e.Err)
	case KindReport:
		return fmt.Sprintf("failed to print plan for %s: %v", e.Attribute, e.Err)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "run failed"
	}
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Is matches another *RunError of the same Kind, so callers can test with
// errors.Is(err, &RunError{Kind: KindBuild}).
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *RunError in err's chain, or 0.
func KindOf(err error) Kind {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

// ExitCode maps a run result to the process exit status.
//
// Exit code contract:
// 0 = the program was exec'd (never observed) or a dry run succeeded
// 1 = run failure (resolve, build, no executable, exec, dry-run report)
// 2 = usage or configuration error (nothing was probed)
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if KindOf(err) != 0 {
		return 1
	}
	return 2
}
