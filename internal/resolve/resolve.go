package resolve

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// DefaultNamespaces are the attribute sets probed, in this order, when a
// program is not a top-level attribute of the flake.
var DefaultNamespaces = []string{
	"rubyPackages",
	"nodePackages",
	"pythonPackages",
	"haskellPackages",
}

// Prober reports whether an attribute path evaluates.
type Prober interface {
	Probe(ctx context.Context, attr string) bool
}

// Request describes one lookup. Repo is the flake reference, Name the
// attribute name to look up.
type Request struct {
	Repo  string
	Name  string
	Exact bool
}

// Attribute formats the exact form repo#name.
func Attribute(repo, name string) string {
	return fmt.Sprintf("%s#%s", repo, name)
}

// NamespacedAttribute formats repo#namespace.name.
func NamespacedAttribute(repo, namespace, name string) string {
	return fmt.Sprintf("%s#%s.%s", repo, namespace, name)
}

type Resolver struct {
	prober     Prober
	namespaces []string
	logger     *log.Logger
}

// New returns a Resolver probing namespaces in the given order. The slice is
// copied; a nil logger disables logging.
func New(prober Prober, namespaces []string, logger *log.Logger) *Resolver {
	return &Resolver{
		prober:     prober,
		namespaces: append([]string(nil), namespaces...),
		logger:     logger,
	}
}

func (r *Resolver) Namespaces() []string {
	return append([]string(nil), r.namespaces...)
}

// Resolve returns the first attribute path that evaluates. The exact form
// always goes first; namespaces follow in declared order unless req.Exact is
// set. A false result means nothing matched and is not an error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, bool) {
	for _, attr := range r.candidates(req) {
		if ctx.Err() != nil {
			return "", false
		}
		ok := r.prober.Probe(ctx, attr)
		r.debug("probe", "attr", attr, "ok", ok)
		if ok {
			return attr, true
		}
	}
	return "", false
}

func (r *Resolver) candidates(req Request) []string {
	out := []string{Attribute(req.Repo, req.Name)}
	if req.Exact {
		return out
	}
	for _, ns := range r.namespaces {
		out = append(out, NamespacedAttribute(req.Repo, ns, req.Name))
	}
	return out
}

func (r *Resolver) debug(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}
