package config

import (
	"errors"
	"fmt"
	"strings"

	"ntrun/internal/flags"
	"ntrun/internal/nix"
	"ntrun/internal/resolve"

	"github.com/google/shlex"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFlake is the flake reference used when none is configured.
const DefaultFlake = "nixpkgs"

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/root.go
	// - environment bindings in Load below
	Resolve Resolve
	Nix     Nix
	Run     Run
	Runtime Runtime
}

type Resolve struct {
	// Flake is the repository reference attributes are looked up in (see --flake).
	Flake string

	// Exact disables the namespace fallback (see --exact).
	Exact bool

	// Name is the attribute name to resolve (see --name).
	// Empty means the program name.
	Name string

	// Namespaces are probed in order after the exact attribute (see --namespace).
	// Values may be provided as repeated flags and/or comma-separated lists.
	Namespaces []string
}

type Nix struct {
	// Binary is the nix executable used for eval and build (see --nix).
	Binary string

	// RawArgs holds extra nix arguments in shell word syntax (see --nix-args).
	RawArgs string

	// Args is RawArgs split into words. Populated by Validate.
	Args []string
}

type Run struct {
	// Program is the executable to locate and run (first positional argument).
	Program string

	// Args are passed to Program unchanged.
	Args []string
}

type Runtime struct {
	// Verbose shows nix output and debug logging (see --verbose).
	Verbose bool

	// DryRun prints what would be executed instead of executing it (see --dry-run).
	DryRun bool

	// Format selects the dry-run output format (see --format).
	// Allowed values: text, json.
	Format string
}

func New() *Config {
	return &Config{
		Resolve: Resolve{
			Flake:      DefaultFlake,
			Namespaces: append([]string(nil), resolve.DefaultNamespaces...),
		},
		Nix: Nix{
			Binary: nix.DefaultBinary,
		},
		Runtime: Runtime{
			Format: "text",
		},
	}
}

// Load fills cfg from the flag set and NTRUN_* environment variables. Flags
// set on the command line win over the environment, which wins over the
// defaults from New.
func Load(fs *pflag.FlagSet, cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(flags.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	for _, key := range []string{flags.FlagFlake, flags.FlagExact, flags.FlagVerbose, flags.FlagNix, flags.FlagNixArgs} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	if err := v.BindEnv(flags.FlagNamespace, flags.EnvNamespaces); err != nil {
		return fmt.Errorf("bind env for %s: %w", flags.FlagNamespace, err)
	}

	// IsSet is true only for flags given on the command line and for
	// non-empty environment variables; everything else keeps the value from New.
	if v.IsSet(flags.FlagFlake) {
		cfg.Resolve.Flake = v.GetString(flags.FlagFlake)
	}
	if v.IsSet(flags.FlagExact) {
		cfg.Resolve.Exact = v.GetBool(flags.FlagExact)
	}
	if v.IsSet(flags.FlagName) {
		cfg.Resolve.Name = v.GetString(flags.FlagName)
	}
	if v.IsSet(flags.FlagNamespace) {
		cfg.Resolve.Namespaces = v.GetStringSlice(flags.FlagNamespace)
	}
	if v.IsSet(flags.FlagNix) {
		cfg.Nix.Binary = v.GetString(flags.FlagNix)
	}
	if v.IsSet(flags.FlagNixArgs) {
		cfg.Nix.RawArgs = v.GetString(flags.FlagNixArgs)
	}
	if v.IsSet(flags.FlagVerbose) {
		cfg.Runtime.Verbose = v.GetBool(flags.FlagVerbose)
	}
	if v.IsSet(flags.FlagDryRun) {
		cfg.Runtime.DryRun = v.GetBool(flags.FlagDryRun)
	}
	if v.IsSet(flags.FlagFormat) {
		cfg.Runtime.Format = v.GetString(flags.FlagFormat)
	}
	return nil
}

func (c *Config) Validate() error {
	c.Resolve.Flake = strings.TrimSpace(c.Resolve.Flake)
	if c.Resolve.Flake == "" {
		return errors.New("--flake must not be empty")
	}
	if strings.Contains(c.Resolve.Flake, "#") {
		return fmt.Errorf("invalid --flake value %q: must not contain an attribute path ('#')", c.Resolve.Flake)
	}

	if strings.TrimSpace(c.Run.Program) == "" {
		return errors.New("a program name is required")
	}
	// The program is looked up inside the search dirs, never as a path.
	if strings.ContainsRune(c.Run.Program, '/') {
		return fmt.Errorf("invalid program name %q: must not contain '/'", c.Run.Program)
	}

	c.Resolve.Name = strings.TrimSpace(c.Resolve.Name)
	if c.Resolve.Name == "" {
		c.Resolve.Name = c.Run.Program
	}
	if strings.ContainsAny(c.Resolve.Name, "# \t\n") {
		return fmt.Errorf("invalid package name %q", c.Resolve.Name)
	}

	// Empty entries ("a,,b", a trailing comma) are dropped, not rejected.
	c.Resolve.Namespaces = uniqueInOrder(splitCommaList(c.Resolve.Namespaces))

	c.Nix.Binary = strings.TrimSpace(c.Nix.Binary)
	if c.Nix.Binary == "" {
		return errors.New("--nix must not be empty")
	}
	args, err := shlex.Split(c.Nix.RawArgs)
	if err != nil {
		return fmt.Errorf("invalid --nix-args value: %w", err)
	}
	c.Nix.Args = args

	c.Runtime.Format = normalizeEnumValue(c.Runtime.Format)
	if c.Runtime.Format == "" {
		c.Runtime.Format = "text"
	}
	if c.Runtime.Format != "text" && c.Runtime.Format != "json" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json)", c.Runtime.Format)
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// uniqueInOrder drops repeats, keeping the first occurrence so the probe
// order stays as declared.
func uniqueInOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
