package cli

import (
	"context"
	"os"

	"ntrun/internal/config"
	"ntrun/internal/engine"
	"ntrun/internal/flags"
	"ntrun/internal/launch"
	"ntrun/internal/nix"
	"ntrun/internal/output"
	"ntrun/internal/resolve"

	"github.com/spf13/cobra"
)

// runFunc executes a validated configuration. Tests replace it to observe
// flag handling without touching nix.
type runFunc func(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error

var rootCmd = newRootCmd(runEngine)

func newRootCmd(run runFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ntrun [flags] <program> [args...]",
		Short: "Build a program from a Nix flake and run it",
		Long: `ntrun finds the package providing a program in a Nix flake, builds it, and
runs the program in place with the package's propagated build inputs on PATH.

The program name is looked up as <flake>#<name> first. If that does not
evaluate, it is tried under each namespace in order (<flake>#<namespace>.<name>)
unless --exact is set. The first attribute that evaluates is built.

Everything after the program name is passed to the program unchanged.

Environment:
  NTRUN_FLAKE, NTRUN_EXACT, NTRUN_VERBOSE, NTRUN_NIX, NTRUN_NIX_ARGS and
  NTRUN_NAMESPACES (comma-separated) override the matching flag defaults.
  Flags given on the command line take precedence.

Exit codes:
  1 = the program could not be resolved, built, found or executed
  2 = invalid usage or configuration
  otherwise the exit code of the program

Examples:
  # Run jq from nixpkgs
  ntrun jq -r .name package.json

  # rails is not top-level; it is found as nixpkgs#rubyPackages.rails
  ntrun rails new blog

  # Package and program names differ
  ntrun --name ripgrep rg TODO

  # Show what would run without running it
  ntrun --dry-run --format json cowsay hello`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			if err := config.Load(cmd.Flags(), cfg); err != nil {
				return err
			}
			cfg.Run.Program = args[0]
			cfg.Run.Args = args[1:]
			if err := cfg.Validate(); err != nil {
				return err
			}
			// Past validation, failures are about the program, not its invocation.
			cmd.SilenceUsage = true
			return run(cmd.Context(), cmd, cfg)
		},
		SilenceErrors: true,
	}

	f := cmd.Flags()
	// Stop at the first positional so the program's own flags pass through.
	f.SetInterspersed(false)

	f.BoolP(flags.FlagVerbose, "v", false, "Show nix output and debug logging")
	f.StringP(flags.FlagFlake, "f", config.DefaultFlake, "Flake reference to look the program up in")
	f.BoolP(flags.FlagExact, "e", false, "Only try <flake>#<name>; skip the namespace fallback")
	f.StringP(flags.FlagName, "n", "", "Package name to resolve (default: the program name)")
	f.StringSlice(flags.FlagNamespace, resolve.DefaultNamespaces, "Namespaces tried in order after the exact attribute (repeatable; comma-separated accepted)")
	f.String(flags.FlagNix, nix.DefaultBinary, "nix executable used to evaluate and build")
	f.String(flags.FlagNixArgs, "", "Extra arguments passed to nix before the subcommand, in shell word syntax")
	f.Bool(flags.FlagDryRun, false, "Print the resolved attribute, executable and PATH instead of running")
	f.String(flags.FlagFormat, "text", "Dry-run output format: text|json")

	return cmd
}

func runEngine(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := output.NewLogger(cmd.ErrOrStderr(), cfg.Runtime.Verbose)
	logger.Debug("config", "flake", cfg.Resolve.Flake, "name", cfg.Resolve.Name, "exact", cfg.Resolve.Exact, "namespaces", cfg.Resolve.Namespaces)

	tool := nix.New(cfg.Nix.Binary,
		nix.WithArgs(cfg.Nix.Args...),
		nix.WithVerbose(cfg.Runtime.Verbose, cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)
	resolver := resolve.New(tool, cfg.Resolve.Namespaces, logger)
	eng := engine.NewEngine(resolver, tool, launch.New(),
		engine.WithLogger(logger),
		engine.WithStdout(cmd.OutOrStdout()),
	)
	return eng.Run(ctx, cfg)
}

// Execute runs the root command and exits with engine.ExitCode. It returns
// only if the program could not be exec'd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		output.PrintError(os.Stderr, err)
		os.Exit(engine.ExitCode(err))
	}
}
