package flags

// Package flags defines canonical CLI flag names shared by the Cobra wiring
// and the viper keys used for environment overrides.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringP(flags.FlagFlake, "f", "nixpkgs", "...")
//	v.GetString(flags.FlagFlake)
const (
	// Resolution
	FlagFlake     = "flake"
	FlagExact     = "exact"
	FlagName      = "name"
	FlagNamespace = "namespace"

	// Nix invocation
	FlagNix     = "nix"
	FlagNixArgs = "nix-args"

	// Runtime
	FlagVerbose = "verbose"
	FlagDryRun  = "dry-run"
	FlagFormat  = "format"
)

// EnvPrefix prefixes every environment override, e.g. NTRUN_FLAKE.
const EnvPrefix = "NTRUN"

// EnvNamespaces is the environment override for --namespace. It is plural
// because it carries the whole list.
const EnvNamespaces = EnvPrefix + "_NAMESPACES"
