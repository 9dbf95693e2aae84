package cli

import (
	"bytes"
	"context"
	"testing"

	"ntrun/internal/config"
	"ntrun/internal/engine"
	"ntrun/internal/resolve"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureRun executes a fresh root command with args and returns the
// validated config it would have run.
func captureRun(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	for _, k := range []string{"NTRUN_FLAKE", "NTRUN_EXACT", "NTRUN_VERBOSE", "NTRUN_NIX", "NTRUN_NIX_ARGS", "NTRUN_NAMESPACES"} {
		t.Setenv(k, "")
	}

	var got *config.Config
	cmd := newRootCmd(func(_ context.Context, _ *cobra.Command, cfg *config.Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return got, err
}

func TestRoot_ProgramAndArgsPassThrough(t *testing.T) {
	cfg, err := captureRun(t, "-v", "jq", "-r", "--exact", "-n", "x")
	require.NoError(t, err)

	assert.True(t, cfg.Runtime.Verbose, "expected verbose from -v before the program")
	assert.False(t, cfg.Resolve.Exact, "--exact after the program must not be parsed as an ntrun flag")
	assert.Equal(t, "jq", cfg.Run.Program)
	assert.Equal(t, []string{"-r", "--exact", "-n", "x"}, cfg.Run.Args)
	assert.Equal(t, "jq", cfg.Resolve.Name)
}

func TestRoot_Defaults(t *testing.T) {
	cfg, err := captureRun(t, "hello")
	require.NoError(t, err)

	assert.Equal(t, "nixpkgs", cfg.Resolve.Flake)
	assert.Equal(t, resolve.DefaultNamespaces, cfg.Resolve.Namespaces)
	assert.Equal(t, "nix", cfg.Nix.Binary)
	assert.Empty(t, cfg.Nix.Args)
	assert.Empty(t, cfg.Run.Args)
}

func TestRoot_AllFlags(t *testing.T) {
	cfg, err := captureRun(t,
		"--flake", "github:NixOS/nixpkgs/nixos-24.05",
		"-e",
		"--name", "ripgrep",
		"--namespace", "perlPackages,luaPackages",
		"--namespace", "perlPackages",
		"--nix", "/run/current-system/sw/bin/nix",
		"--nix-args", "--option sandbox false",
		"--dry-run",
		"--format", "JSON",
		"--", "rg", "TODO",
	)
	require.NoError(t, err)

	assert.Equal(t, "github:NixOS/nixpkgs/nixos-24.05", cfg.Resolve.Flake)
	assert.True(t, cfg.Resolve.Exact)
	assert.Equal(t, "ripgrep", cfg.Resolve.Name)
	assert.Equal(t, []string{"perlPackages", "luaPackages"}, cfg.Resolve.Namespaces)
	assert.Equal(t, []string{"--option", "sandbox", "false"}, cfg.Nix.Args)
	assert.Equal(t, "/run/current-system/sw/bin/nix", cfg.Nix.Binary)
	assert.True(t, cfg.Runtime.DryRun)
	assert.Equal(t, "json", cfg.Runtime.Format)
	assert.Equal(t, "rg", cfg.Run.Program)
	assert.Equal(t, []string{"TODO"}, cfg.Run.Args)
}

func TestRoot_RequiresProgram(t *testing.T) {
	_, err := captureRun(t, "--exact")
	require.Error(t, err)
	assert.Equal(t, 2, engine.ExitCode(err))
}

func TestRoot_InvalidFlake(t *testing.T) {
	_, err := captureRun(t, "--flake", "nixpkgs#jq", "jq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--flake")
	assert.Equal(t, 2, engine.ExitCode(err))
}

func TestRoot_RejectsProgramPath(t *testing.T) {
	cfg, err := captureRun(t, "-n", "ripgrep", "../../../usr/bin/env")
	require.Error(t, err)
	assert.Nil(t, cfg, "run must not be called")
	assert.Contains(t, err.Error(), "invalid program name")
	assert.Equal(t, 2, engine.ExitCode(err))
}

func TestRoot_RunErrorPropagates(t *testing.T) {
	want := &engine.RunError{Kind: engine.KindResolve, Name: "nope", Repo: "nixpkgs"}
	cmd := newRootCmd(func(context.Context, *cobra.Command, *config.Config) error { return want })
	cmd.SetArgs([]string{"nope"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.Same(t, want, err)
	assert.Equal(t, 1, engine.ExitCode(err))
}

func TestSetBuildInfo_Version(t *testing.T) {
	SetBuildInfo("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetBuildInfo("dev", "unknown", "unknown") })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ntrun 1.2.3 (abc123) 2026-01-01\n", out.String())

	v, c, d := BuildInfo()
	assert.Equal(t, []string{"1.2.3", "abc123", "2026-01-01"}, []string{v, c, d})
}
