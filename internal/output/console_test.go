package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() Plan {
	return Plan{
		Attribute:  "nixpkgs#rubyPackages.rails",
		Output:     "/nix/store/abc-rails",
		SearchDirs: []string{"/nix/store/abc-rails/bin", "/nix/store/def-ruby/bin"},
		Executable: "/nix/store/abc-rails/bin/rails",
		Argv:       []string{"rails", "new", "app"},
		Path:       "/nix/store/abc-rails/bin:/nix/store/def-ruby/bin:/usr/bin",
	}
}

func TestPrintPlan_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintPlan(&buf, "text", samplePlan()))

	out := buf.String()
	for _, want := range []string{
		"attribute:  nixpkgs#rubyPackages.rails\n",
		"executable: /nix/store/abc-rails/bin/rails\n",
		"argv:       rails new app\n",
		"  /nix/store/def-ruby/bin\n",
		"PATH=/nix/store/abc-rails/bin:/nix/store/def-ruby/bin:/usr/bin\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPrintPlan_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintPlan(&buf, "json", samplePlan()))

	var got Plan
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), buf.String())
	assert.Equal(t, samplePlan(), got)
}

func TestPrintPlan_JSONEmptySearchDirsIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintPlan(&buf, "json", Plan{Attribute: "nixpkgs#x"}))
	assert.Contains(t, buf.String(), `"search_dirs": []`)
}

func TestPrintPlan_UnsupportedFormat(t *testing.T) {
	err := PrintPlan(&bytes.Buffer{}, "yaml", samplePlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrintPlan_WriteErrorIsReturned(t *testing.T) {
	assert.Error(t, PrintPlan(errWriter{}, "text", samplePlan()))
	assert.Error(t, PrintPlan(errWriter{}, "json", samplePlan()))
}

func TestPrintError(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	PrintError(&buf, errors.New("could not find jq in nixpkgs"))
	assert.Equal(t, "error: could not find jq in nixpkgs\n", buf.String())

	buf.Reset()
	PrintError(&buf, nil)
	assert.Zero(t, buf.Len())
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	assert.Zero(t, buf.Len(), "debug output leaked when not verbose")

	NewLogger(&buf, true).Debug("shown", "attr", "nixpkgs#jq")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "nixpkgs#jq")
}
