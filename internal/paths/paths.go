// Package paths derives the directories searched for a built program and
// picks the executable out of them.
//
// Existence and permission checks are point-in-time. A directory or file can
// disappear or change mode between Collect/Locate and the exec that follows;
// the exec error is the only signal of that.
package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// PropagatedBuildInputs is the manifest, relative to a build output, listing
// store paths whose binaries the package expects at runtime.
const PropagatedBuildInputs = "nix-support/propagated-build-inputs"

// ErrNotFound is returned by Locate when no directory holds an executable
// with the requested name.
var ErrNotFound = errors.New("executable not found")

// Collect returns out/bin followed by the bin directory of every propagated
// build input, in manifest order. Only existing directories are kept. A
// missing or unreadable manifest contributes nothing.
func Collect(out string) []string {
	var dirs []string
	if own := filepath.Join(out, "bin"); isDir(own) {
		dirs = append(dirs, own)
	}

	b, err := os.ReadFile(filepath.Join(out, PropagatedBuildInputs))
	if err != nil {
		return dirs
	}
	return append(dirs, propagatedBinDirs(string(b))...)
}

func propagatedBinDirs(manifest string) []string {
	var dirs []string
	for _, p := range strings.Fields(manifest) {
		if bin := filepath.Join(p, "bin"); isDir(bin) {
			dirs = append(dirs, bin)
		}
	}
	return dirs
}

// Locate returns dir/name for the first dir in which name is a non-directory
// entry executable by the current process.
func Locate(dirs []string, name string) (string, error) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if executable(candidate) && !isDir(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
