//go:build unix

package paths

import "golang.org/x/sys/unix"

// executable defers to access(2) so the kernel applies its own rules for
// the real user and group IDs.
func executable(p string) bool {
	return unix.Access(p, unix.X_OK) == nil
}
