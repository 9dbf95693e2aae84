//go:build !unix

package launch

func execve(string, []string, []string) error {
	return ErrUnsupported
}
