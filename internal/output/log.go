package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns the diagnostic logger. Verbose runs log every probe,
// build and search step at debug level; otherwise only warnings and above
// are shown.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "ntrun",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
