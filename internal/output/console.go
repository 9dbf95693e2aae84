package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Plan is what a run would execute. It is printed instead of executing
// when --dry-run is set.
type Plan struct {
	Attribute  string   `json:"attribute"`
	Output     string   `json:"output"`
	SearchDirs []string `json:"search_dirs"`
	Executable string   `json:"executable"`
	Argv       []string `json:"argv"`
	Path       string   `json:"path"`
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}

// PrintPlan writes p in the given format ("text" or "json").
func PrintPlan(w io.Writer, format string, p Plan) error {
	if w == nil {
		w = os.Stdout
	}
	if p.SearchDirs == nil {
		p.SearchDirs = []string{}
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(p); err != nil {
			return err
		}
		return flushIfPossible(w)
	case "", "text":
		var b strings.Builder
		fmt.Fprintf(&b, "attribute:  %s\n", p.Attribute)
		fmt.Fprintf(&b, "output:     %s\n", p.Output)
		fmt.Fprintf(&b, "executable: %s\n", p.Executable)
		fmt.Fprintf(&b, "argv:       %s\n", strings.Join(p.Argv, " "))
		b.WriteString("search dirs:\n")
		for _, d := range p.SearchDirs {
			fmt.Fprintf(&b, "  %s\n", d)
		}
		fmt.Fprintf(&b, "PATH=%s\n", p.Path)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return flushIfPossible(w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// PrintError writes "error: <err>" with the label in red. Color follows
// fatih/color's terminal detection.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if w == nil {
		w = os.Stderr
	}
	label := color.New(color.FgRed, color.Bold).Sprint("error:")
	_, _ = fmt.Fprintf(w, "%s %v\n", label, err)
	_ = flushIfPossible(w)
}
