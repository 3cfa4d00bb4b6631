package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/augtree/internal/presentation/tui"
	"golang.org/x/term"
)

// WriteDocs renders markdown with glamour when out is a terminal and writes
// it verbatim otherwise, so piped output stays plain markdown.
func WriteDocs(out io.Writer, markdown string) error {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(out, markdown)
		return err
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 0
	}
	rendered, err := tui.NewRenderer(width)(markdown)
	if err != nil {
		return fmt.Errorf("failed to render docs: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
