package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/augtree"
	"github.com/aretw0/augtree/internal/presentation/tui"
	"github.com/aretw0/augtree/pkg/adapters/loam"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/host"
	"github.com/aretw0/augtree/pkg/ports"
)

// ErrFailed is returned once a failure has already been reported on the
// output, so the caller only has to set the exit code.
var ErrFailed = errors.New("run failed")

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	// Args are joined one per line into the command block.
	Args []string
	// File reads the block from a file, or from Stdin when "-".
	File string
	// Repo and Playbook run a stored block instead.
	Repo     string
	Playbook string
	// Root overrides the configured filesystem root for this run.
	Root string
	JSON bool

	Stdin  io.Reader
	Stdout io.Writer
}

// ReadBlock resolves the command block from the arguments, a file or stdin.
func ReadBlock(opts RunOptions) (string, error) {
	if opts.File != "" {
		if len(opts.Args) > 0 {
			return "", fmt.Errorf("commands and --file cannot be used together")
		}
		if opts.File == "-" {
			data, err := io.ReadAll(opts.Stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read commands from stdin: %w", err)
			}
			return string(data), nil
		}
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", fmt.Errorf("failed to read commands: %w", err)
		}
		return string(data), nil
	}
	if len(opts.Args) == 0 {
		return "", fmt.Errorf("no commands given (pass them as arguments, or use --file)")
	}
	return strings.Join(opts.Args, "\n"), nil
}

// Run executes a command block or a playbook and writes the report.
func Run(ctx context.Context, eng *augtree.Engine, opts RunOptions) error {
	var (
		report *domain.Report
		err    error
	)
	if opts.Playbook != "" {
		var source *loam.Playbooks
		source, err = loam.Open(opts.Repo)
		if err != nil {
			return err
		}
		report, err = eng.RunPlaybook(ctx, source, opts.Playbook)
	} else {
		var block string
		block, err = ReadBlock(opts)
		if err != nil {
			return err
		}
		report, err = eng.RunWith(ctx, block, ports.OpenOptions{Root: opts.Root})
	}
	return writeReport(opts.Stdout, report, err, opts.JSON)
}

func writeReport(w io.Writer, report *domain.Report, err error, jsonMode bool) error {
	if jsonMode {
		var resp host.Response
		if err != nil {
			resp = host.Fail(err)
		} else {
			resp = host.Respond(report, false)
		}
		return respond(w, resp)
	}

	if err != nil {
		fmt.Fprint(w, tui.RenderError(err))
		return ErrFailed
	}
	fmt.Fprint(w, tui.RenderReport(report))
	return nil
}

// Module runs a host invocation read as a JSON object from r and writes the
// JSON response to w, the way a configuration-management module does.
func Module(ctx context.Context, h *host.Host, r io.Reader, w io.Writer) error {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return respond(w, host.Fail(fmt.Errorf("failed to decode module arguments: %w", err)))
	}
	return Invoke(ctx, h, raw, w)
}

// Invoke runs one host invocation and writes its JSON response to w.
func Invoke(ctx context.Context, h *host.Host, raw map[string]any, w io.Writer) error {
	return respond(w, h.RunRaw(ctx, raw))
}

func respond(w io.Writer, resp host.Response) error {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return err
	}
	if resp.Failed {
		return ErrFailed
	}
	return nil
}

// Check parses a block without running it and writes it in canonical form.
func Check(block string, w io.Writer) error {
	seq, err := augtree.Parse(block)
	if err != nil {
		fmt.Fprint(w, tui.RenderError(err))
		return ErrFailed
	}
	if len(seq) > 0 {
		fmt.Fprintln(w, augtree.Format(seq))
	}
	printSystemMessage(w, "%d command(s) ok.", len(seq))
	return nil
}

// ListPlaybooks writes the name and description of every playbook in source.
func ListPlaybooks(ctx context.Context, source ports.PlaybookSource, w io.Writer) error {
	names, err := source.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		pb, err := source.Get(ctx, name)
		if err != nil {
			return err
		}
		if pb.Description == "" {
			fmt.Fprintln(w, name)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", name, pb.Description)
	}
	return nil
}
