package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/renderer"
)

// diffOptions controls what runDiff prints per step.
type diffOptions struct {
	showOps  bool
	showHTML bool
}

func diffCmd(flags *globalFlags) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff <script.yaml> [script.yaml...]",
		Short: "Render fixture scripts and print the host operations",
		Long: `Render every step of one or more fixture scripts into an in-memory
host, in order, and print the host operations each step produced.

A script is a multi-document YAML file. Each document has a name and a
tree; steps after the first are reconciled against the previous one.

Examples:
  reconcile diff testdata/rotate.yaml
  reconcile diff --ops before.yaml after.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			var steps []fixture.Step
			for _, path := range args {
				s, err := fixture.LoadFile(path)
				if err != nil {
					return err
				}
				steps = append(steps, s.Steps...)
			}
			return runDiff(cmd.OutOrStdout(), newLogger(cfg), steps, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.showOps, "ops", false, "List every host operation")
	cmd.Flags().BoolVar(&opts.showHTML, "html", true, "Print the rendered HTML after each step")

	return cmd
}

// runDiff renders steps into one container and reports each step's ops.
func runDiff(out io.Writer, logger *slog.Logger, steps []fixture.Step, opts diffOptions) error {
	mem := host.NewMemory()
	container := mem.NewContainer("div")
	rec := host.NewRecorder(mem, host.WithOpLogger(logger))
	rec.Attach(container)

	var diags []renderer.Diagnostic
	r := renderer.New(rec,
		renderer.WithLogger(logger),
		renderer.WithDiagnostics(func(d renderer.Diagnostic) { diags = append(diags, d) }),
	)

	for i, step := range steps {
		rec.Reset()
		diags = diags[:0]

		r.Render(step.Tree, container)
		r.Flush()

		fmt.Fprintf(out, "%d. %s: %s\n", i+1, step.Name, rec.Summary())
		if opts.showOps {
			for _, op := range rec.Ops() {
				fmt.Fprintf(out, "     %s\n", op)
			}
		}
		for _, d := range diags {
			fmt.Fprintf(out, "   %s %s: %s\n", styled("33", "⚠"), d.Code, d.Message)
		}
		if opts.showHTML {
			fmt.Fprintf(out, "   %s\n", container.InnerHTML())
		}
	}
	return nil
}
