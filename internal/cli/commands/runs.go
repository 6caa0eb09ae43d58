package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int
	var showArtifacts bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show compilation run history",
		Example: `  # Show the last 10 runs
  weft runs

  # Show the last 3 runs with their artifacts
  weft runs --limit 3 --artifacts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit, showArtifacts)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&showArtifacts, "artifacts", false, "Show artifacts per run")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int, showArtifacts bool) error {
	cfg := getConfig()

	eng, err := createEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	runs, err := eng.Store().ListRuns(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Env", "Status", "Started", "Duration", "Error"})
	for _, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Environment,
			run.Status,
			run.StartedAt.Format(time.RFC3339),
			duration,
			run.Error,
		})
	}
	t.Render()

	if !showArtifacts {
		return nil
	}

	for _, run := range runs {
		arts, err := eng.Store().ListArtifacts(run.ID)
		if err != nil {
			return err
		}
		if len(arts) == 0 {
			continue
		}
		fmt.Fprintf(out, "\nrun %s:\n", shortID(run.ID))
		for _, art := range arts {
			fmt.Fprintf(out, "  %-6s %s (%s)\n", art.Format, art.Path, shortID(art.Digest))
		}
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
