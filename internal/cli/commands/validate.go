package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate model definitions without compiling",
		Long: `Load every model definition and run structural validation.

All findings are reported in one pass: duplicate names, dangling
relationship references, missing source queries, and self-joining
relationships.`,
		Example: `  # Validate the project
  weft validate`,
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg := getConfig()

	eng, err := createEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	results, err := eng.Validate(cmd.Context())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no model definitions found in %s", cfg.ModelsDir)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, res := range results {
		if res.Report.OK() {
			fmt.Fprintf(out, "  %s: ok\n", res.Model.Name)
			continue
		}
		failed++

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Kind", "Name", "Field", "Reason"})
		for _, f := range res.Report.Findings {
			t.AppendRow(table.Row{f.Kind, f.Name, f.Field, f.Reason})
		}

		fmt.Fprintf(out, "  %s: %d finding(s)\n", res.Model.Name, len(res.Report.Findings))
		t.Render()
	}

	if failed > 0 {
		return fmt.Errorf("validation failed for %d of %d model(s)", failed, len(results))
	}

	fmt.Fprintf(out, "\nAll %d model(s) valid\n", len(results))
	return nil
}
