package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/model"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var showGraph bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models, tables, and measures",
		Long: `List every model definition with its tables, measures, and relationships.

Use --graph to show the relationship topology: which tables are facts
(only outgoing relationships), dimensions (only incoming), or isolated.`,
		Example: `  # List all models
  weft list

  # Show relationship topology
  weft list --graph`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, showGraph)
		},
	}

	cmd.Flags().BoolVar(&showGraph, "graph", false, "Show relationship topology")

	return cmd
}

func runList(cmd *cobra.Command, showGraph bool) error {
	cfg := getConfig()

	eng, err := createEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	models, err := eng.Load()
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("no model definitions found in %s", cfg.ModelsDir)
	}

	out := cmd.OutOrStdout()
	for _, m := range models {
		fmt.Fprintf(out, "model %s\n", m.Name)

		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "Mode", "Columns", "Measures"})
		for _, tbl := range m.Tables() {
			t.AppendRow(table.Row{
				tbl.Name,
				tbl.Mode(),
				len(tbl.Columns()) + len(tbl.CalculatedColumns()),
				len(tbl.Measures()),
			})
		}
		t.Render()

		if n := len(m.Measures()); n > 0 {
			names := make([]string, 0, n)
			for _, ms := range m.Measures() {
				names = append(names, ms.Name)
			}
			fmt.Fprintf(out, "model measures: %s\n", strings.Join(names, ", "))
		}

		if showGraph {
			printTopology(cmd, m)
		}
		fmt.Fprintln(out)
	}

	return nil
}

func printTopology(cmd *cobra.Command, m *model.Model) {
	g := graph.FromModel(m)
	out := cmd.OutOrStdout()

	if cycle, path := g.HasCycle(); cycle {
		fmt.Fprintf(out, "warning: relationship cycle: %s\n", strings.Join(path, " -> "))
	}
	if facts := g.Facts(); len(facts) > 0 {
		fmt.Fprintf(out, "facts:      %s\n", strings.Join(facts, ", "))
	}
	if dims := g.Dimensions(); len(dims) > 0 {
		fmt.Fprintf(out, "dimensions: %s\n", strings.Join(dims, ", "))
	}
	if iso := g.Isolated(); len(iso) > 0 {
		fmt.Fprintf(out, "isolated:   %s\n", strings.Join(iso, ", "))
	}
}
