package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const configTemplate = `# Weft project configuration
models_dir: models
output_dir: compiled
state_path: .weft/state.db
environment: dev

# Deployment workspace (optional)
# workspace: Analytics

# environments:
#   prod:
#     output_dir: compiled/prod
#     workspace: Analytics [Prod]
`

const salesModelTemplate = `name: Sales
description: Core sales model with fact and dimension tables

params:
  revenue: "SUM('Sales'[Amount])"

tables:
  - name: Sales
    mode: DirectLake
    source: SELECT * FROM dbo.FactSales
    schema: dbo
    columns:
      - name: OrderID
        type: Int64
      - name: CustomerID
        type: Int64
      - name: Amount
        type: Currency
        format: "$#,0.00"
      - name: OrderDate
        type: Date
    calculated_columns:
      - name: OrderYear
        type: Int64
        expression: YEAR('Sales'[OrderDate])
    measures:
      - name: Total Revenue
        expression: "{{ revenue }}"
        format: "$#,0.00"
        folder: Revenue

  - name: Customer
    mode: Import
    source: SELECT * FROM dbo.DimCustomer
    columns:
      - name: CustomerID
        type: Int64
      - name: Name
        type: Text
      - name: Region
        type: Text

relationships:
  - from: Sales.CustomerID
    to: Customer.CustomerID
    cardinality: manyToOne
    cross_filter: Single
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new weft project",
		Long: `Initialize a new weft project with default directory structure and configuration.

This creates:
  - models/ directory with an example model definition
  - weft.yaml configuration file`,
		Example: `  # Initialize in current directory
  weft init

  # Initialize in a new directory
  weft init my-project

  # Force overwrite existing config
  weft init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "weft.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("weft.yaml already exists. Use --force to overwrite")
	}

	modelsDir := filepath.Join(dir, "models")
	if err := os.MkdirAll(modelsDir, 0o750); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	files := map[string]string{
		configPath: configTemplate,
		filepath.Join(modelsDir, "sales.yaml"): salesModelTemplate,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  created %s\n", path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Weft project initialized!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Edit models/sales.yaml or add your own model definitions")
	fmt.Fprintln(out, "  2. Run 'weft validate' to check the project")
	fmt.Fprintln(out, "  3. Run 'weft compile' to produce artifacts")

	return nil
}
