package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/model"
)

func mustTable(t *testing.T, name, mode string) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(name, mode)
	require.NoError(t, err)
	return tbl
}

func mustColumn(t *testing.T, name, dataType string) *model.Column {
	t.Helper()
	col, err := model.NewColumn(name, dataType)
	require.NoError(t, err)
	return col
}

func mustRelationship(t *testing.T, fromTable, fromCol, toTable, toCol string) *model.Relationship {
	t.Helper()
	rel, err := model.NewRelationship(fromTable, fromCol, toTable, toCol, "manyToOne", "Single")
	require.NoError(t, err)
	return rel
}

func validModel(t *testing.T) *model.Model {
	t.Helper()
	m := &model.Model{Name: "Retail"}

	sales := mustTable(t, "Sales", "Import")
	sales.SourceQuery = "SELECT * FROM dbo.FactSales"
	sales.AddColumn(mustColumn(t, "CustomerID", "int64"))
	sales.AddColumn(mustColumn(t, "Amount", "decimal"))
	sales.AddMeasure(model.NewMeasure("Total Revenue", "SUM('Sales'[Amount])"))
	m.AddTable(sales)

	customer := mustTable(t, "Customer", "Import")
	customer.AddColumn(mustColumn(t, "CustomerID", "int64"))
	customer.AddColumn(mustColumn(t, "Region", "string"))
	m.AddTable(customer)

	m.AddRelationship(mustRelationship(t, "Sales", "CustomerID", "Customer", "CustomerID"))

	return m
}

func TestValidate_CleanModel(t *testing.T) {
	report := Validate(validModel(t))
	assert.True(t, report.OK())
	assert.Empty(t, report.Findings)
}

// A model with several independent defects must surface all of them in one
// pass rather than stopping at the first.
func TestValidate_CollectsAllFindings(t *testing.T) {
	m := validModel(t)

	// duplicate table name
	m.AddTable(mustTable(t, "Sales", "Import"))
	// dangling relationship endpoint
	m.AddRelationship(mustRelationship(t, "Sales", "CustomerID", "Product", "ProductID"))
	// DirectLake table without a source query
	m.AddTable(mustTable(t, "Inventory", "DirectLake"))

	report := Validate(m)
	require.False(t, report.OK())
	require.GreaterOrEqual(t, len(report.Findings), 3)

	kinds := make(map[Kind]int)
	for _, f := range report.Findings {
		kinds[f.Kind]++
	}
	assert.GreaterOrEqual(t, kinds[KindTable], 2)
	assert.GreaterOrEqual(t, kinds[KindRelationship], 1)
}

func TestValidate_FindingOrder(t *testing.T) {
	m := validModel(t)
	m.AddTable(mustTable(t, "Sales", "Import"))
	m.AddRelationship(mustRelationship(t, "Sales", "CustomerID", "Product", "ProductID"))

	report := Validate(m)
	require.GreaterOrEqual(t, len(report.Findings), 2)

	// uniqueness findings come before referential findings
	assert.Equal(t, KindTable, report.Findings[0].Kind)
	assert.Equal(t, "duplicate table name in model", report.Findings[0].Reason)
}

func TestValidate_DanglingColumn(t *testing.T) {
	m := validModel(t)
	m.AddRelationship(mustRelationship(t, "Sales", "Missing", "Customer", "CustomerID"))

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "fromColumn", report.Findings[0].Field)
}

func TestValidate_SelfRelationship(t *testing.T) {
	m := validModel(t)
	m.AddRelationship(mustRelationship(t, "Sales", "CustomerID", "Sales", "CustomerID"))

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, KindRelationship, report.Findings[0].Kind)
	assert.Equal(t, "relationship joins a column to itself", report.Findings[0].Reason)
}

func TestValidate_SameTableDifferentColumns(t *testing.T) {
	m := validModel(t)
	sales, ok := m.Table("Sales")
	require.True(t, ok)
	sales.AddColumn(mustColumn(t, "ParentID", "int64"))
	sales.AddColumn(mustColumn(t, "OrderID", "int64"))

	// same table but different columns is allowed
	m.AddRelationship(mustRelationship(t, "Sales", "ParentID", "Sales", "OrderID"))

	report := Validate(m)
	assert.True(t, report.OK())
}

func TestValidate_DuplicateColumnInTable(t *testing.T) {
	m := validModel(t)
	sales, ok := m.Table("Sales")
	require.True(t, ok)
	sales.AddColumn(mustColumn(t, "Amount", "decimal"))

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, KindColumn, report.Findings[0].Kind)
	assert.Equal(t, "Sales.Amount", report.Findings[0].Name)
}

func TestValidate_CalculatedColumnCollision(t *testing.T) {
	m := validModel(t)
	sales, ok := m.Table("Sales")
	require.True(t, ok)
	calc, err := model.NewCalculatedColumn("Amount", "decimal", "[Amount] * 2")
	require.NoError(t, err)
	sales.AddCalculatedColumn(calc)

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Contains(t, report.Findings[0].Reason, "calculated column name collides")
}

func TestValidate_ModelMeasureCollision(t *testing.T) {
	m := validModel(t)
	m.AddMeasure(model.NewMeasure("Total Revenue", "SUM('Sales'[Amount])"))

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, KindMeasure, report.Findings[0].Kind)
	assert.Contains(t, report.Findings[0].Reason, `collides with a member of table "Sales"`)
}

func TestValidate_DuplicateModelMeasure(t *testing.T) {
	m := validModel(t)
	m.AddMeasure(model.NewMeasure("Margin", "1"))
	m.AddMeasure(model.NewMeasure("Margin", "2"))

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "duplicate model-level measure name", report.Findings[0].Reason)
}

func TestValidate_HierarchyWithoutLevels(t *testing.T) {
	m := validModel(t)
	m.AddHierarchy(&model.Hierarchy{Name: "Geography"})

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, KindHierarchy, report.Findings[0].Kind)
}

func TestValidate_RolePermissionUnknownTable(t *testing.T) {
	m := validModel(t)
	role := model.NewRole("Regional")
	role.AddTablePermission("Product", "[Region] = USERNAME()")
	m.AddRole(role)

	report := Validate(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, KindRole, report.Findings[0].Kind)
}

func TestReport_Error(t *testing.T) {
	m := validModel(t)
	m.AddTable(mustTable(t, "Sales", "Import"))

	report := Validate(m)
	require.False(t, report.OK())

	var err error = report
	assert.Contains(t, err.Error(), `model "Retail"`)
	assert.Contains(t, err.Error(), "duplicate table name")
}
