package compile

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/model"
)

func buildModel(t *testing.T) *model.Model {
	t.Helper()
	m := &model.Model{Name: "Retail", Description: "Retail analytics"}

	sales, err := model.NewTable("Sales", "DirectLake")
	require.NoError(t, err)
	sales.SourceQuery = "SELECT * FROM dbo.FactSales"
	sales.Schema = "dbo"

	for _, c := range []struct{ name, dt string }{
		{"OrderID", "int64"},
		{"CustomerID", "int64"},
		{"Amount", "Currency"},
	} {
		col, err := model.NewColumn(c.name, c.dt)
		require.NoError(t, err)
		sales.AddColumn(col)
	}

	calc, err := model.NewCalculatedColumn("OrderYear", "int64", "YEAR('Sales'[OrderDate])")
	require.NoError(t, err)
	sales.AddCalculatedColumn(calc)

	revenue := model.NewMeasure("Total Revenue", "SUM('Sales'[Amount])")
	revenue.FormatString = "$#,0.00"
	revenue.Folder = "Revenue"
	sales.AddMeasure(revenue)
	m.AddTable(sales)

	customer, err := model.NewTable("Customer", "Import")
	require.NoError(t, err)
	col, err := model.NewColumn("CustomerID", "int64")
	require.NoError(t, err)
	customer.AddColumn(col)
	m.AddTable(customer)

	rel, err := model.NewRelationship("Sales", "CustomerID", "Customer", "CustomerID", "manyToOne", "Single")
	require.NoError(t, err)
	m.AddRelationship(rel)

	m.AddMeasure(model.NewMeasure("Order Count", "COUNTROWS(Sales)"))

	return m
}

func TestCompile_TreeShape(t *testing.T) {
	doc := Compile(buildModel(t))

	assert.Equal(t, "Retail", doc.Name)
	require.Len(t, doc.Tables, 2)

	sales := doc.Tables[0]
	assert.Equal(t, "Sales", sales.Name)
	assert.Equal(t, model.ModeDirectLake, sales.Mode)
	require.NotNil(t, sales.Source)
	assert.Equal(t, "SELECT * FROM dbo.FactSales", sales.Source.Query)
	require.Len(t, sales.Columns, 3)
	assert.Equal(t, "decimal", sales.Columns[2].DataType)
	require.Len(t, sales.CalculatedColumns, 1)
	assert.Equal(t, "YEAR('Sales'[OrderDate])", sales.CalculatedColumns[0].Expression)
	require.Len(t, sales.Measures, 1)
	assert.Equal(t, "Revenue", sales.Measures[0].Folder)

	// Import table with no source fields gets no source node
	assert.Nil(t, doc.Tables[1].Source)

	require.Len(t, doc.Relationships, 1)
	rel := doc.Relationships[0]
	assert.Equal(t, "manyToOne", rel.Cardinality)
	assert.Equal(t, "oneDirection", rel.CrossFilter)
	assert.NotEmpty(t, rel.Name)

	require.Len(t, doc.Measures, 1)
	assert.Equal(t, "Order Count", doc.Measures[0].Name)
}

func TestCompile_Deterministic(t *testing.T) {
	m := buildModel(t)

	var first, second bytes.Buffer
	require.NoError(t, Compile(m).EncodeJSON(&first))
	require.NoError(t, Compile(m).EncodeJSON(&second))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestCompile_StableRelationshipNames(t *testing.T) {
	m := buildModel(t)

	a := Compile(m).Relationships[0].Name
	b := Compile(m).Relationships[0].Name
	assert.Equal(t, a, b)

	// a different endpoint yields a different name
	rel, err := model.NewRelationship("Sales", "OrderID", "Customer", "CustomerID", "manyToOne", "Single")
	require.NoError(t, err)
	m.AddRelationship(rel)
	doc := Compile(m)
	assert.NotEqual(t, doc.Relationships[0].Name, doc.Relationships[1].Name)
}

func TestCompile_AddOrderPreserved(t *testing.T) {
	m := &model.Model{Name: "Ordering"}
	for _, name := range []string{"Zeta", "Alpha", "Middle"} {
		tbl, err := model.NewTable(name, "Import")
		require.NoError(t, err)
		m.AddTable(tbl)
	}

	doc := Compile(m)
	require.Len(t, doc.Tables, 3)
	assert.Equal(t, "Zeta", doc.Tables[0].Name)
	assert.Equal(t, "Alpha", doc.Tables[1].Name)
	assert.Equal(t, "Middle", doc.Tables[2].Name)
}

func TestEncodeJSON_WireNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Compile(buildModel(t)).EncodeJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	tables, ok := decoded["tables"].([]any)
	require.True(t, ok)
	sales, ok := tables[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DirectLake", sales["mode"])

	rels, ok := decoded["relationships"].([]any)
	require.True(t, ok)
	rel, ok := rels[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "oneDirection", rel["crossFilteringBehavior"])
}

func TestWriteTMDL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Compile(buildModel(t)).WriteTMDL(&buf))
	out := buf.String()

	assert.Contains(t, out, "model Retail")
	assert.Contains(t, out, "table Sales")
	assert.Contains(t, out, "mode: DirectLake")
	assert.Contains(t, out, "calculatedColumn OrderYear = YEAR('Sales'[OrderDate])")
	assert.Contains(t, out, "measure 'Total Revenue' = SUM('Sales'[Amount])")
	assert.Contains(t, out, "displayFolder: Revenue")
	assert.Contains(t, out, "table _Measures")
	assert.Contains(t, out, "measure 'Order Count' = COUNTROWS(Sales)")
	assert.Contains(t, out, "crossFilteringBehavior: oneDirection")
}

func TestWriteTMDL_FlattensExpressions(t *testing.T) {
	m := &model.Model{Name: "M"}
	tbl, err := model.NewTable("T", "Import")
	require.NoError(t, err)
	ms := model.NewMeasure("Margin", "DIVIDE(\n    [Profit],\n    [Revenue]\n)")
	tbl.AddMeasure(ms)
	m.AddTable(tbl)

	var buf bytes.Buffer
	require.NoError(t, Compile(m).WriteTMDL(&buf))
	assert.Contains(t, buf.String(), "measure Margin = DIVIDE( [Profit], [Revenue] )")
}
