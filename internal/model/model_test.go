package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_NormalizesMode(t *testing.T) {
	tbl, err := NewTable("Sales", "directlake")
	require.NoError(t, err)
	assert.Equal(t, "Sales", tbl.Name)
	assert.Equal(t, ModeDirectLake, tbl.Mode())
}

func TestNewTable_UnknownMode(t *testing.T) {
	_, err := NewTable("Sales", "Dual")
	var unknownErr *UnknownEnumValueError
	require.ErrorAs(t, err, &unknownErr)
}

func TestNewColumn_NormalizesType(t *testing.T) {
	col, err := NewColumn("Amount", "Currency")
	require.NoError(t, err)
	assert.Equal(t, TypeDecimal, col.DataType())
}

func TestNewCalculatedColumn(t *testing.T) {
	col, err := NewCalculatedColumn("OrderYear", "Int64", "YEAR('Sales'[OrderDate])")
	require.NoError(t, err)
	assert.Equal(t, TypeInt64, col.DataType())
	assert.Equal(t, "YEAR('Sales'[OrderDate])", col.Expression)
}

func TestNewRelationship_Defaults(t *testing.T) {
	rel, err := NewRelationship("Sales", "CustomerID", "Customer", "CustomerID", "ManyToOne", "Single")
	require.NoError(t, err)
	assert.Equal(t, CardinalityManyToOne, rel.Cardinality())
	assert.Equal(t, CrossFilterOneDirection, rel.CrossFilter())
}

func TestNewRelationship_BadCardinality(t *testing.T) {
	_, err := NewRelationship("Sales", "CustomerID", "Customer", "CustomerID", "1:N", "Single")
	require.Error(t, err)
}

func TestTable_HasColumn(t *testing.T) {
	tbl, err := NewTable("Sales", "Import")
	require.NoError(t, err)

	col, err := NewColumn("Amount", "decimal")
	require.NoError(t, err)
	tbl.AddColumn(col)

	calc, err := NewCalculatedColumn("Margin", "decimal", "[Amount] * 0.3")
	require.NoError(t, err)
	tbl.AddCalculatedColumn(calc)

	assert.True(t, tbl.HasColumn("Amount"))
	assert.True(t, tbl.HasColumn("Margin"))
	assert.False(t, tbl.HasColumn("Missing"))
}

func TestModel_PreservesAddOrder(t *testing.T) {
	m := &Model{Name: "Retail"}

	for _, name := range []string{"Zeta", "Alpha", "Middle"} {
		tbl, err := NewTable(name, "Import")
		require.NoError(t, err)
		m.AddTable(tbl)
	}

	names := make([]string, 0, 3)
	for _, tbl := range m.Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Middle"}, names)
}

func TestModel_TableLookup(t *testing.T) {
	m := &Model{Name: "Retail"}
	tbl, err := NewTable("Sales", "Import")
	require.NoError(t, err)
	m.AddTable(tbl)

	got, ok := m.Table("Sales")
	require.True(t, ok)
	assert.Same(t, tbl, got)

	_, ok = m.Table("Missing")
	assert.False(t, ok)
}

func TestRole_Accessors(t *testing.T) {
	role := NewRole("Regional")
	role.AddTablePermission("Sales", "[Region] = USERNAME()")
	role.AddMember("analysts@example.com")

	require.Len(t, role.TablePermissions(), 1)
	assert.Equal(t, "Sales", role.TablePermissions()[0].Table)
	assert.Equal(t, []string{"analysts@example.com"}, role.Members())
}
