// Package model defines the in-memory object graph for a tabular semantic
// model: tables, typed columns, calculated columns, measures, relationships,
// hierarchies, and security roles. Enumerated fields are canonicalized at
// construction time, so a populated graph only ever carries wire-format
// strings. Structural constraints (uniqueness, referential integrity) are
// checked later by the validate package.
package model

// Model is the root of the object graph. Tables, measures, and relationships
// are kept in the order they were added; that order is significant because
// compiled output must be reproducible.
type Model struct {
	Name        string
	Description string

	tables        []*Table
	measures      []*Measure
	relationships []*Relationship
	hierarchies   []*Hierarchy
	roles         []*Role
}

// NewModel creates an empty model with the given name.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddTable appends a table to the model. Duplicate names are accepted here
// and reported by validation, so authors see every problem in one pass.
func (m *Model) AddTable(t *Table) {
	m.tables = append(m.tables, t)
}

// AddMeasure appends a model-level measure.
func (m *Model) AddMeasure(ms *Measure) {
	m.measures = append(m.measures, ms)
}

// AddRelationship appends a relationship between two tables.
func (m *Model) AddRelationship(r *Relationship) {
	m.relationships = append(m.relationships, r)
}

// AddHierarchy appends a drill-down hierarchy.
func (m *Model) AddHierarchy(h *Hierarchy) {
	m.hierarchies = append(m.hierarchies, h)
}

// AddRole appends a row-level security role.
func (m *Model) AddRole(r *Role) {
	m.roles = append(m.roles, r)
}

// Tables returns the model's tables in add-order.
func (m *Model) Tables() []*Table { return m.tables }

// Measures returns the model-level measures in add-order.
func (m *Model) Measures() []*Measure { return m.measures }

// Relationships returns the relationships in add-order.
func (m *Model) Relationships() []*Relationship { return m.relationships }

// Hierarchies returns the hierarchies in add-order.
func (m *Model) Hierarchies() []*Hierarchy { return m.hierarchies }

// Roles returns the security roles in add-order.
func (m *Model) Roles() []*Role { return m.roles }

// Table returns the first table with the given name.
func (m *Model) Table(name string) (*Table, bool) {
	for _, t := range m.tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Table is a named collection of columns and measures loaded from a source.
// The storage mode is canonical after construction (Import or DirectLake).
type Table struct {
	Name        string
	Description string

	// SourceQuery is the warehouse query or schema-qualified table this
	// table reads from. Required for DirectLake tables.
	SourceQuery string
	// Schema is the source database schema, when separate from SourceQuery.
	Schema string
	// SQLServer is the server hosting an Import table's source.
	SQLServer string
	// DirectLakeResourceID is the lakehouse or warehouse resource a
	// DirectLake table binds to.
	DirectLakeResourceID string

	mode       string
	columns    []*Column
	calculated []*CalculatedColumn
	measures   []*Measure
}

// NewTable creates a table with the given name and storage mode. The mode
// accepts any known alias and fails immediately on an unrecognized value.
func NewTable(name, mode string) (*Table, error) {
	canonical, err := NormalizeTableMode(mode)
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, mode: canonical}, nil
}

// Mode returns the canonical storage mode.
func (t *Table) Mode() string { return t.mode }

// AddColumn appends a column to the table.
func (t *Table) AddColumn(c *Column) {
	t.columns = append(t.columns, c)
}

// AddCalculatedColumn appends a calculated column to the table.
func (t *Table) AddCalculatedColumn(c *CalculatedColumn) {
	t.calculated = append(t.calculated, c)
}

// AddMeasure appends a table-scoped measure.
func (t *Table) AddMeasure(m *Measure) {
	t.measures = append(t.measures, m)
}

// Columns returns the table's ordinary columns in add-order.
func (t *Table) Columns() []*Column { return t.columns }

// CalculatedColumns returns the table's calculated columns in add-order.
func (t *Table) CalculatedColumns() []*CalculatedColumn { return t.calculated }

// Measures returns the table-scoped measures in add-order.
func (t *Table) Measures() []*Measure { return t.measures }

// HasColumn reports whether the table carries a column with the given name,
// counting both ordinary and calculated columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c.Name == name {
			return true
		}
	}
	for _, c := range t.calculated {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Column is a typed column loaded from the table's source.
type Column struct {
	Name         string
	Description  string
	FormatString string

	dataType string
}

// NewColumn creates a column with the given name and data type. The type
// accepts any known alias (e.g. "Currency" for decimal) and fails
// immediately on an unrecognized value.
func NewColumn(name, dataType string) (*Column, error) {
	canonical, err := NormalizeDataType(dataType)
	if err != nil {
		return nil, err
	}
	return &Column{Name: name, dataType: canonical}, nil
}

// DataType returns the canonical data type string.
func (c *Column) DataType() string { return c.dataType }

// CalculatedColumn is a column derived from a formula expression instead of
// loaded from the source. The expression is already template-expanded and is
// carried as an opaque string.
type CalculatedColumn struct {
	Column
	Expression string
}

// NewCalculatedColumn creates a calculated column with the given name, data
// type, and expanded formula expression.
func NewCalculatedColumn(name, dataType, expression string) (*CalculatedColumn, error) {
	col, err := NewColumn(name, dataType)
	if err != nil {
		return nil, err
	}
	return &CalculatedColumn{Column: *col, Expression: expression}, nil
}

// Measure is a named aggregation exposed for querying. A measure belongs to
// exactly one scope: a table, or the model itself.
type Measure struct {
	Name         string
	Expression   string
	Description  string
	FormatString string
	// Folder is the display folder the measure is organized under.
	Folder string
}

// NewMeasure creates a measure with the given name and expanded expression.
func NewMeasure(name, expression string) *Measure {
	return &Measure{Name: name, Expression: expression}
}

// Relationship joins a column of one table to a column of another. It
// references tables by name and owns neither side; validation confirms the
// endpoints exist.
type Relationship struct {
	FromTable   string
	FromColumn  string
	ToTable     string
	ToColumn    string
	Description string

	cardinality string
	crossFilter string
}

// NewRelationship creates a relationship between from-table.from-column and
// to-table.to-column. Cardinality and cross-filter direction accept any
// known alias and fail immediately on unrecognized values.
func NewRelationship(fromTable, fromColumn, toTable, toColumn, cardinality, crossFilter string) (*Relationship, error) {
	card, err := NormalizeCardinality(cardinality)
	if err != nil {
		return nil, err
	}
	filter, err := NormalizeCrossFilter(crossFilter)
	if err != nil {
		return nil, err
	}
	return &Relationship{
		FromTable:   fromTable,
		FromColumn:  fromColumn,
		ToTable:     toTable,
		ToColumn:    toColumn,
		cardinality: card,
		crossFilter: filter,
	}, nil
}

// Cardinality returns the canonical cardinality string.
func (r *Relationship) Cardinality() string { return r.cardinality }

// CrossFilter returns the canonical cross-filter direction string.
func (r *Relationship) CrossFilter() string { return r.crossFilter }

// Hierarchy is an ordered drill-down path over dimension columns.
type Hierarchy struct {
	Name        string
	Levels      []string
	Description string
}

// TablePermission is a row-level filter applied to one table for a role.
type TablePermission struct {
	Table  string
	Filter string
}

// Role is a row-level security role: a set of table filters plus the
// members they apply to. A role with no permissions grants full access.
type Role struct {
	Name        string
	Description string

	permissions []TablePermission
	members     []string
}

// NewRole creates an empty role with the given name.
func NewRole(name string) *Role {
	return &Role{Name: name}
}

// AddTablePermission appends a filter expression for a table.
func (r *Role) AddTablePermission(table, filter string) {
	r.permissions = append(r.permissions, TablePermission{Table: table, Filter: filter})
}

// AddMember appends a member identity (user principal name).
func (r *Role) AddMember(member string) {
	r.members = append(r.members, member)
}

// TablePermissions returns the role's table filters in add-order.
func (r *Role) TablePermissions() []TablePermission { return r.permissions }

// Members returns the role's members in add-order.
func (r *Role) Members() []string { return r.members }
