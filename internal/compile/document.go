package compile

// Document is the serializable tree compiled from a validated model. Field
// order and slice order are fixed, so encoding the same document twice
// produces byte-identical output.
type Document struct {
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Tables        []TableNode        `json:"tables"`
	Relationships []RelationshipNode `json:"relationships,omitempty"`
	Measures      []MeasureNode      `json:"measures,omitempty"`
	Hierarchies   []HierarchyNode    `json:"hierarchies,omitempty"`
	Roles         []RoleNode         `json:"roles,omitempty"`
}

// TableNode is the compiled form of one table.
type TableNode struct {
	Name              string        `json:"name"`
	Mode              string        `json:"mode"`
	Description       string        `json:"description,omitempty"`
	Source            *SourceNode   `json:"source,omitempty"`
	Columns           []ColumnNode  `json:"columns"`
	CalculatedColumns []ColumnNode  `json:"calculatedColumns,omitempty"`
	Measures          []MeasureNode `json:"measures,omitempty"`
}

// SourceNode describes where a table's data comes from.
type SourceNode struct {
	Query      string `json:"query,omitempty"`
	Schema     string `json:"schema,omitempty"`
	Server     string `json:"server,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
}

// ColumnNode is the compiled form of a column. Calculated columns carry an
// expression; ordinary columns do not.
type ColumnNode struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType"`
	Description  string `json:"description,omitempty"`
	FormatString string `json:"formatString,omitempty"`
	Expression   string `json:"expression,omitempty"`
}

// MeasureNode is the compiled form of a measure.
type MeasureNode struct {
	Name         string `json:"name"`
	Expression   string `json:"expression"`
	Description  string `json:"description,omitempty"`
	FormatString string `json:"formatString,omitempty"`
	Folder       string `json:"displayFolder,omitempty"`
}

// RelationshipNode is the compiled form of a relationship. Name is a
// deterministic UUID derived from the endpoints.
type RelationshipNode struct {
	Name        string `json:"name"`
	FromTable   string `json:"fromTable"`
	FromColumn  string `json:"fromColumn"`
	ToTable     string `json:"toTable"`
	ToColumn    string `json:"toColumn"`
	Cardinality string `json:"cardinality"`
	CrossFilter string `json:"crossFilteringBehavior"`
	Description string `json:"description,omitempty"`
}

// HierarchyNode is the compiled form of a drill-down hierarchy.
type HierarchyNode struct {
	Name        string   `json:"name"`
	Levels      []string `json:"levels"`
	Description string   `json:"description,omitempty"`
}

// RoleNode is the compiled form of a row-level security role.
type RoleNode struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Permissions []PermissionNode `json:"tablePermissions,omitempty"`
	Members     []string         `json:"members,omitempty"`
}

// PermissionNode is one table filter inside a role.
type PermissionNode struct {
	Table  string `json:"table"`
	Filter string `json:"filterExpression"`
}
