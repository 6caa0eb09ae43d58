// Package compile turns a validated semantic model into a serializable
// document tree. The compiler only reads fields that were canonicalized at
// construction time; it performs no normalization or template expansion of
// its own. Everything is emitted in add-order, and compiling the same model
// twice yields byte-identical output.
package compile

import (
	"github.com/google/uuid"

	"github.com/weftlabs/weft/internal/model"
)

// relationshipNamespace is the fixed UUID namespace for deriving
// relationship names. Never change it: downstream deployment diffing
// depends on stable names across compiles.
var relationshipNamespace = uuid.MustParse("9f2c1a30-7a4e-4b8a-9f6d-3a1f5f0c2b14")

// Compile assembles the document tree for a model that has already passed
// validation.
func Compile(m *model.Model) *Document {
	doc := &Document{
		Name:        m.Name,
		Description: m.Description,
		Tables:      make([]TableNode, 0, len(m.Tables())),
	}

	for _, t := range m.Tables() {
		doc.Tables = append(doc.Tables, compileTable(t))
	}
	for _, rel := range m.Relationships() {
		doc.Relationships = append(doc.Relationships, compileRelationship(rel))
	}
	for _, ms := range m.Measures() {
		doc.Measures = append(doc.Measures, compileMeasure(ms))
	}
	for _, h := range m.Hierarchies() {
		doc.Hierarchies = append(doc.Hierarchies, HierarchyNode{
			Name:        h.Name,
			Levels:      h.Levels,
			Description: h.Description,
		})
	}
	for _, role := range m.Roles() {
		doc.Roles = append(doc.Roles, compileRole(role))
	}

	return doc
}

func compileTable(t *model.Table) TableNode {
	node := TableNode{
		Name:        t.Name,
		Mode:        t.Mode(),
		Description: t.Description,
		Columns:     make([]ColumnNode, 0, len(t.Columns())),
	}

	if src := compileSource(t); src != nil {
		node.Source = src
	}

	for _, c := range t.Columns() {
		node.Columns = append(node.Columns, ColumnNode{
			Name:         c.Name,
			DataType:     c.DataType(),
			Description:  c.Description,
			FormatString: c.FormatString,
		})
	}
	for _, c := range t.CalculatedColumns() {
		node.CalculatedColumns = append(node.CalculatedColumns, ColumnNode{
			Name:         c.Name,
			DataType:     c.DataType(),
			Description:  c.Description,
			FormatString: c.FormatString,
			Expression:   c.Expression,
		})
	}
	for _, ms := range t.Measures() {
		node.Measures = append(node.Measures, compileMeasure(ms))
	}

	return node
}

func compileSource(t *model.Table) *SourceNode {
	if t.SourceQuery == "" && t.Schema == "" && t.SQLServer == "" && t.DirectLakeResourceID == "" {
		return nil
	}
	return &SourceNode{
		Query:      t.SourceQuery,
		Schema:     t.Schema,
		Server:     t.SQLServer,
		ResourceID: t.DirectLakeResourceID,
	}
}

func compileMeasure(m *model.Measure) MeasureNode {
	return MeasureNode{
		Name:         m.Name,
		Expression:   m.Expression,
		Description:  m.Description,
		FormatString: m.FormatString,
		Folder:       m.Folder,
	}
}

func compileRelationship(rel *model.Relationship) RelationshipNode {
	return RelationshipNode{
		Name:        relationshipID(rel),
		FromTable:   rel.FromTable,
		FromColumn:  rel.FromColumn,
		ToTable:     rel.ToTable,
		ToColumn:    rel.ToColumn,
		Cardinality: rel.Cardinality(),
		CrossFilter: rel.CrossFilter(),
		Description: rel.Description,
	}
}

// relationshipID derives a stable name for a relationship from its
// endpoints: the same endpoints always compile to the same UUID.
func relationshipID(rel *model.Relationship) string {
	key := rel.FromTable + "." + rel.FromColumn + "->" + rel.ToTable + "." + rel.ToColumn
	return uuid.NewSHA1(relationshipNamespace, []byte(key)).String()
}

func compileRole(role *model.Role) RoleNode {
	node := RoleNode{
		Name:        role.Name,
		Description: role.Description,
		Members:     role.Members(),
	}
	for _, p := range role.TablePermissions() {
		node.Permissions = append(node.Permissions, PermissionNode{
			Table:  p.Table,
			Filter: p.Filter,
		})
	}
	return node
}
