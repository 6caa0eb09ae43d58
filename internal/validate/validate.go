// Package validate checks referential integrity and uniqueness constraints
// across a fully assembled semantic model. Unlike the eager field-level
// checks performed at construction time, validation is exhaustive: it
// collects every detectable structural issue in one pass so the author sees
// the complete picture before fixing anything.
package validate

import (
	"fmt"

	"github.com/weftlabs/weft/internal/model"
)

// Kind identifies the entity a finding refers to.
type Kind string

// Kind constants for validation findings.
const (
	KindModel        Kind = "model"
	KindTable        Kind = "table"
	KindColumn       Kind = "column"
	KindMeasure      Kind = "measure"
	KindRelationship Kind = "relationship"
	KindHierarchy    Kind = "hierarchy"
	KindRole         Kind = "role"
)

// Finding is one structural defect with enough context for a precise,
// actionable message.
type Finding struct {
	Kind   Kind
	Name   string
	Field  string
	Reason string
}

func (f Finding) String() string {
	if f.Field != "" {
		return fmt.Sprintf("%s %q: %s: %s", f.Kind, f.Name, f.Field, f.Reason)
	}
	return fmt.Sprintf("%s %q: %s", f.Kind, f.Name, f.Reason)
}

// Report is the ordered list of findings from one validation pass. An empty
// report means the model is structurally sound.
type Report struct {
	Model    string
	Findings []Finding
}

// OK reports whether validation produced no findings.
func (r *Report) OK() bool { return len(r.Findings) == 0 }

// Error summarizes the report; Report implements error so callers can abort
// compilation on a failed pass.
func (r *Report) Error() string {
	switch len(r.Findings) {
	case 0:
		return fmt.Sprintf("model %q is valid", r.Model)
	case 1:
		return fmt.Sprintf("model %q: %s", r.Model, r.Findings[0])
	default:
		return fmt.Sprintf("model %q: %d validation findings, first: %s", r.Model, len(r.Findings), r.Findings[0])
	}
}

func (r *Report) add(kind Kind, name, field, reason string) {
	r.Findings = append(r.Findings, Finding{Kind: kind, Name: name, Field: field, Reason: reason})
}

// Validate runs every structural check over the model and returns the
// complete report. Checks never short-circuit and have no side effects.
func Validate(m *model.Model) *Report {
	r := &Report{Model: m.Name}

	checkTableNames(m, r)
	checkColumnNames(m, r)
	checkMeasureNames(m, r)
	checkRelationshipRefs(m, r)
	checkSourceQueries(m, r)
	checkSelfRelationships(m, r)
	checkHierarchies(m, r)
	checkRoles(m, r)

	return r
}

// checkTableNames reports duplicate table names within the model.
func checkTableNames(m *model.Model, r *Report) {
	seen := make(map[string]bool)
	for _, t := range m.Tables() {
		if seen[t.Name] {
			r.add(KindTable, t.Name, "name", "duplicate table name in model")
			continue
		}
		seen[t.Name] = true
	}
}

// checkColumnNames reports duplicate column names within each table.
// Ordinary and calculated columns share one namespace.
func checkColumnNames(m *model.Model, r *Report) {
	for _, t := range m.Tables() {
		seen := make(map[string]bool)
		for _, c := range t.Columns() {
			if seen[c.Name] {
				r.add(KindColumn, t.Name+"."+c.Name, "name", "duplicate column name in table")
				continue
			}
			seen[c.Name] = true
		}
		for _, c := range t.CalculatedColumns() {
			if seen[c.Name] {
				r.add(KindColumn, t.Name+"."+c.Name, "name", "calculated column name collides with a column in the same table")
				continue
			}
			seen[c.Name] = true
		}
	}
}

// checkMeasureNames reports duplicate measure names per table and per model.
// A model-level measure colliding with any table measure or column is a hard
// failure; the compiler never silently prefers one scope.
func checkMeasureNames(m *model.Model, r *Report) {
	tableScoped := make(map[string]string) // measure or column name -> owning table
	for _, t := range m.Tables() {
		seen := make(map[string]bool)
		for _, ms := range t.Measures() {
			if seen[ms.Name] {
				r.add(KindMeasure, t.Name+"."+ms.Name, "name", "duplicate measure name in table")
				continue
			}
			seen[ms.Name] = true
			if _, ok := tableScoped[ms.Name]; !ok {
				tableScoped[ms.Name] = t.Name
			}
		}
		for _, c := range t.Columns() {
			if _, ok := tableScoped[c.Name]; !ok {
				tableScoped[c.Name] = t.Name
			}
		}
		for _, c := range t.CalculatedColumns() {
			if _, ok := tableScoped[c.Name]; !ok {
				tableScoped[c.Name] = t.Name
			}
		}
	}

	seen := make(map[string]bool)
	for _, ms := range m.Measures() {
		if seen[ms.Name] {
			r.add(KindMeasure, ms.Name, "name", "duplicate model-level measure name")
			continue
		}
		seen[ms.Name] = true
		if owner, ok := tableScoped[ms.Name]; ok {
			r.add(KindMeasure, ms.Name, "name", fmt.Sprintf("model-level measure name collides with a member of table %q", owner))
		}
	}
}

// relationshipName formats a relationship's endpoints for findings.
func relationshipName(rel *model.Relationship) string {
	return fmt.Sprintf("%s.%s -> %s.%s", rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn)
}

// checkRelationshipRefs reports relationships whose endpoints do not exist.
func checkRelationshipRefs(m *model.Model, r *Report) {
	for _, rel := range m.Relationships() {
		name := relationshipName(rel)

		from, fromOK := m.Table(rel.FromTable)
		if !fromOK {
			r.add(KindRelationship, name, "fromTable", fmt.Sprintf("table %q does not exist in model", rel.FromTable))
		} else if !from.HasColumn(rel.FromColumn) {
			r.add(KindRelationship, name, "fromColumn", fmt.Sprintf("column %q does not exist in table %q", rel.FromColumn, rel.FromTable))
		}

		to, toOK := m.Table(rel.ToTable)
		if !toOK {
			r.add(KindRelationship, name, "toTable", fmt.Sprintf("table %q does not exist in model", rel.ToTable))
		} else if !to.HasColumn(rel.ToColumn) {
			r.add(KindRelationship, name, "toColumn", fmt.Sprintf("column %q does not exist in table %q", rel.ToColumn, rel.ToTable))
		}
	}
}

// checkSourceQueries reports DirectLake tables without a source query.
func checkSourceQueries(m *model.Model, r *Report) {
	for _, t := range m.Tables() {
		if t.Mode() == model.ModeDirectLake && t.SourceQuery == "" {
			r.add(KindTable, t.Name, "sourceQuery", "DirectLake tables require a source query")
		}
	}
}

// checkSelfRelationships reports degenerate relationships that join a
// column to itself. Such a relationship filters nothing and is rejected
// rather than silently carried into the compiled document.
func checkSelfRelationships(m *model.Model, r *Report) {
	for _, rel := range m.Relationships() {
		if rel.FromTable == rel.ToTable && rel.FromColumn == rel.ToColumn {
			r.add(KindRelationship, relationshipName(rel), "", "relationship joins a column to itself")
		}
	}
}

// checkHierarchies reports hierarchies with no levels.
func checkHierarchies(m *model.Model, r *Report) {
	for _, h := range m.Hierarchies() {
		if len(h.Levels) == 0 {
			r.add(KindHierarchy, h.Name, "levels", "hierarchy requires at least one level")
		}
	}
}

// checkRoles reports role permissions that filter tables absent from the
// model.
func checkRoles(m *model.Model, r *Report) {
	for _, role := range m.Roles() {
		for _, p := range role.TablePermissions() {
			if _, ok := m.Table(p.Table); !ok {
				r.add(KindRole, role.Name, "table", fmt.Sprintf("permission filters table %q which does not exist in model", p.Table))
			}
		}
	}
}
