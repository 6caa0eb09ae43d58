package compile

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// EncodeJSON writes the document as indented JSON. Struct field order is
// fixed, so output is byte-identical across encodes of the same document.
func (d *Document) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// WriteTMDL writes the document in a TMDL-style text rendering: one block
// per table with nested column and measure blocks, then relationship and
// role blocks. The rendering is intended for review and diffing alongside
// the JSON artifact.
func (d *Document) WriteTMDL(w io.Writer) error {
	tw := &tmdlWriter{w: w}

	tw.linef("model %s", tmdlName(d.Name))
	if d.Description != "" {
		tw.propf(1, "description", d.Description)
	}

	for _, t := range d.Tables {
		tw.blank()
		tw.linef("table %s", tmdlName(t.Name))
		tw.propf(1, "mode", t.Mode)
		if t.Description != "" {
			tw.propf(1, "description", t.Description)
		}
		if t.Source != nil {
			writeSource(tw, t.Source)
		}
		for _, c := range t.Columns {
			writeColumn(tw, c, "column")
		}
		for _, c := range t.CalculatedColumns {
			writeColumn(tw, c, "calculatedColumn")
		}
		for _, m := range t.Measures {
			writeMeasure(tw, m)
		}
	}

	if len(d.Measures) > 0 {
		tw.blank()
		tw.linef("table %s", tmdlName("_Measures"))
		for _, m := range d.Measures {
			writeMeasure(tw, m)
		}
	}

	for _, r := range d.Relationships {
		tw.blank()
		tw.linef("relationship %s", r.Name)
		tw.propf(1, "fromColumn", r.FromTable+"."+r.FromColumn)
		tw.propf(1, "toColumn", r.ToTable+"."+r.ToColumn)
		tw.propf(1, "cardinality", r.Cardinality)
		tw.propf(1, "crossFilteringBehavior", r.CrossFilter)
	}

	for _, h := range d.Hierarchies {
		tw.blank()
		tw.linef("hierarchy %s", tmdlName(h.Name))
		tw.propf(1, "levels", strings.Join(h.Levels, ", "))
	}

	for _, role := range d.Roles {
		tw.blank()
		tw.linef("role %s", tmdlName(role.Name))
		for _, p := range role.Permissions {
			tw.indentf(1, "tablePermission %s = %s", tmdlName(p.Table), p.Filter)
		}
		for _, m := range role.Members {
			tw.propf(1, "member", m)
		}
	}

	return tw.err
}

func writeSource(tw *tmdlWriter, s *SourceNode) {
	if s.Query != "" {
		tw.propf(1, "source", s.Query)
	}
	if s.Schema != "" {
		tw.propf(1, "schema", s.Schema)
	}
	if s.Server != "" {
		tw.propf(1, "server", s.Server)
	}
	if s.ResourceID != "" {
		tw.propf(1, "resourceId", s.ResourceID)
	}
}

func writeColumn(tw *tmdlWriter, c ColumnNode, keyword string) {
	tw.blank()
	if c.Expression != "" {
		tw.indentf(1, "%s %s = %s", keyword, tmdlName(c.Name), flatten(c.Expression))
	} else {
		tw.indentf(1, "%s %s", keyword, tmdlName(c.Name))
	}
	tw.propf(2, "dataType", c.DataType)
	if c.Description != "" {
		tw.propf(2, "description", c.Description)
	}
	if c.FormatString != "" {
		tw.propf(2, "formatString", c.FormatString)
	}
}

func writeMeasure(tw *tmdlWriter, m MeasureNode) {
	tw.blank()
	tw.indentf(1, "measure %s = %s", tmdlName(m.Name), flatten(m.Expression))
	if m.Description != "" {
		tw.propf(2, "description", m.Description)
	}
	if m.FormatString != "" {
		tw.propf(2, "formatString", m.FormatString)
	}
	if m.Folder != "" {
		tw.propf(2, "displayFolder", m.Folder)
	}
}

// tmdlName quotes a name when it contains whitespace.
func tmdlName(name string) string {
	if strings.ContainsAny(name, " \t") {
		return "'" + name + "'"
	}
	return name
}

// flatten collapses a multi-line expression onto one line for the text
// rendering; the JSON artifact keeps the original form.
func flatten(expr string) string {
	lines := strings.Split(expr, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	out := strings.Join(lines, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(out), " "))
}

// tmdlWriter accumulates the first write error so rendering code stays
// linear.
type tmdlWriter struct {
	w   io.Writer
	err error
}

func (tw *tmdlWriter) write(s string) {
	if tw.err != nil {
		return
	}
	_, tw.err = io.WriteString(tw.w, s)
}

func (tw *tmdlWriter) linef(format string, args ...any) {
	tw.write(fmt.Sprintf(format, args...) + "\n")
}

func (tw *tmdlWriter) indentf(level int, format string, args ...any) {
	tw.write(strings.Repeat("\t", level) + fmt.Sprintf(format, args...) + "\n")
}

func (tw *tmdlWriter) propf(level int, key, value string) {
	tw.indentf(level, "%s: %s", key, value)
}

func (tw *tmdlWriter) blank() {
	tw.write("\n")
}
