// Package loader reads declarative model definition files. A definition is
// one YAML document describing the whole object graph for a model: tables
// with columns and measures, relationships, model-level measures,
// hierarchies, and roles. Expressions may reference template parameters
// declared in the same file; they are expanded exactly once, while the
// graph is being built.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weftlabs/weft/internal/model"
	"github.com/weftlabs/weft/internal/template"
)

// definitionFile mirrors the YAML document. Unknown fields anywhere in the
// document are rejected so typos fail loudly instead of being dropped.
type definitionFile struct {
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	Params        map[string]string `yaml:"params"`
	Tables        []tableDef        `yaml:"tables"`
	Relationships []relationshipDef `yaml:"relationships"`
	Measures      []measureDef      `yaml:"measures"`
	Hierarchies   []hierarchyDef    `yaml:"hierarchies"`
	Roles         []roleDef         `yaml:"roles"`
}

type tableDef struct {
	Name        string `yaml:"name"`
	Mode        string `yaml:"mode"`
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
	Schema      string `yaml:"schema"`
	Server      string `yaml:"server"`
	ResourceID  string `yaml:"resource_id"`

	Columns           []columnDef  `yaml:"columns"`
	CalculatedColumns []columnDef  `yaml:"calculated_columns"`
	Measures          []measureDef `yaml:"measures"`
}

type columnDef struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Expression  string `yaml:"expression"`
}

type measureDef struct {
	Name        string `yaml:"name"`
	Expression  string `yaml:"expression"`
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Folder      string `yaml:"folder"`
}

type relationshipDef struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Cardinality string `yaml:"cardinality"`
	CrossFilter string `yaml:"cross_filter"`
	Description string `yaml:"description"`
}

type hierarchyDef struct {
	Name        string   `yaml:"name"`
	Levels      []string `yaml:"levels"`
	Description string   `yaml:"description"`
}

type roleDef struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Permissions []permissionDef `yaml:"permissions"`
	Members     []string        `yaml:"members"`
}

type permissionDef struct {
	Table  string `yaml:"table"`
	Filter string `yaml:"filter"`
}

// ParseError reports a definition file that could not be read or decoded.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// LoadFile reads one model definition file and builds the object graph.
// Enum aliases and template parameters are resolved here, so input errors
// (unknown enum values, missing parameters) surface immediately with file
// context.
func LoadFile(path string) (*model.Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(path, content)
}

// Parse decodes a definition document and builds the object graph. The path
// is used for error context and for defaulting the model name.
func Parse(path string, content []byte) (*model.Model, error) {
	def, err := decode(path, content)
	if err != nil {
		return nil, err
	}

	if def.Name == "" {
		base := filepath.Base(path)
		def.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return build(path, def)
}

// decode unmarshals the YAML document, rejecting unknown fields.
func decode(path string, content []byte) (*definitionFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var def definitionFile
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{File: path, Message: "definition is empty"}
		}
		return nil, &ParseError{File: path, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	return &def, nil
}

// build constructs the model graph from a decoded definition.
func build(path string, def *definitionFile) (*model.Model, error) {
	m := model.NewModel(def.Name)
	m.Description = def.Description

	expand := func(context, expr string) (string, error) {
		expanded, err := template.Expand(expr, def.Params)
		if err != nil {
			return "", fmt.Errorf("%s: %s: %w", path, context, err)
		}
		return expanded, nil
	}

	for _, td := range def.Tables {
		t, err := buildTable(path, td, expand)
		if err != nil {
			return nil, err
		}
		m.AddTable(t)
	}

	for _, rd := range def.Relationships {
		rel, err := buildRelationship(path, rd)
		if err != nil {
			return nil, err
		}
		m.AddRelationship(rel)
	}

	for _, md := range def.Measures {
		ms, err := buildMeasure("model", md, expand)
		if err != nil {
			return nil, err
		}
		m.AddMeasure(ms)
	}

	for _, hd := range def.Hierarchies {
		m.AddHierarchy(&model.Hierarchy{
			Name:        hd.Name,
			Levels:      hd.Levels,
			Description: hd.Description,
		})
	}

	for _, rd := range def.Roles {
		role := model.NewRole(rd.Name)
		role.Description = rd.Description
		for _, p := range rd.Permissions {
			filter, err := expand(fmt.Sprintf("role %q", rd.Name), p.Filter)
			if err != nil {
				return nil, err
			}
			role.AddTablePermission(p.Table, filter)
		}
		for _, member := range rd.Members {
			role.AddMember(member)
		}
		m.AddRole(role)
	}

	return m, nil
}

func buildTable(path string, td tableDef, expand func(context, expr string) (string, error)) (*model.Table, error) {
	mode := td.Mode
	if mode == "" {
		mode = model.ModeImport
	}

	t, err := model.NewTable(td.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: table %q: %w", path, td.Name, err)
	}
	t.Description = td.Description
	t.SourceQuery = td.Source
	t.Schema = td.Schema
	t.SQLServer = td.Server
	t.DirectLakeResourceID = td.ResourceID

	for _, cd := range td.Columns {
		if cd.Type == "" {
			return nil, &ParseError{File: path, Message: fmt.Sprintf("table %q: column %q: type is required", td.Name, cd.Name)}
		}
		c, err := model.NewColumn(cd.Name, cd.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: table %q: column %q: %w", path, td.Name, cd.Name, err)
		}
		c.Description = cd.Description
		c.FormatString = cd.Format
		t.AddColumn(c)
	}

	for _, cd := range td.CalculatedColumns {
		if cd.Type == "" {
			return nil, &ParseError{File: path, Message: fmt.Sprintf("table %q: calculated column %q: type is required", td.Name, cd.Name)}
		}
		expr, err := expand(fmt.Sprintf("table %q: calculated column %q", td.Name, cd.Name), cd.Expression)
		if err != nil {
			return nil, err
		}
		c, err := model.NewCalculatedColumn(cd.Name, cd.Type, expr)
		if err != nil {
			return nil, fmt.Errorf("%s: table %q: calculated column %q: %w", path, td.Name, cd.Name, err)
		}
		c.Description = cd.Description
		c.FormatString = cd.Format
		t.AddCalculatedColumn(c)
	}

	for _, md := range td.Measures {
		ms, err := buildMeasure(fmt.Sprintf("table %q", td.Name), md, expand)
		if err != nil {
			return nil, err
		}
		t.AddMeasure(ms)
	}

	return t, nil
}

func buildMeasure(scope string, md measureDef, expand func(context, expr string) (string, error)) (*model.Measure, error) {
	expr, err := expand(fmt.Sprintf("%s: measure %q", scope, md.Name), md.Expression)
	if err != nil {
		return nil, err
	}
	ms := model.NewMeasure(md.Name, expr)
	ms.Description = md.Description
	ms.FormatString = md.Format
	ms.Folder = md.Folder
	return ms, nil
}

func buildRelationship(path string, rd relationshipDef) (*model.Relationship, error) {
	fromTable, fromColumn, err := splitRef(rd.From)
	if err != nil {
		return nil, &ParseError{File: path, Message: fmt.Sprintf("relationship from %q: %v", rd.From, err)}
	}
	toTable, toColumn, err := splitRef(rd.To)
	if err != nil {
		return nil, &ParseError{File: path, Message: fmt.Sprintf("relationship to %q: %v", rd.To, err)}
	}

	cardinality := rd.Cardinality
	if cardinality == "" {
		cardinality = model.CardinalityManyToOne
	}
	crossFilter := rd.CrossFilter
	if crossFilter == "" {
		crossFilter = model.CrossFilterOneDirection
	}

	rel, err := model.NewRelationship(fromTable, fromColumn, toTable, toColumn, cardinality, crossFilter)
	if err != nil {
		return nil, fmt.Errorf("%s: relationship %s -> %s: %w", path, rd.From, rd.To, err)
	}
	rel.Description = rd.Description
	return rel, nil
}

// splitRef splits a "Table.Column" reference.
func splitRef(ref string) (table, column string, err error) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected Table.Column reference")
	}
	return parts[0], parts[1], nil
}

// LoadDir scans a directory tree for model definition files (*.yaml or
// *.yml, hidden files skipped) and loads each one. Files are visited in
// lexical order, so the result is deterministic.
func LoadDir(dir string) ([]*model.Model, error) {
	var models []*model.Model

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		ext := filepath.Ext(d.Name())
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		m, err := LoadFile(path)
		if err != nil {
			return err
		}
		models = append(models, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan definitions: %w", err)
	}

	return models, nil
}
