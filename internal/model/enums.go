package model

import (
	"fmt"
	"strings"
)

// Enum identifies an enumerated field for normalization and error reporting.
type Enum string

// Enum constants for the normalized field kinds.
const (
	EnumDataType    Enum = "dataType"
	EnumTableMode   Enum = "mode"
	EnumCardinality Enum = "cardinality"
	EnumCrossFilter Enum = "crossFilterDirection"
)

// Canonical data type strings as emitted in compiled documents.
const (
	TypeString   = "string"
	TypeInt64    = "int64"
	TypeDecimal  = "decimal"
	TypeDateTime = "dateTime"
	TypeBoolean  = "boolean"
	TypeDouble   = "double"
)

// Canonical table modes.
const (
	ModeImport     = "Import"
	ModeDirectLake = "DirectLake"
)

// Canonical relationship cardinalities.
const (
	CardinalityManyToOne  = "manyToOne"
	CardinalityOneToMany  = "oneToMany"
	CardinalityOneToOne   = "oneToOne"
	CardinalityManyToMany = "manyToMany"
)

// Canonical cross-filter directions.
const (
	CrossFilterOneDirection  = "oneDirection"
	CrossFilterBothDirections = "bothDirections"
	CrossFilterNone          = "none"
)

// Alias tables map every accepted spelling (lowercased) to one canonical
// wire-format string. They are initialized once and never written after
// startup, so concurrent reads are safe.
var dataTypeAliases = map[string]string{
	"string":   TypeString,
	"text":     TypeString,
	"int64":    TypeInt64,
	"int":      TypeInt64,
	"integer":  TypeInt64,
	"decimal":  TypeDecimal,
	"currency": TypeDecimal,
	"datetime": TypeDateTime,
	"date":     TypeDateTime,
	"boolean":  TypeBoolean,
	"bool":     TypeBoolean,
	"double":   TypeDouble,
	"float":    TypeDouble,
	"number":   TypeDouble,
}

var tableModeAliases = map[string]string{
	"import":      ModeImport,
	"directlake":  ModeDirectLake,
	"direct_lake": ModeDirectLake,
	"direct-lake": ModeDirectLake,
}

var cardinalityAliases = map[string]string{
	"manytoone":    CardinalityManyToOne,
	"many-to-one":  CardinalityManyToOne,
	"many_to_one":  CardinalityManyToOne,
	"onetomany":    CardinalityOneToMany,
	"one-to-many":  CardinalityOneToMany,
	"one_to_many":  CardinalityOneToMany,
	"onetoone":     CardinalityOneToOne,
	"one-to-one":   CardinalityOneToOne,
	"one_to_one":   CardinalityOneToOne,
	"manytomany":   CardinalityManyToMany,
	"many-to-many": CardinalityManyToMany,
	"many_to_many": CardinalityManyToMany,
}

var crossFilterAliases = map[string]string{
	"onedirection":   CrossFilterOneDirection,
	"single":         CrossFilterOneDirection,
	"one":            CrossFilterOneDirection,
	"bothdirections": CrossFilterBothDirections,
	"both":           CrossFilterBothDirections,
	"none":           CrossFilterNone,
}

// UnknownEnumValueError reports a value that matches no accepted spelling of
// an enumerated field. It is a hard failure: unrecognized strings are never
// passed through to the compiled document.
type UnknownEnumValueError struct {
	Enum  Enum
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Enum, e.Value)
}

// NormalizeDataType canonicalizes a column data type.
func NormalizeDataType(value string) (string, error) {
	return normalize(EnumDataType, dataTypeAliases, value)
}

// NormalizeTableMode canonicalizes a table storage mode.
func NormalizeTableMode(value string) (string, error) {
	return normalize(EnumTableMode, tableModeAliases, value)
}

// NormalizeCardinality canonicalizes a relationship cardinality.
func NormalizeCardinality(value string) (string, error) {
	return normalize(EnumCardinality, cardinalityAliases, value)
}

// NormalizeCrossFilter canonicalizes a relationship cross-filter direction.
func NormalizeCrossFilter(value string) (string, error) {
	return normalize(EnumCrossFilter, crossFilterAliases, value)
}

// normalize looks up value in the alias table, ignoring case and surrounding
// whitespace. Normalizing an already-canonical value returns it unchanged.
func normalize(enum Enum, aliases map[string]string, value string) (string, error) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", &UnknownEnumValueError{Enum: enum, Value: value}
	}
	return canonical, nil
}
