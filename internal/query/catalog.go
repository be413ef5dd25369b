// Package query implements the dynamic filter and pagination engine shared
// by every list endpoint. Callers describe a record type through a Catalog
// and the engine turns loosely-typed query parameters into bounded,
// parameterised SQL.
package query

import "strings"

// FieldType classifies a catalog column for filtering purposes.
type FieldType string

const (
	FieldText       FieldType = "text"
	FieldInteger    FieldType = "integer"
	FieldReal       FieldType = "real"
	FieldDate       FieldType = "date"
	FieldForeignKey FieldType = "foreign_key"
)

// Field describes one filterable column of a record type.
type Field struct {
	// Name is the public filter/sort key.
	Name string
	// Column is the SQL column the key maps to. Empty means same as Name.
	Column string
	Type   FieldType
	// Searchable marks text fields that participate in the free-text
	// `search` filter.
	Searchable bool
}

// Catalog is the static description of a record type: its table, primary
// key and the closed set of fields filters and sorts may reference.
// Catalogs are built at package init time and never mutated.
type Catalog struct {
	Table      string
	PrimaryKey string
	Fields     []Field
}

// Lookup returns the field registered under name.
func (c Catalog) Lookup(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SearchFields returns the text fields participating in free-text search,
// in declaration order.
func (c Catalog) SearchFields() []Field {
	var fields []Field
	for _, f := range c.Fields {
		if f.Type == FieldText && f.Searchable {
			fields = append(fields, f)
		}
	}
	return fields
}

// Columns renders the SELECT column list in declaration order.
func (c Catalog) Columns() string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = f.SQLColumn()
	}
	return strings.Join(cols, ", ")
}

// SQLColumn resolves the column a field reads from.
func (f Field) SQLColumn() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}
