// Package catalog holds the persisted entity model for the metric DAG:
// databases, tables, columns and nodes, plus the CreateQuery artifact
// emitted by a build. The core only ever sees a read-only Snapshot of
// these types; mutation is the loader's job.
package catalog

// ColumnType is the closed set of column types the core understands.
type ColumnType string

// The closed set of column types recognized by the core.
const (
	ColumnTypeInt      ColumnType = "INT"
	ColumnTypeFloat    ColumnType = "FLOAT"
	ColumnTypeStr      ColumnType = "STR"
	ColumnTypeBool     ColumnType = "BOOL"
	ColumnTypeDate     ColumnType = "DATE"
	ColumnTypeDatetime ColumnType = "DATETIME"
	ColumnTypeTime     ColumnType = "TIME"
	ColumnTypeTimedelta ColumnType = "TIMEDELTA"
	ColumnTypeList     ColumnType = "LIST"
	ColumnTypeDict     ColumnType = "DICT"
)

// Column is a named, typed field on a Table or Node.
type Column struct {
	Name string
	Type ColumnType
}

// Database identifies a backend an executor can run queries against.
// Cost is a strictly-positive scalar; lower is preferred by the planner.
type Database struct {
	ID   int
	Name string
	URI  string
	Cost float64
}

// Table is a physical table backing a source Node in one Database.
type Table struct {
	ID       int
	Database *Database
	Catalog  string // optional
	Schema   string // optional
	Table    string
	Columns  []Column
}

// HasColumns reports whether t defines every name in names. Used by the
// planner to exclude a database whose physical table for a source is
// missing a column a node's expression actually references (spec §4.4
// scenario 3: two databases can each have "a table" for a source while
// only one of them has every referenced column).
func (t *Table) HasColumns(names []string) bool {
	have := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		have[c.Name] = true
	}
	for _, n := range names {
		if !have[n] {
			return false
		}
	}
	return true
}

// QualifiedName returns the dotted catalog.schema.table reference used in
// a FROM clause, omitting absent parts.
func (t *Table) QualifiedName() string {
	name := t.Table
	if t.Schema != "" {
		name = t.Schema + "." + name
	}
	if t.Catalog != "" {
		name = t.Catalog + "." + name
	}
	return name
}

// Node is a named SQL entity in the DAG: either a physical source (no
// Expression) or a derived expression over its Parents.
type Node struct {
	Name       string
	Expression string // empty for source nodes
	Tables     []*Table
	Columns    []Column
	Parents    []*Node
}

// IsSource reports whether n has no expression, i.e. is a leaf backed
// directly by physical tables.
func (n *Node) IsSource() bool {
	return n.Expression == ""
}

// CreateQuery is the artifact handed to the (out-of-scope) executor.
type CreateQuery struct {
	DatabaseID     int
	SubmittedQuery string
}
