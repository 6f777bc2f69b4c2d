package sqlast

import (
	"fmt"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/zzzzz1st/datajunction/catalog"
)

// ansiQuotesOptions is the ParserOptions this adapter always parses with.
// Turning AnsiQuotes on makes a double-quoted token an identifier rather
// than a string literal, the same SQL_MODE switch the teacher exercises
// in enginetest/queries/ansi_quotes_queries.go ("When ANSI_QUOTES mode is
// enabled, double quotes become identifier quotes") — without it, dotted
// quoted identifiers like "core.num_comments" in spec.md scenario 6 would
// parse as string literals instead of identifiers.
var ansiQuotesOptions = sqlparser.ParserOptions{AnsiQuotes: true}

// Parse parses sql as a single ANSI-dialect SELECT statement and returns
// it in the adapter's own AST vocabulary. It fails with
// catalog.ErrInvalidSQL on anything the underlying parser rejects, or on
// anything that isn't a single SELECT.
func Parse(sql string) (*Select, error) {
	stmt, _, err := sqlparser.ParseOneWithOptions(sql, ansiQuotesOptions)
	if err != nil {
		return nil, catalog.ErrInvalidSQL.New(err.Error())
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, catalog.ErrInvalidSQL.New(fmt.Sprintf("expected a single SELECT, got %T", stmt))
	}

	return convertSelect(sel)
}
