package build

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/sqlast"
)

// COMPARISONS is the recognized operator set for the filter mini-syntax
// (spec §4.4, §6.4): `<col><op><literal>` with no whitespace between
// tokens.
var COMPARISONS = map[string]bool{
	">":  true,
	"<":  true,
	">=": true,
	"<=": true,
	"=":  true,
	"!=": true,
}

// filterPattern recognizes a bare column name followed by a run of
// comparison-operator characters and a trailing literal. The operator
// itself is validated against COMPARISONS afterwards, so an unrecognized
// combination like `<>` still splits cleanly and reports InvalidOperation
// rather than InvalidFilter.
var filterPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)([<>=!]{1,2})(.+)$`)

// GetFilter parses text as `<column><op><literal>` against columnsByName
// and returns the resulting comparison expression (spec §4.4).
func GetFilter(columnsByName map[string]catalog.Column, text string) (sqlast.Expr, error) {
	m := filterPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, catalog.ErrInvalidFilter.New(text)
	}
	col, op, literal := m[1], m[2], m[3]

	if !COMPARISONS[op] {
		return nil, catalog.ErrInvalidOperation.New(op, validOperations())
	}
	if _, known := columnsByName[col]; !known {
		return nil, catalog.ErrInvalidColumn.New(col)
	}
	value, err := parseLiteral(literal)
	if err != nil {
		return nil, catalog.ErrInvalidValue.New(literal)
	}
	return &sqlast.BinaryOp{Left: sqlast.NewIdentifier(col), Op: op, Right: value}, nil
}

func validOperations() string {
	ops := make([]string, 0, len(COMPARISONS))
	for op := range COMPARISONS {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return strings.Join(ops, ", ")
}

// parseLiteral recognizes exactly the literal kinds spec §6.4 allows:
// integer, float, single-quoted string, true, false, null. Anything else
// — in particular any expression — is rejected, which is what makes
// get_filter safe against injection (spec §8 P6).
func parseLiteral(literal string) (*sqlast.Value, error) {
	switch literal {
	case "true", "false":
		return &sqlast.Value{Kind: sqlast.ValueBool, Literal: literal}, nil
	case "null":
		return &sqlast.Value{Kind: sqlast.ValueNull, Literal: "null"}, nil
	}

	if len(literal) >= 2 && literal[0] == '\'' && literal[len(literal)-1] == '\'' {
		unquoted := strings.ReplaceAll(literal[1:len(literal)-1], "''", "'")
		return &sqlast.Value{Kind: sqlast.ValueString, Literal: unquoted}, nil
	}

	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return &sqlast.Value{Kind: sqlast.ValueInt, Literal: literal}, nil
	}
	// ParseFloat also accepts "inf", "infinity" and "nan", which would be
	// emitted unquoted and read back as identifiers, so those are refused.
	if f, err := strconv.ParseFloat(literal, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return &sqlast.Value{Kind: sqlast.ValueFloat, Literal: literal}, nil
	}

	return nil, catalog.ErrInvalidValue.New(literal)
}
