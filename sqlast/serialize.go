package sqlast

import (
	"strconv"
	"strings"
)

// needsQuoting reports whether a bare identifier part must be rendered
// double-quoted to round-trip. Unquoted SQL identifiers case-fold, so
// anything other than a lowercase letter, digit, or underscore — an
// uppercase letter, a dot, whitespace, a quote character — must be
// quoted to preserve it exactly. This is the same convention a SQL
// engine's default identifier preparer applies, and is the "physical
// name" half of SPEC_FULL.md §5's quoting rule; the "node name" half is
// Identifier.Quoted, set by whoever constructed the identifier.
func needsQuoting(part string) bool {
	for _, r := range part {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			continue
		}
		return true
	}
	return false
}

func quoteIdentPart(part string) string {
	escaped := strings.ReplaceAll(part, `"`, `""`)
	return `"` + escaped + `"`
}

// writeAliasName renders a projection alias, quoting unconditionally when
// forced (the alias names a node rather than a plain column) and otherwise
// falling back to the same needs-quoting check as a bare identifier part.
func writeAliasName(name string, forceQuoted bool) string {
	if forceQuoted || needsQuoting(name) {
		return quoteIdentPart(name)
	}
	return name
}

// Serialize renders an expression or statement back to SQL text. It is
// stable: the same AST always serializes to the same string (spec §8
// P4), and the output is re-parseable ANSI-quoted SQL.
func Serialize(n interface{}) string {
	var sb strings.Builder
	switch v := n.(type) {
	case *Select:
		writeSelect(&sb, v)
	case Expr:
		writeExpr(&sb, v)
	default:
		panic("sqlast: Serialize called on unsupported node type")
	}
	return sb.String()
}

func writeSelect(sb *strings.Builder, s *Select) {
	sb.WriteString("SELECT ")
	for i, p := range s.Projections {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, p.Expr)
		if p.As != "" {
			sb.WriteString(" AS ")
			sb.WriteString(writeAliasName(p.As, p.QuotedAs))
		}
	}

	for i, f := range s.From {
		if i == 0 {
			sb.WriteString(" \nFROM ")
		} else {
			sb.WriteString(", ")
		}
		if f.Subquery != "" {
			sb.WriteString("(")
			sb.WriteString(f.Subquery)
			sb.WriteString(")")
		} else {
			writeIdentifier(sb, f.Name)
		}
		if f.As != "" {
			sb.WriteString(" AS ")
			sb.WriteString(quoteIdentPart(f.As))
		}
	}

	if s.Where != nil {
		sb.WriteString(" \nWHERE ")
		writeExpr(sb, s.Where.Expr)
	}

	if s.GroupBy != nil && len(s.GroupBy.Exprs) > 0 {
		sb.WriteString(" GROUP BY ")
		for i, e := range s.GroupBy.Exprs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, e)
		}
	}
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch v := e.(type) {
	case *Identifier:
		writeIdentifier(sb, v)
	case *Function:
		// Function names are lowercased on output, matching the literal
		// `count('*')` shape spec.md's worked examples expect rather
		// than `COUNT('*')`.
		sb.WriteString(strings.ToLower(v.Name))
		sb.WriteString("(")
		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, a)
		}
		sb.WriteString(")")
	case *BinaryOp:
		writeExpr(sb, v.Left)
		sb.WriteString(" ")
		sb.WriteString(v.Op)
		sb.WriteString(" ")
		writeExpr(sb, v.Right)
	case *Alias:
		writeExpr(sb, v.Expr)
		sb.WriteString(" AS ")
		sb.WriteString(quoteIdentPart(v.As))
	case *Value:
		writeValue(sb, v)
	case *Star:
		sb.WriteString("*")
	default:
		panic("sqlast: unsupported expression in Serialize")
	}
}

func writeIdentifier(sb *strings.Builder, id *Identifier) {
	for i, p := range id.Parts {
		if i > 0 {
			sb.WriteString(".")
		}
		if p.Quoted || needsQuoting(p.Name) {
			sb.WriteString(quoteIdentPart(p.Name))
		} else {
			sb.WriteString(p.Name)
		}
	}
}

func writeValue(sb *strings.Builder, v *Value) {
	switch v.Kind {
	case ValueString:
		sb.WriteString("'")
		sb.WriteString(strings.ReplaceAll(v.Literal, "'", "''"))
		sb.WriteString("'")
	case ValueInt, ValueFloat:
		sb.WriteString(v.Literal)
	case ValueBool:
		b, _ := strconv.ParseBool(v.Literal)
		if b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case ValueNull:
		sb.WriteString("NULL")
	}
}
