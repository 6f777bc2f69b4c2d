package sqlast

import (
	"fmt"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/zzzzz1st/datajunction/catalog"
)

// convertSelect walks a vitess *sqlparser.Select and produces the
// adapter's own *Select, the one statement shape the rest of the core
// ever sees (spec §4.5 step 1: every build input is a single SELECT).
func convertSelect(s *sqlparser.Select) (*Select, error) {
	projections := make([]Projection, 0, len(s.SelectExprs))
	for _, se := range s.SelectExprs {
		p, err := convertSelectExpr(se)
		if err != nil {
			return nil, err
		}
		projections = append(projections, p)
	}

	from, err := convertTableExprs(s.From)
	if err != nil {
		return nil, err
	}

	var where *Where
	if s.Where != nil {
		expr, err := convertExpr(s.Where.Expr)
		if err != nil {
			return nil, err
		}
		where = &Where{Expr: expr}
	}

	var groupBy *GroupBy
	if len(s.GroupBy) > 0 {
		exprs := make([]Expr, 0, len(s.GroupBy))
		for _, e := range s.GroupBy {
			conv, err := convertExpr(e)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, conv)
		}
		groupBy = &GroupBy{Exprs: exprs}
	}

	return &Select{
		Projections: projections,
		From:        from,
		Where:       where,
		GroupBy:     groupBy,
	}, nil
}

func convertSelectExpr(se sqlparser.SelectExpr) (Projection, error) {
	switch e := se.(type) {
	case *sqlparser.StarExpr:
		return Projection{Expr: &Star{}}, nil
	case *sqlparser.AliasedExpr:
		expr, err := convertExpr(e.Expr)
		if err != nil {
			return Projection{}, err
		}
		as := ""
		if !e.As.IsEmpty() {
			as = e.As.String()
		}
		return Projection{Expr: expr, As: as}, nil
	default:
		return Projection{}, catalog.ErrInvalidSQL.New(fmt.Sprintf("unsupported select expression %T", se))
	}
}

// convertTableExprs flattens vitess's (possibly joined) table expression
// tree into an ordered list of table references. The Dependency Analyzer
// (spec §4.2) only cares about the identifiers that appear in FROM/JOIN
// position, never about the join condition's shape, so flattening here
// loses nothing the core needs.
func convertTableExprs(exprs sqlparser.TableExprs) ([]TableRef, error) {
	var refs []TableRef
	for _, te := range exprs {
		flattened, err := flattenTableExpr(te)
		if err != nil {
			return nil, err
		}
		refs = append(refs, flattened...)
	}
	return refs, nil
}

func flattenTableExpr(te sqlparser.TableExpr) ([]TableRef, error) {
	switch t := te.(type) {
	case *sqlparser.AliasedTableExpr:
		name, ok := t.Expr.(sqlparser.TableName)
		if !ok {
			return nil, catalog.ErrInvalidSQL.New(fmt.Sprintf("unsupported table expression %T", t.Expr))
		}
		ref := TableRef{Name: tableNameToIdentifier(name)}
		if !t.As.IsEmpty() {
			ref.As = t.As.String()
		}
		return []TableRef{ref}, nil
	case *sqlparser.JoinTableExpr:
		left, err := flattenTableExpr(t.LeftExpr)
		if err != nil {
			return nil, err
		}
		right, err := flattenTableExpr(t.RightExpr)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *sqlparser.ParenTableExpr:
		return convertTableExprs(t.Exprs)
	default:
		return nil, catalog.ErrInvalidSQL.New(fmt.Sprintf("unsupported table expression %T", te))
	}
}

func tableNameToIdentifier(name sqlparser.TableName) *Identifier {
	var parts []string
	if !name.Qualifier.IsEmpty() {
		parts = append(parts, name.Qualifier.String())
	}
	parts = append(parts, name.Name.String())
	return NewIdentifier(parts...)
}

func colNameToIdentifier(cn *sqlparser.ColName) *Identifier {
	var parts []string
	if !cn.Qualifier.IsEmpty() {
		if !cn.Qualifier.Qualifier.IsEmpty() {
			parts = append(parts, cn.Qualifier.Qualifier.String())
		}
		parts = append(parts, cn.Qualifier.Name.String())
	}
	parts = append(parts, cn.Name.String())
	return NewIdentifier(parts...)
}

func convertExpr(e sqlparser.Expr) (Expr, error) {
	switch expr := e.(type) {
	case *sqlparser.ColName:
		return colNameToIdentifier(expr), nil
	case *sqlparser.FuncExpr:
		return convertFuncExpr(expr)
	case *sqlparser.ComparisonExpr:
		left, err := convertExpr(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(expr.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Left: left, Op: expr.Operator, Right: right}, nil
	case *sqlparser.AndExpr:
		left, err := convertExpr(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(expr.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Left: left, Op: "AND", Right: right}, nil
	case *sqlparser.OrExpr:
		left, err := convertExpr(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(expr.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Left: left, Op: "OR", Right: right}, nil
	case *sqlparser.SQLVal:
		return convertSQLVal(expr)
	case *sqlparser.NullVal:
		return &Value{Kind: ValueNull, Literal: "null"}, nil
	case *sqlparser.ParenExpr:
		return convertExpr(expr.Expr)
	default:
		return nil, catalog.ErrInvalidSQL.New(fmt.Sprintf("unsupported expression %T", e))
	}
}

func convertFuncExpr(e *sqlparser.FuncExpr) (*Function, error) {
	args := make([]Expr, 0, len(e.Exprs))
	for _, a := range e.Exprs {
		switch arg := a.(type) {
		case *sqlparser.StarExpr:
			// COUNT(*) round-trips through this adapter as count('*') —
			// a single-quoted string literal standing in for the star —
			// matching spec.md's own worked examples (scenarios 1, 2, 6)
			// rather than re-emitting a bare `*`.
			args = append(args, &Value{Kind: ValueString, Literal: "*"})
		case *sqlparser.AliasedExpr:
			conv, err := convertExpr(arg.Expr)
			if err != nil {
				return nil, err
			}
			args = append(args, conv)
		default:
			return nil, catalog.ErrInvalidSQL.New(fmt.Sprintf("unsupported function argument %T", a))
		}
	}
	return &Function{Name: e.Name.String(), Args: args}, nil
}

func convertSQLVal(v *sqlparser.SQLVal) (*Value, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return &Value{Kind: ValueString, Literal: string(v.Val)}, nil
	case sqlparser.IntVal:
		return &Value{Kind: ValueInt, Literal: string(v.Val)}, nil
	case sqlparser.FloatVal:
		return &Value{Kind: ValueFloat, Literal: string(v.Val)}, nil
	default:
		return nil, catalog.ErrInvalidSQL.New(fmt.Sprintf("unsupported literal type %v", v.Type))
	}
}
