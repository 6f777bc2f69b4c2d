// Package transpile implements the Transpiler (spec §4.3): given a node,
// it produces backend SQL text by resolving every parent reference to
// either its physical table (source node) or a recursively transpiled,
// aliased subquery (derived node).
package transpile

import (
	"strings"

	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/dependency"
	"github.com/zzzzz1st/datajunction/sqlast"
)

// GetQuery returns the backend SQL for node. It is reentrant and holds no
// state across calls; recursion depth equals node's depth in the DAG
// (spec §5 and §4.3 both call out at least 64 levels as the floor a
// stack-based implementation must support, which plain Go recursion
// satisfies).
func GetQuery(node *catalog.Node) (string, error) {
	return getQuery(node, map[string]bool{})
}

func getQuery(node *catalog.Node, path map[string]bool) (string, error) {
	if node.IsSource() {
		return sourceQuery(node), nil
	}

	// path guards against a cycle reappearing on the same recursive
	// branch; the catalog is expected to already satisfy the DAG
	// acyclicity invariant (spec §3 P1), so this only ever fires if that
	// invariant is violated upstream.
	if path[node.Name] {
		return "", catalog.ErrUnknownParent.New(node.Name)
	}
	path = markVisited(path, node.Name)

	sel, err := sqlast.Parse(node.Expression)
	if err != nil {
		return "", err
	}

	parentsByName := make(map[string]*catalog.Node, len(node.Parents))
	for _, p := range node.Parents {
		parentsByName[p.Name] = p
	}

	deps := dependency.GetDependencies(sel)
	for name := range deps {
		if _, ok := parentsByName[name]; !ok {
			return "", catalog.ErrUnknownParent.New(name)
		}
	}

	subqueries := make(map[string]string, len(deps))
	for _, name := range dependency.Names(deps) {
		inner, err := getQuery(parentsByName[name], path)
		if err != nil {
			return "", err
		}
		subqueries[name] = inner
	}

	if err := rewriteFrom(sel, subqueries); err != nil {
		return "", err
	}
	if err := rewriteColumnRefs(sel, parentsByName); err != nil {
		return "", err
	}

	return sqlast.Serialize(sel), nil
}

// sourceQuery emits SELECT <table>.<col1> AS <col1>, ... FROM
// <catalog.schema.table> for a source node, one table per Table (typically
// there is exactly one; multiple physical tables on a source node are
// unioned by the catalog before reaching here in real deployments, out of
// scope for the core). Each column is qualified by the table's own
// (unqualified) name, not its full catalog/schema path, matching ordinary
// column-qualification convention.
func sourceQuery(node *catalog.Node) string {
	sel := &sqlast.Select{}
	tableName := primaryTableName(node)
	for _, col := range node.Columns {
		var expr sqlast.Expr = sqlast.NewIdentifier(col.Name)
		if tableName != "" {
			expr = sqlast.NewIdentifier(tableName, col.Name)
		}
		sel.Projections = append(sel.Projections, sqlast.Projection{
			Expr: expr,
			As:   col.Name,
		})
	}
	for _, t := range node.Tables {
		sel.From = append(sel.From, sqlast.TableRef{Name: sqlast.NewIdentifier(qualifiedNameParts(t)...)})
	}
	return sqlast.Serialize(sel)
}

func primaryTableName(node *catalog.Node) string {
	if len(node.Tables) == 0 {
		return ""
	}
	return node.Tables[0].Table
}

func qualifiedNameParts(t *catalog.Table) []string {
	var parts []string
	if t.Catalog != "" {
		parts = append(parts, t.Catalog)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Table)
	return parts
}

// rewriteFrom replaces every parent table reference in sel's FROM list
// with its transpiled, quoted-alias subquery.
func rewriteFrom(sel *sqlast.Select, subqueries map[string]string) error {
	for i, ref := range sel.From {
		name := ref.Name.Name()
		inner, ok := subqueries[name]
		if !ok {
			return catalog.ErrUnknownParent.New(name)
		}
		sel.From[i] = sqlast.TableRef{Subquery: inner, As: name}
	}
	return nil
}

// rewriteColumnRefs walks every expression reachable from sel (outside the
// FROM list) and rewrites identifiers qualified by a parent's unqualified
// name so they bind to that parent's wrapping alias instead (spec §4.3:
// "column references ... using the parent's unqualified table name ...
// must resolve against the wrapping alias").
func rewriteColumnRefs(sel *sqlast.Select, parentsByName map[string]*catalog.Node) error {
	for i := range sel.Projections {
		rewritten, err := rewriteExpr(sel.Projections[i].Expr, parentsByName)
		if err != nil {
			return err
		}
		sel.Projections[i].Expr = rewritten
	}
	if sel.Where != nil {
		rewritten, err := rewriteExpr(sel.Where.Expr, parentsByName)
		if err != nil {
			return err
		}
		sel.Where.Expr = rewritten
	}
	if sel.GroupBy != nil {
		for i := range sel.GroupBy.Exprs {
			rewritten, err := rewriteExpr(sel.GroupBy.Exprs[i], parentsByName)
			if err != nil {
				return err
			}
			sel.GroupBy.Exprs[i] = rewritten
		}
	}
	return nil
}

func rewriteExpr(e sqlast.Expr, parentsByName map[string]*catalog.Node) (sqlast.Expr, error) {
	switch v := e.(type) {
	case *sqlast.Identifier:
		return rewriteIdentifier(v, parentsByName)
	case *sqlast.Function:
		args := make([]sqlast.Expr, len(v.Args))
		for i, a := range v.Args {
			rewritten, err := rewriteExpr(a, parentsByName)
			if err != nil {
				return nil, err
			}
			args[i] = rewritten
		}
		return &sqlast.Function{Name: v.Name, Args: args}, nil
	case *sqlast.BinaryOp:
		left, err := rewriteExpr(v.Left, parentsByName)
		if err != nil {
			return nil, err
		}
		right, err := rewriteExpr(v.Right, parentsByName)
		if err != nil {
			return nil, err
		}
		return &sqlast.BinaryOp{Left: left, Op: v.Op, Right: right}, nil
	case *sqlast.Alias:
		inner, err := rewriteExpr(v.Expr, parentsByName)
		if err != nil {
			return nil, err
		}
		return &sqlast.Alias{Expr: inner, As: v.As}, nil
	default:
		// Value and Star carry no identifiers to rewrite.
		return e, nil
	}
}

// RewriteExprForParents rewrites every identifier in expr that is
// qualified by one of parents' names so it instead binds to that
// parent's wrapping alias. Exported for the planner (spec §4.5 step 7),
// which performs the same column rebinding the transpiler does
// internally for a node's own expression, against the metrics' aggregate
// expressions.
func RewriteExprForParents(expr sqlast.Expr, parents map[string]*catalog.Node) (sqlast.Expr, error) {
	return rewriteExpr(expr, parents)
}

// rewriteIdentifier rewrites id in place against the longest matching
// parent-name prefix. A bare, unqualified identifier (len(Parts) == 1) is
// left untouched: it has no qualifier to rebind. A qualifier that matches
// no parent is an UnknownParent; a match leaving more than one trailing
// segment (e.g. a second dotted qualification past the resolved column)
// is not a column reference this transpiler can resolve uniquely and
// fails with AmbiguousColumn.
func rewriteIdentifier(id *sqlast.Identifier, parentsByName map[string]*catalog.Node) (sqlast.Expr, error) {
	if len(id.Parts) < 2 {
		return id, nil
	}

	parent, remainder, ok := matchParentPrefix(id.Parts, parentsByName)
	if !ok {
		return nil, catalog.ErrUnknownParent.New(id.Name())
	}
	if len(remainder) != 1 {
		return nil, catalog.ErrAmbiguousColumn.New(id.Name())
	}
	return sqlast.NewQualifiedIdentifier(parent, remainder[0].Name), nil
}

// matchParentPrefix tries the longest leading run of id's parts first, so
// a compound parent name (e.g. "core.A") is preferred over a shorter
// accidental match.
func matchParentPrefix(parts []sqlast.IdentifierPart, parentsByName map[string]*catalog.Node) (string, []sqlast.IdentifierPart, bool) {
	for i := len(parts) - 1; i >= 1; i-- {
		candidate := joinNames(parts[:i])
		if _, ok := parentsByName[candidate]; ok {
			return candidate, parts[i:], true
		}
	}
	return "", nil, false
}

func joinNames(parts []sqlast.IdentifierPart) string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.Name
	}
	return strings.Join(names, ".")
}

func markVisited(path map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(path)+1)
	for k, v := range path {
		next[k] = v
	}
	next[name] = true
	return next
}
