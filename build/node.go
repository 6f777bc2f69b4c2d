// Package build implements the Planner (spec §4.4, §4.5): resolving a
// node id or a SQL query over the virtual `metrics` table into a
// CreateQuery by selecting the cheapest database that can serve every
// node the query touches and composing the Transpiler's per-parent
// subqueries into a single backend statement.
package build

import (
	"sort"
	"strings"

	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/sqlast"
	"github.com/zzzzz1st/datajunction/transpile"
)

// ComputableDatabases returns the set of databases that can serve node,
// per spec §4.4 step 1: the intersection, over every leaf source ancestor,
// of the databases containing a table for that source, narrowed to
// databases whose physical table actually has every column node's own
// expression references directly against that source (spec §4.4 scenario
// 3: a source can have "a table" in a database that nonetheless lacks a
// column the expression needs). The narrowing only looks at node's own
// immediate FROM reference; a source several hops further up the DAG is
// still selected by table presence alone, since nothing at that depth
// names which of its columns are actually in play.
func ComputableDatabases(snap *catalog.Snapshot, node *catalog.Node) (map[int]*catalog.Database, error) {
	if node.IsSource() {
		return snap.DatabasesContaining(node), nil
	}

	sel, err := sqlast.Parse(node.Expression)
	if err != nil {
		return nil, err
	}
	parentName, requiredCols := singleSourceColumns(sel)

	var intersection map[int]*catalog.Database
	for _, parent := range node.Parents {
		dbs := snap.DatabasesContaining(parent)
		if parent.IsSource() && parent.Name == parentName {
			dbs = filterByColumns(dbs, parent, requiredCols)
		}
		if intersection == nil {
			intersection = dbs
			continue
		}
		for id := range intersection {
			if _, ok := dbs[id]; !ok {
				delete(intersection, id)
			}
		}
	}
	if intersection == nil {
		intersection = map[int]*catalog.Database{}
	}
	return intersection, nil
}

// singleSourceColumns returns the sole FROM table's name and the set of
// column names node's expression references, when the expression has
// exactly one FROM table (so every unqualified column unambiguously
// belongs to it). It returns ("", nil) for a join or an empty FROM, since
// an unqualified column can't be attributed to one table there.
func singleSourceColumns(sel *sqlast.Select) (string, []string) {
	if len(sel.From) != 1 {
		return "", nil
	}
	cols := make(map[string]bool)
	for _, p := range sel.Projections {
		collectColumns(p.Expr, cols)
	}
	if sel.Where != nil {
		collectColumns(sel.Where.Expr, cols)
	}
	if sel.GroupBy != nil {
		for _, e := range sel.GroupBy.Exprs {
			collectColumns(e, cols)
		}
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	sort.Strings(names)
	return sel.From[0].Name.Name(), names
}

// collectColumns walks e, recording the column name of every identifier
// it finds. A qualified identifier counts by its final segment; qualifiers
// are ignored since singleSourceColumns only calls this when there is
// exactly one FROM table for them to refer to. COUNT(*) contributes no
// column: the adapter hands its star over as the string literal '*'.
func collectColumns(e sqlast.Expr, out map[string]bool) {
	switch v := e.(type) {
	case *sqlast.Identifier:
		out[v.Parts[len(v.Parts)-1].Name] = true
	case *sqlast.Function:
		for _, a := range v.Args {
			collectColumns(a, out)
		}
	case *sqlast.BinaryOp:
		collectColumns(v.Left, out)
		collectColumns(v.Right, out)
	case *sqlast.Alias:
		collectColumns(v.Expr, out)
	}
}

// filterByColumns drops every database from dbs whose table for parent
// doesn't define all of cols.
func filterByColumns(dbs map[int]*catalog.Database, parent *catalog.Node, cols []string) map[int]*catalog.Database {
	if len(cols) == 0 {
		return dbs
	}
	result := make(map[int]*catalog.Database, len(dbs))
	for _, t := range parent.Tables {
		if t.Database == nil {
			continue
		}
		if db, ok := dbs[t.Database.ID]; ok && t.HasColumns(cols) {
			result[t.Database.ID] = db
		}
	}
	return result
}

// GetQueryForNode builds a CreateQuery for a direct node request (spec
// §4.4). groupbys and filters are applied, if non-empty, by wrapping the
// transpiled query and adding GROUP BY / WHERE clauses bound to the
// node's own alias. A group-by column is named either bare (`one`) or
// dotted with the node's own name (`A.one`).
func GetQueryForNode(snap *catalog.Snapshot, node *catalog.Node, groupbys []string, filters []string, databaseID *int) (*catalog.CreateQuery, error) {
	computable, err := ComputableDatabases(snap, node)
	if err != nil {
		return nil, err
	}
	if len(computable) == 0 {
		return nil, catalog.ErrNoCommonDatabase.New(node.Name)
	}

	var chosen *catalog.Database
	if databaseID != nil {
		db, ok := computable[*databaseID]
		if !ok {
			return nil, catalog.ErrUnableToCompute.New(node.Name, *databaseID)
		}
		chosen = db
	} else {
		chosen = cheapest(computable)
	}

	innerSQL, err := transpile.GetQuery(node)
	if err != nil {
		return nil, err
	}

	if len(groupbys) == 0 && len(filters) == 0 {
		return &catalog.CreateQuery{DatabaseID: chosen.ID, SubmittedQuery: innerSQL}, nil
	}

	columnsByName := make(map[string]catalog.Column, len(node.Columns))
	for _, c := range node.Columns {
		columnsByName[c.Name] = c
	}

	sel := &sqlast.Select{
		Projections: []sqlast.Projection{{Expr: &sqlast.Star{}}},
		From:        []sqlast.TableRef{{Subquery: innerSQL, As: node.Name}},
	}

	if len(filters) > 0 {
		var combined sqlast.Expr
		for _, f := range filters {
			expr, err := GetFilter(columnsByName, f)
			if err != nil {
				return nil, err
			}
			qualifyAgainstAlias(expr, node.Name)
			if combined == nil {
				combined = expr
			} else {
				combined = &sqlast.BinaryOp{Left: combined, Op: "AND", Right: expr}
			}
		}
		sel.Where = &sqlast.Where{Expr: combined}
	}

	if len(groupbys) > 0 {
		exprs := make([]sqlast.Expr, len(groupbys))
		for i, g := range groupbys {
			col := strings.TrimPrefix(g, node.Name+".")
			if _, ok := columnsByName[col]; !ok {
				return nil, catalog.ErrInvalidColumn.New(g)
			}
			exprs[i] = sqlast.NewQualifiedIdentifier(node.Name, col)
		}
		sel.GroupBy = &sqlast.GroupBy{Exprs: exprs}
	}

	return &catalog.CreateQuery{DatabaseID: chosen.ID, SubmittedQuery: sqlast.Serialize(sel)}, nil
}

// qualifyAgainstAlias rewrites a GetFilter-produced comparison's bare
// column reference to bind against the subquery alias it will be wrapped
// in.
func qualifyAgainstAlias(expr sqlast.Expr, alias string) {
	op, ok := expr.(*sqlast.BinaryOp)
	if !ok {
		return
	}
	if id, ok := op.Left.(*sqlast.Identifier); ok {
		op.Left = sqlast.NewQualifiedIdentifier(alias, id.Name())
	}
}

func cheapest(dbs map[int]*catalog.Database) *catalog.Database {
	var best *catalog.Database
	for _, db := range dbs {
		if best == nil || db.Cost < best.Cost || (db.Cost == best.Cost && db.ID < best.ID) {
			best = db
		}
	}
	return best
}

func cheapestOverall(snap *catalog.Snapshot) *catalog.Database {
	var best *catalog.Database
	for _, db := range snap.AllDatabases() {
		if best == nil || db.Cost < best.Cost || (db.Cost == best.Cost && db.ID < best.ID) {
			best = db
		}
	}
	return best
}
