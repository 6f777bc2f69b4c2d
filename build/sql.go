package build

import (
	"sort"
	"strings"

	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/dependency"
	"github.com/zzzzz1st/datajunction/sqlast"
	"github.com/zzzzz1st/datajunction/transpile"
)

// metricsSentinel is the virtual table name a user SQL query over metrics
// must name in its FROM clause (spec §6.3).
const metricsSentinel = "metrics"

type projectionKind int

const (
	kindMetric projectionKind = iota
	kindDimension
	kindLiteral
)

// parsedProjection is one classified entry from a metrics-table SELECT
// list (spec §4.5 step 2).
type parsedProjection struct {
	kind  projectionKind
	alias string

	metric *catalog.Node
	agg    sqlast.Expr

	dimNode string
	dimCol  string

	literal sqlast.Expr
}

// GetQueryForSQL builds a CreateQuery for a user SQL query over the
// virtual `metrics` table (spec §4.5).
func GetQueryForSQL(snap *catalog.Snapshot, sql string) (*catalog.CreateQuery, error) {
	sel, err := sqlast.Parse(sql)
	if err != nil {
		return nil, err
	}
	if len(sel.Projections) == 0 {
		return nil, catalog.ErrInvalidSQL.New("empty projection list")
	}
	if err := checkMetricsSource(sel); err != nil {
		return nil, err
	}

	parsed, err := partitionProjections(snap, sel.Projections)
	if err != nil {
		return nil, err
	}

	parents, err := unionParents(parsed)
	if err != nil {
		return nil, err
	}

	database, err := GetDatabaseForSQL(snap, parents)
	if err != nil {
		return nil, err
	}

	subqueries := make(map[string]string, len(parents))
	for name, p := range parents {
		q, err := transpile.GetQuery(p)
		if err != nil {
			return nil, err
		}
		subqueries[name] = q
	}

	out := &sqlast.Select{}
	for _, pp := range parsed {
		switch pp.kind {
		case kindMetric:
			rewritten, err := transpile.RewriteExprForParents(pp.agg, parents)
			if err != nil {
				return nil, err
			}
			alias, quoted := pp.alias, false
			if alias == "" {
				alias, quoted = pp.metric.Name, true
			}
			out.Projections = append(out.Projections, sqlast.Projection{Expr: rewritten, As: alias, QuotedAs: quoted})
		case kindDimension:
			if _, ok := parents[pp.dimNode]; !ok {
				return nil, catalog.ErrInvalidIdentifier.New(pp.dimNode)
			}
			out.Projections = append(out.Projections, sqlast.Projection{
				Expr: sqlast.NewQualifiedIdentifier(pp.dimNode, pp.dimCol),
				As:   pp.alias,
			})
		case kindLiteral:
			out.Projections = append(out.Projections, sqlast.Projection{Expr: pp.literal, As: pp.alias})
		}
	}

	parentDeps := make(map[string]struct{}, len(parents))
	for name := range parents {
		parentDeps[name] = struct{}{}
	}
	for _, name := range dependency.Names(parentDeps) {
		out.From = append(out.From, sqlast.TableRef{Subquery: subqueries[name], As: name})
	}

	if sel.Where != nil {
		rewritten, err := rewriteForPlanner(sel.Where.Expr, parents)
		if err != nil {
			return nil, err
		}
		out.Where = &sqlast.Where{Expr: rewritten}
	}

	if sel.GroupBy != nil {
		exprs := make([]sqlast.Expr, len(sel.GroupBy.Exprs))
		for i, e := range sel.GroupBy.Exprs {
			rewritten, err := rewriteForPlanner(e, parents)
			if err != nil {
				return nil, err
			}
			exprs[i] = rewritten
		}
		out.GroupBy = &sqlast.GroupBy{Exprs: exprs}
	}

	return &catalog.CreateQuery{DatabaseID: database.ID, SubmittedQuery: sqlast.Serialize(out)}, nil
}

func checkMetricsSource(sel *sqlast.Select) error {
	if len(sel.From) != 1 {
		return catalog.ErrInvalidSource.New(fromNames(sel.From))
	}
	name := sel.From[0].Name.Name()
	if name != metricsSentinel {
		return catalog.ErrInvalidSource.New(name)
	}
	return nil
}

func fromNames(refs []sqlast.TableRef) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name.Name()
	}
	return strings.Join(names, ", ")
}

// partitionProjections classifies each projection as a metric, a
// dimension (`<node>.<col>`), or a literal pass-through (spec §4.5 step
// 2). Per SPEC_FULL.md §5's resolution of the spec's own open question
// about non-identifier projections, only quoted string literals pass
// through; any other bare expression is InvalidProjection.
func partitionProjections(snap *catalog.Snapshot, projections []sqlast.Projection) ([]parsedProjection, error) {
	result := make([]parsedProjection, 0, len(projections))
	for _, p := range projections {
		switch expr := p.Expr.(type) {
		case *sqlast.Identifier:
			full := expr.Name()
			if node := snap.FindNodeByName(full); node != nil {
				agg, err := aggregateExprOf(node)
				if err != nil {
					return nil, err
				}
				result = append(result, parsedProjection{kind: kindMetric, metric: node, agg: agg, alias: p.As})
				continue
			}
			if idx := strings.LastIndex(full, "."); idx > 0 {
				nodeName, col := full[:idx], full[idx+1:]
				if node := snap.FindNodeByName(nodeName); node != nil {
					result = append(result, parsedProjection{kind: kindDimension, dimNode: nodeName, dimCol: col, alias: p.As})
					continue
				}
			}
			return nil, catalog.ErrInvalidProjection.New(full)
		case *sqlast.Value:
			if expr.Kind != sqlast.ValueString {
				return nil, catalog.ErrInvalidProjection.New(sqlast.Serialize(expr))
			}
			result = append(result, parsedProjection{kind: kindLiteral, literal: expr, alias: p.As})
		default:
			return nil, catalog.ErrInvalidProjection.New(sqlast.Serialize(expr))
		}
	}
	return result, nil
}

// knownAggregates is the closed set of function names the planner
// accepts as an aggregate (spec §3's metric-node invariant); the parser
// adapter itself does not classify functions.
var knownAggregates = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// aggregateExprOf returns node's sole aggregate projection if node
// qualifies as a metric (a derived node whose expression has exactly one
// projection, a call to a recognized aggregate function), failing with
// NotAMetric otherwise — a single-projection transform like UPPER(name)
// is a function call but not an aggregate, so it doesn't qualify.
func aggregateExprOf(node *catalog.Node) (sqlast.Expr, error) {
	if node.IsSource() {
		return nil, catalog.ErrNotAMetric.New(node.Name)
	}
	sel, err := sqlast.Parse(node.Expression)
	if err != nil {
		return nil, err
	}
	if len(sel.Projections) != 1 {
		return nil, catalog.ErrNotAMetric.New(node.Name)
	}
	fn, ok := sel.Projections[0].Expr.(*sqlast.Function)
	if !ok || !knownAggregates[strings.ToLower(fn.Name)] {
		return nil, catalog.ErrNotAMetric.New(node.Name)
	}
	return fn, nil
}

// unionParents computes the shared parent set across every selected
// metric (spec §4.5 step 4), failing with DifferingParents if they don't
// all agree.
func unionParents(parsed []parsedProjection) (map[string]*catalog.Node, error) {
	var parents map[string]*catalog.Node
	for _, pp := range parsed {
		if pp.kind != kindMetric {
			continue
		}
		current := parentsByName(pp.metric)
		if parents == nil {
			parents = current
			continue
		}
		if !sameKeys(parents, current) {
			return nil, catalog.ErrDifferingParents.New()
		}
	}
	if parents == nil {
		return map[string]*catalog.Node{}, nil
	}
	return parents, nil
}

func parentsByName(node *catalog.Node) map[string]*catalog.Node {
	m := make(map[string]*catalog.Node, len(node.Parents))
	for _, p := range node.Parents {
		m[p.Name] = p
	}
	return m
}

func sameKeys(a, b map[string]*catalog.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// GetDatabaseForSQL selects the database for a metrics-table query (spec
// §4.5 step 5): the minimum-cost member of the intersection of databases
// reachable by every parent, or the globally cheapest database when there
// are no parents (a purely literal query).
func GetDatabaseForSQL(snap *catalog.Snapshot, parents map[string]*catalog.Node) (*catalog.Database, error) {
	if len(parents) == 0 {
		db := cheapestOverall(snap)
		if db == nil {
			return nil, catalog.ErrNoCommonDatabase.New(metricsSentinel)
		}
		return db, nil
	}

	var intersection map[int]*catalog.Database
	for _, p := range parents {
		dbs := snap.DatabasesContaining(p)
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
	if len(intersection) == 0 {
		return nil, catalog.ErrNoCommonDatabase.New(parentNameList(parents))
	}
	return cheapest(intersection), nil
}

func parentNameList(parents map[string]*catalog.Node) string {
	names := make([]string, 0, len(parents))
	for name := range parents {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// rewriteForPlanner rewrites every identifier in e qualified by one of
// parents' names to bind to that parent's alias, for the user's WHERE and
// GROUP BY (spec §4.5 steps 9/10; metric aggregates are rebound by
// transpile.RewriteExprForParents instead).
// Unlike the transpiler's internal rewrite, an unresolvable prefix here is
// a user-facing InvalidIdentifier, not an UnknownParent — the input is a
// user's SQL, not a catalog-authored node expression.
func rewriteForPlanner(e sqlast.Expr, parents map[string]*catalog.Node) (sqlast.Expr, error) {
	switch v := e.(type) {
	case *sqlast.Identifier:
		return rewriteIdentifierForPlanner(v, parents)
	case *sqlast.Function:
		args := make([]sqlast.Expr, len(v.Args))
		for i, a := range v.Args {
			r, err := rewriteForPlanner(a, parents)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return &sqlast.Function{Name: v.Name, Args: args}, nil
	case *sqlast.BinaryOp:
		left, err := rewriteForPlanner(v.Left, parents)
		if err != nil {
			return nil, err
		}
		right, err := rewriteForPlanner(v.Right, parents)
		if err != nil {
			return nil, err
		}
		return &sqlast.BinaryOp{Left: left, Op: v.Op, Right: right}, nil
	case *sqlast.Alias:
		inner, err := rewriteForPlanner(v.Expr, parents)
		if err != nil {
			return nil, err
		}
		return &sqlast.Alias{Expr: inner, As: v.As}, nil
	default:
		return e, nil
	}
}

// rewriteIdentifierForPlanner matches against id's joined logical name
// rather than its segment boundaries: a quoted user identifier like
// "core.comments.user_id" parses as a single segment whose name already
// contains the literal dots, so segment-based matching (as the
// transpiler uses for catalog-authored expressions) can't see the parent
// boundary inside it. Scanning the joined string for its rightmost dot
// first finds the longest, and therefore correct, parent-name prefix.
func rewriteIdentifierForPlanner(id *sqlast.Identifier, parents map[string]*catalog.Node) (sqlast.Expr, error) {
	full := id.Name()
	for idx := len(full) - 1; idx >= 0; idx-- {
		if full[idx] != '.' {
			continue
		}
		candidate := full[:idx]
		if _, ok := parents[candidate]; ok {
			return sqlast.NewQualifiedIdentifier(candidate, full[idx+1:]), nil
		}
	}
	return nil, catalog.ErrInvalidIdentifier.New(full)
}
