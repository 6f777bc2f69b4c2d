// Package dependency implements the Dependency Analyzer (spec §4.2): it
// walks a node expression's AST and extracts the set of other node names
// it references, which becomes that node's Parents.
package dependency

import (
	"sort"

	"github.com/zzzzz1st/datajunction/sqlast"
)

// GetDependencies walks sel and collects every identifier that appears in
// FROM/JOIN position, joining compound parts with "." (so `core.A`
// becomes the node name "core.A"). Identifiers in the projection list,
// WHERE clause and GROUP BY are column references, not node references,
// and are ignored here — they're resolved later by the transpiler and
// planner. Duplicates collapse since the result is a set.
func GetDependencies(sel *sqlast.Select) map[string]struct{} {
	deps := make(map[string]struct{}, len(sel.From))
	for _, ref := range sel.From {
		deps[ref.Name.Name()] = struct{}{}
	}
	return deps
}

// Names returns deps as a sorted slice. Sorting lexicographically matches
// the ordering guarantee spec §5 places on emitted subqueries, and gives
// Node.Parents a stable iteration order.
func Names(deps map[string]struct{}) []string {
	names := make([]string, 0, len(deps))
	for n := range deps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
