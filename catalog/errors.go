package catalog

import errors "gopkg.in/src-d/go-errors.v1"

// Error kinds produced by the core (spec §7). Each is a *errors.Kind,
// instantiated with .New(args...) the same way the teacher builds its own
// sentinel errors (see auth.ErrNotAuthorized / auth.ErrNoPermission).
var (
	// ErrInvalidSQL is returned when the parser rejects input.
	ErrInvalidSQL = errors.NewKind("invalid SQL: %s")
	// ErrUnknownNode is returned when a request references a node that
	// does not exist in the catalog.
	ErrUnknownNode = errors.NewKind("unknown node: %s")
	// ErrUnknownParent is returned when a FROM/JOIN identifier in an
	// expression does not resolve to a known node.
	ErrUnknownParent = errors.NewKind("unknown parent: %s")
	// ErrNotAMetric is returned when a projected node is not a metric
	// (a derived node whose sole top-level projection is an aggregate).
	ErrNotAMetric = errors.NewKind("not a metric: %s")
	// ErrDifferingParents is returned when the selected metrics in a
	// metrics-table query do not share the same parent set.
	ErrDifferingParents = errors.NewKind("metrics have differing parents")
	// ErrNoCommonDatabase is returned when the intersection of databases
	// computable for all parents/ancestors is empty. Message kept
	// verbatim from the original test fixtures (SPEC_FULL.md §4).
	ErrNoCommonDatabase = errors.NewKind("Unable to compute %s (no common database)")
	// ErrUnableToCompute is returned when an explicitly requested
	// database id is not in the node's computable set. Message kept
	// verbatim from the original test fixtures (SPEC_FULL.md §4).
	ErrUnableToCompute = errors.NewKind("Unable to compute %s on database %d")
	// ErrInvalidFilter is returned when a filter string does not match
	// the <column><op><literal> grammar.
	ErrInvalidFilter = errors.NewKind("invalid filter: %s")
	// ErrInvalidColumn is returned when a filter references an unknown
	// column.
	ErrInvalidColumn = errors.NewKind("invalid column name: %s")
	// ErrInvalidOperation is returned when a filter uses an operator
	// outside COMPARISONS.
	ErrInvalidOperation = errors.NewKind("invalid operation: %s (valid: %s)")
	// ErrInvalidValue is returned when a filter's right-hand side is not
	// a parseable literal.
	ErrInvalidValue = errors.NewKind("invalid value: %s")
	// ErrInvalidIdentifier is returned when a WHERE/GROUP BY/dimension
	// prefix does not match one of the resolved parent aliases.
	ErrInvalidIdentifier = errors.NewKind("invalid identifier: %s")
	// ErrInvalidProjection is returned when a metrics-table SELECT item
	// is neither a metric, a dimension reference, nor a quoted string
	// literal.
	ErrInvalidProjection = errors.NewKind("invalid projection: %s")
	// ErrAmbiguousColumn is returned when a projected column does not
	// resolve uniquely against its owning node/table.
	ErrAmbiguousColumn = errors.NewKind("ambiguous column: %s")
	// ErrInvalidSource is returned when a metrics-table query's FROM
	// clause names anything other than the sentinel "metrics" table.
	ErrInvalidSource = errors.NewKind("invalid source: %s")
)
