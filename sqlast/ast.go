// Package sqlast is the SQL Parser Adapter (spec §4.1). It wraps
// github.com/dolthub/vitess/go/vt/sqlparser — the teacher's own SQL
// parser dependency — behind the small, tagged-variant AST vocabulary
// the rest of the core is written against, so that higher layers never
// touch vitess's AST directly (spec §9's design note: "wrap it behind a
// thin adapter exposing the limited AST vocabulary").
package sqlast

// Expr is any scalar SQL expression node: Identifier, Function, BinaryOp,
// Value, Alias or Star.
type Expr interface {
	isExpr()
}

// IdentifierPart is one dot-separated segment of an Identifier. Quoted
// marks a segment that must serialize double-quoted regardless of its
// contents — set explicitly by whoever constructs the segment (the
// transpiler and planner do this for a segment that names a parent alias,
// since the alias itself was introduced double-quoted; see
// SPEC_FULL.md §5), rather than inferred per-character at serialize time.
type IdentifierPart struct {
	Name   string
	Quoted bool
}

// Identifier is a (possibly compound) column or table reference, e.g.
// `one` (Parts = [{one}]) or `core.A` (Parts = [{core}, {A}]). It covers
// both the "Identifier" and "CompoundIdentifier" node kinds named in
// spec §4.1: the two only differ in whether Parts has length 1, which
// callers can check directly rather than type-switching on two Go types.
// A single part may itself contain a literal dot — e.g. the part
// "core.comments" in the qualified reference "core.comments".user_id is
// one quoted segment naming a node, not two segments — which is why
// Parts is a slice of segments rather than a slice of strings split on
// ".".
type Identifier struct {
	Parts []IdentifierPart
}

func (*Identifier) isExpr() {}

// Name joins the segments' names with "." — the form a node name takes
// once dependency analysis has collapsed a compound identifier (spec
// §4.2). It ignores quoting; it is a logical name, not serialized text.
func (i *Identifier) Name() string {
	name := ""
	for idx, p := range i.Parts {
		if idx > 0 {
			name += "."
		}
		name += p.Name
	}
	return name
}

// Compound reports whether this identifier has more than one segment.
func (i *Identifier) Compound() bool {
	return len(i.Parts) > 1
}

// Function is a function call, e.g. COUNT(*) or SUM(x).
type Function struct {
	Name string
	Args []Expr
}

func (*Function) isExpr() {}

// BinaryOp is a binary operator expression, e.g. a comparison or a
// boolean connective (AND/OR).
type BinaryOp struct {
	Left  Expr
	Op    string
	Right Expr
}

func (*BinaryOp) isExpr() {}

// ValueKind distinguishes the literal kinds Value can hold.
type ValueKind int

// The literal kinds recognized by the adapter and by the filter grammar
// (spec §6.4): integer, float, quoted string, boolean, null.
const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueBool
	ValueNull
)

// Value is a literal expression.
type Value struct {
	Kind    ValueKind
	Literal string // textual form, e.g. "42", "true", "o'brien" (unescaped)
}

func (*Value) isExpr() {}

// Star is the bare `*` of a SELECT * projection. A `*` function argument
// (COUNT(*)) is not a Star: the adapter turns it into the string literal
// '*' (see convertFuncExpr). Star is never a valid metrics-table
// projection on its own, but the adapter still represents it faithfully
// rather than rejecting it — rejecting malformed shapes is the planner's
// job, not the parser's.
type Star struct{}

func (*Star) isExpr() {}

// Alias wraps an expression with a user-supplied name, e.g. `x AS y`.
type Alias struct {
	Expr Expr
	As   string
}

func (*Alias) isExpr() {}

// Projection is one entry in a SELECT list. QuotedAs forces the alias to
// serialize double-quoted regardless of its contents — set when As is a
// node name rather than a user-chosen or physical column alias (spec
// quoting rule, SPEC_FULL.md §5); otherwise the alias is quoted only when
// its contents require it.
type Projection struct {
	Expr     Expr
	As       string // empty if unaliased
	QuotedAs bool
}

// TableRef is one identifier appearing in FROM/JOIN position (spec §4.2:
// the only identifiers the Dependency Analyzer collects). Name is set for
// every table reference the parser produces. Subquery is set instead of
// Name when the transpiler rewrites a parent reference into an inlined
// subquery (spec §4.3), or when the planner wraps a transpiled query; when
// set it takes precedence at serialize time and As is always non-empty
// (the node name the subquery is aliased as, serialized quoted).
type TableRef struct {
	Name     *Identifier
	Subquery string
	As       string // empty if unaliased
}

// Where wraps a boolean expression as a standalone AST node kind, per
// spec §4.1.
type Where struct {
	Expr Expr
}

// GroupBy wraps the list of grouping expressions as a standalone AST
// node kind, per spec §4.1.
type GroupBy struct {
	Exprs []Expr
}

// Select is the only statement shape the core needs to understand: every
// node expression and every user query over `metrics` is a single
// top-level SELECT (spec §4.5 step 1).
type Select struct {
	Projections []Projection
	From        []TableRef
	Where       *Where
	GroupBy     *GroupBy
}

// NewQuotedIdentifier builds a single-segment Identifier from a dotted
// node name (e.g. "core.A") that always serializes as one double-quoted
// token, e.g. the alias a parent subquery is wrapped in.
func NewQuotedIdentifier(dottedName string) *Identifier {
	return &Identifier{Parts: []IdentifierPart{{Name: dottedName, Quoted: true}}}
}

// NewQualifiedIdentifier builds a two-segment Identifier referencing
// column after a quoted node-name qualifier, e.g. "core.A".one.
func NewQualifiedIdentifier(qualifierDottedName, column string) *Identifier {
	return &Identifier{Parts: []IdentifierPart{
		{Name: qualifierDottedName, Quoted: true},
		{Name: column},
	}}
}

// NewIdentifier builds a plain identifier from bare dot-separated parts,
// quoted only if Serialize decides a part requires it (spec quoting
// rule, see Serialize).
func NewIdentifier(parts ...string) *Identifier {
	segments := make([]IdentifierPart, len(parts))
	for i, p := range parts {
		segments[i] = IdentifierPart{Name: p}
	}
	return &Identifier{Parts: segments}
}
