package sqlast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzzzz1st/datajunction/sqlast"
)

func TestSerialize_SourceQuery(t *testing.T) {
	sel := &sqlast.Select{
		Projections: []sqlast.Projection{
			{Expr: sqlast.NewQualifiedIdentifier("A", "one"), As: "one"},
			{Expr: sqlast.NewQualifiedIdentifier("A", "two"), As: "two"},
		},
		From: []sqlast.TableRef{{Name: sqlast.NewQuotedIdentifier("A")}},
	}

	got := sqlast.Serialize(sel)
	require.Equal(t, "SELECT \"A\".one AS one, \"A\".two AS two \nFROM \"A\"", got)
}

func TestSerialize_CountStar(t *testing.T) {
	fn := &sqlast.Function{Name: "COUNT", Args: []sqlast.Expr{&sqlast.Value{Kind: sqlast.ValueString, Literal: "*"}}}
	got := sqlast.Serialize(fn)
	require.Equal(t, "count('*')", got)
}

func TestSerialize_GroupByWithoutWhere(t *testing.T) {
	sel := &sqlast.Select{
		Projections: []sqlast.Projection{
			{Expr: &sqlast.Function{Name: "COUNT", Args: []sqlast.Expr{&sqlast.Value{Kind: sqlast.ValueString, Literal: "*"}}}, As: "cnt"},
			{Expr: sqlast.NewQualifiedIdentifier("A", "user_id")},
		},
		From:    []sqlast.TableRef{{Name: sqlast.NewQuotedIdentifier("A")}},
		GroupBy: &sqlast.GroupBy{Exprs: []sqlast.Expr{sqlast.NewQualifiedIdentifier("A", "user_id")}},
	}

	got := sqlast.Serialize(sel)
	require.Equal(t, "SELECT count('*') AS cnt, \"A\".user_id \nFROM \"A\" GROUP BY \"A\".user_id", got)
}

func TestSerialize_ProjectionAliasQuotingPolicy(t *testing.T) {
	sel := &sqlast.Select{
		Projections: []sqlast.Projection{
			{Expr: &sqlast.Function{Name: "COUNT", Args: []sqlast.Expr{&sqlast.Value{Kind: sqlast.ValueString, Literal: "*"}}}, As: "B", QuotedAs: true},
			{Expr: &sqlast.Function{Name: "COUNT", Args: []sqlast.Expr{&sqlast.Value{Kind: sqlast.ValueString, Literal: "*"}}}, As: "cnt"},
		},
		From: []sqlast.TableRef{{Name: sqlast.NewQuotedIdentifier("A")}},
	}

	got := sqlast.Serialize(sel)
	require.Equal(t, `SELECT count('*') AS "B", count('*') AS cnt `+"\n"+`FROM "A"`, got)
}

func TestSerialize_WhereThenGroupBy(t *testing.T) {
	sel := &sqlast.Select{
		Projections: []sqlast.Projection{
			{Expr: sqlast.NewQualifiedIdentifier("core.comments", "user_id")},
		},
		From: []sqlast.TableRef{{Name: sqlast.NewQuotedIdentifier("core.comments")}},
		Where: &sqlast.Where{Expr: &sqlast.BinaryOp{
			Left:  sqlast.NewQualifiedIdentifier("core.comments", "user_id"),
			Op:    ">",
			Right: &sqlast.Value{Kind: sqlast.ValueInt, Literal: "1"},
		}},
		GroupBy: &sqlast.GroupBy{Exprs: []sqlast.Expr{sqlast.NewQualifiedIdentifier("core.comments", "user_id")}},
	}

	got := sqlast.Serialize(sel)
	require.Equal(t,
		"SELECT \"core.comments\".user_id \nFROM \"core.comments\" \nWHERE \"core.comments\".user_id > 1 GROUP BY \"core.comments\".user_id",
		got,
	)
}
