package build_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzzzz1st/datajunction/build"
	"github.com/zzzzz1st/datajunction/catalog"
)

func TestGetQueryForSQL_SourceBackedMetric(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{
		Name:    "A",
		Tables:  []*catalog.Table{{Table: "A", Database: db}},
		Columns: []catalog.Column{{Name: "one"}, {Name: "two"}},
	}
	b := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, b})

	query, err := build.GetQueryForSQL(snap, "SELECT B FROM metrics")
	require.NoError(t, err)
	require.Equal(t, 1, query.DatabaseID)
	require.Equal(t,
		`SELECT count('*') AS "B" `+"\n"+`FROM (SELECT "A".one AS one, "A".two AS two `+"\n"+`FROM "A") AS "A"`,
		query.SubmittedQuery,
	)
}

func TestGetQueryForSQL_CompoundNodeName(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{
		Name:    "core.A",
		Tables:  []*catalog.Table{{Table: "A", Database: db}},
		Columns: []catalog.Column{{Name: "one"}},
	}
	b := &catalog.Node{Name: "core.B", Expression: "SELECT COUNT(*) AS cnt FROM core.A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, b})

	query, err := build.GetQueryForSQL(snap, "SELECT core.B FROM metrics")
	require.NoError(t, err)
	require.Contains(t, query.SubmittedQuery, `AS "core.B"`)
	require.Contains(t, query.SubmittedQuery, `AS "core.A"`)
}

func TestGetQueryForSQL_DifferingParentsRejected(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{Name: "A", Tables: []*catalog.Table{{Table: "A", Database: db}}}
	bTbl := &catalog.Node{Name: "B", Tables: []*catalog.Table{{Table: "B", Database: db}}}
	c := &catalog.Node{Name: "C", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	d := &catalog.Node{Name: "D", Expression: "SELECT COUNT(*) AS cnt FROM B", Parents: []*catalog.Node{bTbl}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, bTbl, c, d})

	_, err := build.GetQueryForSQL(snap, "SELECT C, D FROM metrics")
	require.Error(t, err)
	require.True(t, catalog.ErrDifferingParents.Is(err))
}

func TestGetQueryForSQL_NonMetricProjectionRejected(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{Name: "A", Tables: []*catalog.Table{{Table: "A", Database: db}}, Columns: []catalog.Column{{Name: "one"}}}
	bNode := &catalog.Node{Name: "B", Expression: "SELECT one FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, bNode})

	_, err := build.GetQueryForSQL(snap, "SELECT B FROM metrics")
	require.Error(t, err)
	require.True(t, catalog.ErrNotAMetric.Is(err))
}

func TestGetQueryForSQL_WhereAndGroupByWithCompoundIdentifiers(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	comments := &catalog.Node{
		Name:    "core.comments",
		Tables:  []*catalog.Table{{Table: "comments", Database: db}},
		Columns: []catalog.Column{{Name: "user_id", Type: catalog.ColumnTypeInt}, {Name: "comment", Type: catalog.ColumnTypeStr}},
	}
	metric := &catalog.Node{
		Name:       "core.num_comments",
		Expression: "SELECT COUNT(*) AS cnt FROM core.comments",
		Parents:    []*catalog.Node{comments},
	}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{comments, metric})

	sql := `SELECT "core.num_comments", "core.comments.user_id" FROM metrics WHERE "core.comments.user_id" > 1 GROUP BY "core.comments.user_id"`
	query, err := build.GetQueryForSQL(snap, sql)
	require.NoError(t, err)
	require.Equal(t,
		`SELECT count('*') AS "core.num_comments", "core.comments".user_id `+"\n"+
			`FROM (SELECT comments.user_id AS user_id, comments.comment AS comment `+"\n"+`FROM comments) AS "core.comments" `+"\n"+
			`WHERE "core.comments".user_id > 1 GROUP BY "core.comments".user_id`,
		query.SubmittedQuery,
	)
}

func TestGetQueryForSQL_NonAggregateFunctionProjectionRejected(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{Name: "A", Tables: []*catalog.Table{{Table: "A", Database: db}}, Columns: []catalog.Column{{Name: "name"}}}
	bNode := &catalog.Node{Name: "B", Expression: "SELECT UPPER(name) AS up FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, bNode})

	_, err := build.GetQueryForSQL(snap, "SELECT B FROM metrics")
	require.Error(t, err)
	require.True(t, catalog.ErrNotAMetric.Is(err))
}

func TestGetQueryForSQL_EmptyDatabaseSet(t *testing.T) {
	a := &catalog.Node{Name: "A"}
	metric := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot(nil, []*catalog.Node{a, metric})

	_, err := build.GetQueryForSQL(snap, "SELECT B FROM metrics")
	require.Error(t, err)
	require.True(t, catalog.ErrNoCommonDatabase.Is(err))
}

func TestGetQueryForSQL_InvalidSource(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	snap := newSnapshot([]*catalog.Database{db}, nil)

	_, err := build.GetQueryForSQL(snap, "SELECT 'x' FROM other_table")
	require.Error(t, err)
	require.True(t, catalog.ErrInvalidSource.Is(err))
}

func TestGetQueryForSQL_Deterministic(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{
		Name:    "A",
		Tables:  []*catalog.Table{{Table: "A", Database: db}},
		Columns: []catalog.Column{{Name: "one"}},
	}
	b := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, b})

	first, err := build.GetQueryForSQL(snap, "SELECT B FROM metrics")
	require.NoError(t, err)
	second, err := build.GetQueryForSQL(snap, "SELECT B FROM metrics")
	require.NoError(t, err)
	require.Equal(t, first.SubmittedQuery, second.SubmittedQuery)
}

func TestGetQueryForSQL_LiteralOnlyUsesCheapestDatabase(t *testing.T) {
	slow := &catalog.Database{ID: 1, Cost: 10}
	fast := &catalog.Database{ID: 2, Cost: 1}
	snap := newSnapshot([]*catalog.Database{slow, fast}, nil)

	query, err := build.GetQueryForSQL(snap, "SELECT 'x' FROM metrics")
	require.NoError(t, err)
	require.Equal(t, 2, query.DatabaseID)
}
