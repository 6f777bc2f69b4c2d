package build_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzzzz1st/datajunction/build"
	"github.com/zzzzz1st/datajunction/catalog"
)

func newSnapshot(databases []*catalog.Database, nodes []*catalog.Node) *catalog.Snapshot {
	return catalog.NewSnapshot(databases, nodes)
}

func TestGetQueryForNode_SourceBackedMetric(t *testing.T) {
	db := &catalog.Database{ID: 1, Name: "fast", Cost: 1}
	a := &catalog.Node{
		Name:    "A",
		Tables:  []*catalog.Table{{Table: "A", Database: db}},
		Columns: []catalog.Column{{Name: "one", Type: catalog.ColumnTypeStr}, {Name: "two", Type: catalog.ColumnTypeStr}},
	}
	b := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, b})

	query, err := build.GetQueryForNode(snap, b, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, query.DatabaseID)
	require.Equal(t, "SELECT count('*') AS cnt \nFROM (SELECT \"A\".one AS one, \"A\".two AS two \nFROM \"A\") AS \"A\"", query.SubmittedQuery)
}

func TestGetQueryForNode_CheapestDatabaseSelection(t *testing.T) {
	slow := &catalog.Database{ID: 1, Name: "slow", Cost: 10}
	fast := &catalog.Database{ID: 2, Name: "fast", Cost: 1}
	a := &catalog.Node{
		Name: "A",
		Tables: []*catalog.Table{
			{Table: "A1", Database: slow, Columns: []catalog.Column{{Name: "one"}, {Name: "two"}}},
			{Table: "A2", Database: fast, Columns: []catalog.Column{{Name: "one"}}},
		},
		Columns: []catalog.Column{{Name: "one"}, {Name: "two"}},
	}
	metric := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{slow, fast}, []*catalog.Node{a, metric})

	query, err := build.GetQueryForNode(snap, metric, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, query.DatabaseID)
}

func TestGetQueryForNode_DatabaseExcludedWhenMissingReferencedColumn(t *testing.T) {
	slow := &catalog.Database{ID: 1, Name: "slow", Cost: 10}
	fast := &catalog.Database{ID: 2, Name: "fast", Cost: 1}
	a := &catalog.Node{
		Name: "A",
		Tables: []*catalog.Table{
			{Table: "A1", Database: slow, Columns: []catalog.Column{{Name: "one"}, {Name: "two"}}},
			{Table: "A2", Database: fast, Columns: []catalog.Column{{Name: "one"}}},
		},
		Columns: []catalog.Column{{Name: "one"}, {Name: "two"}},
	}
	metric := &catalog.Node{Name: "B", Expression: "SELECT COUNT(two) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{slow, fast}, []*catalog.Node{a, metric})

	query, err := build.GetQueryForNode(snap, metric, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, query.DatabaseID)
}

func TestGetQueryForNode_ExplicitDatabaseNotComputable(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{Name: "A", Tables: []*catalog.Table{{Table: "A", Database: db}}}
	metric := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a, metric})

	missing := 2
	_, err := build.GetQueryForNode(snap, metric, nil, nil, &missing)
	require.Error(t, err)
	require.True(t, catalog.ErrUnableToCompute.Is(err))
}

func TestGetQueryForNode_NoCommonDatabase(t *testing.T) {
	a := &catalog.Node{Name: "A"}
	metric := &catalog.Node{Name: "B", Expression: "SELECT COUNT(*) AS cnt FROM A", Parents: []*catalog.Node{a}}
	snap := newSnapshot(nil, []*catalog.Node{a, metric})

	_, err := build.GetQueryForNode(snap, metric, nil, nil, nil)
	require.Error(t, err)
	require.True(t, catalog.ErrNoCommonDatabase.Is(err))
}

func TestGetQueryForNode_WithGroupByAndFilter(t *testing.T) {
	db := &catalog.Database{ID: 1, Cost: 1}
	a := &catalog.Node{
		Name:    "A",
		Tables:  []*catalog.Table{{Table: "A", Database: db}},
		Columns: []catalog.Column{{Name: "one"}, {Name: "two"}},
	}
	snap := newSnapshot([]*catalog.Database{db}, []*catalog.Node{a})

	query, err := build.GetQueryForNode(snap, a, []string{"one"}, []string{"two='x'"}, nil)
	require.NoError(t, err)
	require.Contains(t, query.SubmittedQuery, `WHERE "A".two = 'x'`)
	require.Contains(t, query.SubmittedQuery, `GROUP BY "A".one`)
}
