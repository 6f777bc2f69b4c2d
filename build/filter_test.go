package build_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzzzz1st/datajunction/build"
	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/sqlast"
)

func cols(names ...string) map[string]catalog.Column {
	m := make(map[string]catalog.Column, len(names))
	for _, n := range names {
		m[n] = catalog.Column{Name: n, Type: catalog.ColumnTypeStr}
	}
	return m
}

func TestGetFilter_Numeric(t *testing.T) {
	expr, err := build.GetFilter(cols("two"), "two>1")
	require.NoError(t, err)
	op := expr.(*sqlast.BinaryOp)
	require.Equal(t, ">", op.Op)
	require.Equal(t, "1", op.Right.(*sqlast.Value).Literal)
	require.Equal(t, sqlast.ValueInt, op.Right.(*sqlast.Value).Kind)
}

func TestGetFilter_StringLiteral(t *testing.T) {
	expr, err := build.GetFilter(cols("name"), "name='x'")
	require.NoError(t, err)
	op := expr.(*sqlast.BinaryOp)
	require.Equal(t, "=", op.Op)
	val := op.Right.(*sqlast.Value)
	require.Equal(t, sqlast.ValueString, val.Kind)
	require.Equal(t, "x", val.Literal)
}

func TestGetFilter_TwoCharOperator(t *testing.T) {
	expr, err := build.GetFilter(cols("two"), "two>=1")
	require.NoError(t, err)
	require.Equal(t, ">=", expr.(*sqlast.BinaryOp).Op)
}

func TestGetFilter_NullAndBool(t *testing.T) {
	expr, err := build.GetFilter(cols("two"), "two=null")
	require.NoError(t, err)
	require.Equal(t, sqlast.ValueNull, expr.(*sqlast.BinaryOp).Right.(*sqlast.Value).Kind)

	expr, err = build.GetFilter(cols("two"), "two=true")
	require.NoError(t, err)
	require.Equal(t, sqlast.ValueBool, expr.(*sqlast.BinaryOp).Right.(*sqlast.Value).Kind)
}

func TestGetFilter_InvalidFilterShape(t *testing.T) {
	_, err := build.GetFilter(cols("two"), "not a filter")
	require.Error(t, err)
	require.True(t, catalog.ErrInvalidFilter.Is(err))
}

func TestGetFilter_UnknownColumn(t *testing.T) {
	_, err := build.GetFilter(cols("two"), "three>1")
	require.Error(t, err)
	require.True(t, catalog.ErrInvalidColumn.Is(err))
}

func TestGetFilter_UnrecognizedOperator(t *testing.T) {
	_, err := build.GetFilter(cols("two"), "two<>1")
	require.Error(t, err)
	require.True(t, catalog.ErrInvalidOperation.Is(err))
}

func TestGetFilter_InvalidValue_RejectsExpressionInjection(t *testing.T) {
	_, err := build.GetFilter(cols("two"), "two>(SELECT")
	require.Error(t, err)
	require.True(t, catalog.ErrInvalidValue.Is(err))
}
