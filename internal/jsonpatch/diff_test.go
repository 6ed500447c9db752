package jsonpatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"projection-engine/internal/model"
)

func TestDiffIsStableAndTyped(t *testing.T) {
	a := map[string]any{"b": 1.0, "a": map[string]any{"x": "old", "gone": true}, "list": []any{1.0, 2.0}}
	b := map[string]any{"b": 2.0, "a": map[string]any{"x": "new", "a/b": 3.0}, "list": []any{1.0}}

	got := Diff(a, b, "")
	require.Equal(t, []model.ParameterDiff{
		{Op: "remove", Path: "/a/gone", From: true},
		{Op: "add", Path: "/a/a~1b", Value: 3.0},
		{Op: "replace", Path: "/a/x", From: "old", Value: "new"},
		{Op: "replace", Path: "/b", From: 1.0, Value: 2.0},
		{Op: "remove", Path: "/list/1", From: 2.0},
	}, got)
}

func TestDiffIdenticalIsEmpty(t *testing.T) {
	v := map[string]any{"a": []any{map[string]any{"k": "v"}}}
	require.Empty(t, Diff(v, v, ""))
}

func TestParametersReportsChangedLeaves(t *testing.T) {
	base := model.DefaultParameters(model.NewDate(2025, 1, 1))
	next := base.Clone()
	next.Income.Amount = 9000
	next.Loan.OffsetEnabled = false

	got, err := Parameters(base, next)
	require.NoError(t, err)
	require.Equal(t, []model.ParameterDiff{
		{Op: "replace", Path: "/income/amount", From: 8500.0, Value: 9000.0},
		{Op: "replace", Path: "/loan/offset_enabled", From: true, Value: false},
	}, got)
}
