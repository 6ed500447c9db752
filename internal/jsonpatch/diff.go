// Package jsonpatch computes RFC 6902 style diffs between parameter snapshots.
package jsonpatch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"projection-engine/internal/model"
)

// Parameters diffs two parameter snapshots through their JSON form.
func Parameters(a, b model.UserParameters) ([]model.ParameterDiff, error) {
	av, err := toTree(a)
	if err != nil {
		return nil, err
	}
	bv, err := toTree(b)
	if err != nil {
		return nil, err
	}
	return Diff(av, bv, ""), nil
}

func toTree(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding parameters: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding parameters: %w", err)
	}
	return out, nil
}

// Diff computes the operations that transform a into b.
// Both a and b should be the result of json.Unmarshal into any.
// Path should be "" for the root document. Object keys are visited in
// sorted order so the output is stable.
func Diff(a, b any, path string) []model.ParameterDiff {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		return []model.ParameterDiff{replaceOp(path, a, b)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	// Different types or different primitive values
	if aIsMap || bIsMap || aIsArr || bIsArr || a != b {
		return []model.ParameterDiff{replaceOp(path, a, b)}
	}
	return nil
}

func diffObjects(a, b map[string]any, path string) []model.ParameterDiff {
	var ops []model.ParameterDiff

	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			ops = append(ops, removeOp(path+"/"+escapeKey(k), a[k]))
		}
	}

	for _, k := range sortedKeys(b) {
		childPath := path + "/" + escapeKey(k)
		av, inA := a[k]
		if !inA {
			ops = append(ops, addOp(childPath, b[k]))
			continue
		}
		ops = append(ops, Diff(av, b[k], childPath)...)
	}
	return ops
}

func diffArrays(a, b []any, path string) []model.ParameterDiff {
	var ops []model.ParameterDiff

	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	for i := 0; i < minLen; i++ {
		ops = append(ops, Diff(a[i], b[i], path+"/"+strconv.Itoa(i))...)
	}

	// Elements removed (reverse order to keep indices valid)
	for i := len(a) - 1; i >= minLen; i-- {
		ops = append(ops, removeOp(path+"/"+strconv.Itoa(i), a[i]))
	}

	for i := minLen; i < len(b); i++ {
		ops = append(ops, addOp(path+"/"+strconv.Itoa(i), b[i]))
	}
	return ops
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func replaceOp(path string, from, value any) model.ParameterDiff {
	return model.ParameterDiff{Op: "replace", Path: path, From: from, Value: value}
}

func addOp(path string, value any) model.ParameterDiff {
	return model.ParameterDiff{Op: "add", Path: path, Value: value}
}

func removeOp(path string, from any) model.ParameterDiff {
	return model.ParameterDiff{Op: "remove", Path: path, From: from}
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
