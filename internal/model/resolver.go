package model

import (
	"fmt"
	"time"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// rowBindings walks every binding site of a node schema and returns the
// row-bound bindings in declaration order.
func (s *NodeSchema) rowBindings() []Binding {
	bindings := make([]Binding, 0, len(s.Properties))
	for _, p := range s.Properties {
		bindings = append(bindings, p.Binding)
	}
	for _, rel := range s.AllRelationships() {
		for _, term := range rel.TargetMatcher {
			bindings = append(bindings, term.Binding)
		}
		for _, p := range rel.Properties {
			bindings = append(bindings, p.Binding)
		}
	}
	return bindings
}

func (s *MatchLinkSchema) rowBindings() []Binding {
	bindings := make([]Binding, 0)
	for _, term := range s.SourceMatcher {
		bindings = append(bindings, term.Binding)
	}
	for _, term := range s.TargetMatcher {
		bindings = append(bindings, term.Binding)
	}
	for _, p := range s.Properties {
		bindings = append(bindings, p.Binding)
	}
	return bindings
}

// KwargNames returns the kwarg names referenced anywhere in the schema, in
// declaration order without duplicates.
func (s *NodeSchema) KwargNames() []string {
	return kwargNames(s.rowBindings())
}

// KwargNames returns the kwarg names referenced anywhere in the schema, in
// declaration order without duplicates.
func (s *MatchLinkSchema) KwargNames() []string {
	return kwargNames(s.rowBindings())
}

func kwargNames(bindings []Binding) []string {
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, b := range bindings {
		if b.Source() == SourceKwargs && !seen[b.Field()] {
			seen[b.Field()] = true
			names = append(names, b.Field())
		}
	}
	return names
}

// ResolveParams builds the query parameter map for one load call: the update
// tag plus every kwarg the schema references. A missing kwarg is a
// configuration error surfaced before any store mutation.
func ResolveParams(kwargNames []string, kwargs Kwargs) (map[string]any, error) {
	tag, err := kwargs.UpdateTag()
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		KwargUpdateTag: NormalizeValue(tag),
	}
	for _, name := range kwargNames {
		value, ok := kwargs[name]
		if !ok {
			return nil, types.NewError(types.CONFIG_MISSING_KWARG,
				fmt.Sprintf("kwarg %q is not supplied", name))
		}
		params[name] = NormalizeValue(value)
	}
	return params, nil
}

// ResolveRows normalizes the input rows for the driver and verifies every
// list-bound field actually holds a list. Only fields referenced by a
// row-bound binding are carried into the resolved rows.
func resolveRows(bindings []Binding, rows []Row, kwargs Kwargs) ([]map[string]any, error) {
	resolved := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		out := make(map[string]any, len(bindings))
		for _, b := range bindings {
			if b.Source() == SourceKwargs {
				continue
			}
			value, err := b.Resolve(row, kwargs)
			if err != nil {
				return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED,
					fmt.Sprintf("row %d", i), err)
			}
			out[b.Field()] = NormalizeValue(value)
		}
		resolved = append(resolved, out)
	}
	return resolved, nil
}

// ResolveRows resolves a batch of rows against the node schema.
func (s *NodeSchema) ResolveRows(rows []Row, kwargs Kwargs) ([]map[string]any, error) {
	return resolveRows(s.rowBindings(), rows, kwargs)
}

// ResolveRows resolves a batch of rows against the MatchLink schema.
func (s *MatchLinkSchema) ResolveRows(rows []Row, kwargs Kwargs) ([]map[string]any, error) {
	return resolveRows(s.rowBindings(), rows, kwargs)
}

// NormalizeValue converts Go values to driver-compatible types.
// Handles time.Time, integer widths, and nested lists and maps.
func NormalizeValue(value any) any {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case []string:
		return v
	case []int:
		result := make([]int64, len(v))
		for i, val := range v {
			result[i] = int64(val)
		}
		return result
	case []float64:
		return v
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = NormalizeValue(val)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = NormalizeValue(val)
		}
		return result
	default:
		// Basic types (string, int64, float64, bool) pass through.
		return v
	}
}
