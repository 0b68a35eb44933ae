package model

import (
	"fmt"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// BindingSource identifies where a bound value comes from at load time.
type BindingSource int

const (
	// SourceRow pulls the value from the current input row.
	SourceRow BindingSource = iota + 1
	// SourceKwargs pulls a constant supplied once for the whole batch.
	SourceKwargs
	// SourceRowList pulls a list-valued row field used to fan out a
	// one-to-many relationship match. Only legal inside a matcher.
	SourceRowList
)

// String returns the string representation of BindingSource.
func (s BindingSource) String() string {
	switch s {
	case SourceRow:
		return "row"
	case SourceKwargs:
		return "kwargs"
	case SourceRowList:
		return "row_list"
	default:
		return "unknown"
	}
}

// Binding resolves one declared property to a concrete value at load time.
// It is a closed union over the three binding sources; construct values with
// FromRow, FromRowWithIndex, FromKwargs, or FromRowList.
type Binding struct {
	source     BindingSource
	field      string
	extraIndex bool
}

// FromRow binds the property to the named field of each input row.
// A missing field resolves to null rather than raising; required/optional
// field policy is the collector's responsibility.
func FromRow(field string) Binding {
	return Binding{source: SourceRow, field: field}
}

// FromRowWithIndex is FromRow with an additional lookup index requested for
// the bound graph property. The flag is informational: it is forwarded to the
// index manager and does not change resolution.
func FromRowWithIndex(field string) Binding {
	return Binding{source: SourceRow, field: field, extraIndex: true}
}

// FromKwargs binds the property to a constant supplied once per load call
// under the given name. A missing kwarg is a caller bug and resolves to a
// configuration error, never a silent default.
func FromKwargs(name string) Binding {
	return Binding{source: SourceKwargs, field: name}
}

// FromRowList binds to a list-valued row field used to fan out zero or more
// relationship matches per row, one per list element.
func FromRowList(field string) Binding {
	return Binding{source: SourceRowList, field: field}
}

// Source returns where the bound value comes from.
func (b Binding) Source() BindingSource { return b.source }

// Field returns the row field name or kwarg name the binding reads.
func (b Binding) Field() string { return b.field }

// ExtraIndex reports whether an additional lookup index was requested for
// the bound graph property.
func (b Binding) ExtraIndex() bool { return b.extraIndex }

// IsZero reports whether the binding was never constructed.
func (b Binding) IsZero() bool { return b.source == 0 }

// Resolve returns the concrete value for this binding given a row and the
// per-call kwargs.
//
//   - SourceRow: row[field], or nil if the field is absent.
//   - SourceKwargs: kwargs[name]; missing name is a CONFIG_MISSING_KWARG error.
//   - SourceRowList: row[field] verified to be list-typed; a non-list value is
//     a CONFIG_VALIDATION_FAILED error. An absent field resolves to an empty
//     list (zero fan-out).
func (b Binding) Resolve(row Row, kwargs Kwargs) (any, error) {
	switch b.source {
	case SourceRow:
		return row[b.field], nil
	case SourceKwargs:
		value, ok := kwargs[b.field]
		if !ok {
			return nil, types.NewError(types.CONFIG_MISSING_KWARG,
				fmt.Sprintf("kwarg %q is not supplied", b.field))
		}
		return value, nil
	case SourceRowList:
		value, ok := row[b.field]
		if !ok || value == nil {
			return []any{}, nil
		}
		list, err := asList(value)
		if err != nil {
			return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("row field %q is bound as a list", b.field), err)
		}
		return list, nil
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
			"binding was not constructed")
	}
}

// asList normalizes the supported list-of-scalar shapes into []any.
func asList(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out, nil
	case []int:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = int64(e)
		}
		return out, nil
	case []int64:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out, nil
	case []float64:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value has non-list type %T", value)
	}
}
