package interp

import "strings"

// render is the single display coercion both `echo` and the `+`
// string-concatenation overload use, so
// the two call sites agree byte-for-byte. Object references need the
// heap to look up their dynamic class name; every other Value renders
// from its own fields.
func (e *Evaluator) render(v Value) string {
	switch val := v.(type) {
	case ObjectValue:
		return "<" + e.heap.ClassNameOf(val) + " instance>"
	case ArrayValue:
		parts := make([]string, len(*val.Elems))
		for i, el := range *val.Elems {
			parts[i] = e.render(el)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.String()
	}
}
