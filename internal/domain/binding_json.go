package domain

import (
	"encoding/json"
	"fmt"
)

// bindingValue is the typed JSON envelope for one binding value.
// The explicit kind tag keeps int64/float64 distinguishable across a
// round trip, which plain JSON numbers would not.
type bindingValue struct {
	Kind  string          `json:"kind"` // "int" | "float" | "choice"
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the binding with per-value kind tags so the
// round trip is lossless.
func (b ParameterBinding) MarshalJSON() ([]byte, error) {
	out := make(map[string]bindingValue, len(b))
	for name, v := range b {
		var bv bindingValue
		switch t := v.(type) {
		case int64:
			raw, _ := json.Marshal(t)
			bv = bindingValue{Kind: "int", Value: raw}
		case float64:
			raw, _ := json.Marshal(t)
			bv = bindingValue{Kind: "float", Value: raw}
		case string:
			raw, _ := json.Marshal(t)
			bv = bindingValue{Kind: "choice", Value: raw}
		default:
			return nil, fmt.Errorf("binding value %q has unsupported type %T", name, v)
		}
		out[name] = bv
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a binding serialized by MarshalJSON.
func (b *ParameterBinding) UnmarshalJSON(data []byte) error {
	var in map[string]bindingValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	out := make(ParameterBinding, len(in))
	for name, bv := range in {
		switch bv.Kind {
		case "int":
			var v int64
			if err := json.Unmarshal(bv.Value, &v); err != nil {
				return fmt.Errorf("binding value %q: %w", name, err)
			}
			out[name] = v
		case "float":
			var v float64
			if err := json.Unmarshal(bv.Value, &v); err != nil {
				return fmt.Errorf("binding value %q: %w", name, err)
			}
			out[name] = v
		case "choice":
			var v string
			if err := json.Unmarshal(bv.Value, &v); err != nil {
				return fmt.Errorf("binding value %q: %w", name, err)
			}
			out[name] = v
		default:
			return fmt.Errorf("binding value %q has unknown kind %q", name, bv.Kind)
		}
	}
	*b = out
	return nil
}
