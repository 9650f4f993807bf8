package content

import (
	"fmt"
	"sort"
	"strings"
)

// FromMap builds a Record from a generic document such as one produced by a
// YAML, JSON, or TOML decoder. Recognized top-level keys are id, category,
// voice_profile, fields, and text.
func FromMap(doc map[string]any) (*Record, error) {
	rec := &Record{
		Fields: make(map[string]Field),
		Text:   make(map[string]string),
	}

	id, err := stringKey(doc, "id")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("record id is required")
	}
	rec.ID = id

	cat, err := stringKey(doc, "category")
	if err != nil {
		return nil, err
	}
	// Unknown categories are kept verbatim; the schema validator reports them.
	rec.Category = Category(cat)

	if rec.VoiceProfile, err = stringKey(doc, "voice_profile"); err != nil {
		return nil, err
	}

	if raw, ok := doc["fields"]; ok && raw != nil {
		fields, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("fields: expected mapping, got %T", raw)
		}
		for _, name := range sortedKeys(fields) {
			f, err := decodeField(fields[name])
			if err != nil {
				return nil, fmt.Errorf("fields.%s: %w", name, err)
			}
			rec.Fields[name] = f
		}
	}

	if raw, ok := doc["text"]; ok && raw != nil {
		text, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("text: expected mapping, got %T", raw)
		}
		for name, v := range text {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("text.%s: expected string, got %T", name, v)
			}
			rec.Text[name] = s
		}
	}

	return rec, nil
}

func stringKey(doc map[string]any, key string) (string, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, raw)
	}
	return s, nil
}

// provenanceKeys are the keys allowed beside "value" in a provenance-bearing
// field.
var provenanceKeys = map[string]bool{"value": true, "unit": true, "source": true, "confidence": true}

// decodeField treats a mapping with a "value" key and otherwise only
// provenance keys as a provenance-bearing field. Any other mapping is a
// nested object, even one with its own "value" member.
func decodeField(raw any) (Field, error) {
	m, isMap := asMap(raw)
	if !isMap {
		v, err := decodeValue(raw)
		if err != nil {
			return Field{}, err
		}
		return Field{Value: v}, nil
	}

	inner, hasValue := m["value"]
	if !hasValue || !isProvenance(m) {
		v, err := decodeValue(raw)
		if err != nil {
			return Field{}, err
		}
		return Field{Value: v}, nil
	}

	v, err := decodeValue(inner)
	if err != nil {
		return Field{}, fmt.Errorf("value: %w", err)
	}
	f := Field{Value: v}
	if f.Unit, err = stringKey(m, "unit"); err != nil {
		return Field{}, err
	}
	if f.Source, err = stringKey(m, "source"); err != nil {
		return Field{}, err
	}
	if c, ok := m["confidence"]; ok && c != nil {
		n, ok := asNumber(c)
		if !ok {
			return Field{}, fmt.Errorf("confidence: expected number, got %T", c)
		}
		f.Confidence = &n
	}
	return f, nil
}

func isProvenance(m map[string]any) bool {
	for k := range m {
		if !provenanceKeys[k] {
			return false
		}
	}
	return true
}

func decodeValue(raw any) (Value, error) {
	if n, ok := asNumber(raw); ok {
		return NumberValue(n), nil
	}
	switch v := raw.(type) {
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case []any:
		items := make([]Value, 0, len(v))
		for i, item := range v {
			decoded, err := decodeValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, decoded)
		}
		return ListValue(items...), nil
	case []map[string]any:
		items := make([]Value, 0, len(v))
		for i, item := range v {
			decoded, err := decodeValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, decoded)
		}
		return ListValue(items...), nil
	}
	if m, ok := asMap(raw); ok {
		obj := make(map[string]Field, len(m))
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f, err := decodeField(m[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			obj[k] = f
		}
		return ObjectValue(obj), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}

func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}

func asNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}
