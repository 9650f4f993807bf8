package content

import (
	"fmt"
	"sort"
)

// Category tags the kind of entity a record describes.
type Category string

const (
	// CategoryMaterial describes an engineering material.
	CategoryMaterial Category = "material"
	// CategoryCompound describes a chemical compound.
	CategoryCompound Category = "compound"
	// CategoryContaminant describes a surface contaminant.
	CategoryContaminant Category = "contaminant"
)

// AllCategories returns the known record categories.
func AllCategories() []Category {
	return []Category{CategoryMaterial, CategoryCompound, CategoryContaminant}
}

// ParseCategory converts a string into a known Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Kind discriminates the payload held by a Value.
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindObject Kind = "object"
	KindList   Kind = "list"
)

// ParseKind converts a field type name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNumber, KindString, KindBool, KindObject, KindList:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// Value is a tagged union over the structured value shapes a record may hold.
// Only the payload matching Kind is meaningful.
type Value struct {
	Kind   Kind             `json:"kind"`
	Number float64          `json:"number,omitempty"`
	String string           `json:"string,omitempty"`
	Bool   bool             `json:"bool,omitempty"`
	Object map[string]Field `json:"object,omitempty"`
	List   []Value          `json:"list,omitempty"`
}

// NumberValue returns a numeric Value.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, String: s} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ObjectValue returns a nested object Value.
func ObjectValue(fields map[string]Field) Value { return Value{Kind: KindObject, Object: fields} }

// ListValue returns a list Value.
func ListValue(items ...Value) Value { return Value{Kind: KindList, List: items} }

func (v Value) clone() Value {
	out := v
	if v.Object != nil {
		out.Object = make(map[string]Field, len(v.Object))
		for k, f := range v.Object {
			out.Object[k] = f.clone()
		}
	}
	if v.List != nil {
		out.List = make([]Value, len(v.List))
		for i, item := range v.List {
			out.List[i] = item.clone()
		}
	}
	return out
}

// Field is a structured value plus optional provenance metadata.
type Field struct {
	Value      Value    `json:"value"`
	Unit       string   `json:"unit,omitempty"`
	Source     string   `json:"source,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Num returns a bare numeric field.
func Num(n float64) Field { return Field{Value: NumberValue(n)} }

// Str returns a bare string field.
func Str(s string) Field { return Field{Value: StringValue(s)} }

// HasProvenance reports whether the field names both a source and a confidence.
func (f Field) HasProvenance() bool {
	return f.Source != "" && f.Confidence != nil
}

func (f Field) clone() Field {
	out := f
	out.Value = f.Value.clone()
	if f.Confidence != nil {
		c := *f.Confidence
		out.Confidence = &c
	}
	return out
}

// Record is the unit of validation: one entity with structured fields and
// free-text fields. The pipeline never mutates a Record it is given.
type Record struct {
	ID           string            `json:"id"`
	Category     Category          `json:"category"`
	VoiceProfile string            `json:"voice_profile,omitempty"`
	Fields       map[string]Field  `json:"fields"`
	Text         map[string]string `json:"text"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := &Record{
		ID:           r.ID,
		Category:     r.Category,
		VoiceProfile: r.VoiceProfile,
		Fields:       make(map[string]Field, len(r.Fields)),
		Text:         make(map[string]string, len(r.Text)),
	}
	for k, f := range r.Fields {
		out.Fields[k] = f.clone()
	}
	for k, t := range r.Text {
		out.Text[k] = t
	}
	return out
}

// FieldNames returns structured field names in sorted order.
func (r *Record) FieldNames() []string {
	return sortedKeys(r.Fields)
}

// TextNames returns free-text field names in sorted order.
func (r *Record) TextNames() []string {
	return sortedKeys(r.Text)
}

// NumberField returns the numeric payload of a field, if it is numeric.
func (r *Record) NumberField(name string) (float64, bool) {
	f, ok := r.Fields[name]
	if !ok || f.Value.Kind != KindNumber {
		return 0, false
	}
	return f.Value.Number, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
