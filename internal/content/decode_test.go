package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	doc := map[string]any{
		"id":            "aluminum",
		"category":      "material",
		"voice_profile": "technical-us",
		"fields": map[string]any{
			"density": map[string]any{
				"value":      2.7,
				"unit":       "g/cm3",
				"source":     "ASM Handbook",
				"confidence": 0.95,
			},
			"laser_power":    500,
			"category_class": "metal",
			"laser_settings": map[string]any{
				"wavelength": 1064,
			},
			"tags": []any{"light", "ductile"},
		},
		"text": map[string]any{
			"description": "Aluminum is light.",
		},
	}

	rec, err := FromMap(doc)
	require.NoError(t, err)

	assert.Equal(t, "aluminum", rec.ID)
	assert.Equal(t, CategoryMaterial, rec.Category)
	assert.Equal(t, "technical-us", rec.VoiceProfile)

	density := rec.Fields["density"]
	assert.Equal(t, KindNumber, density.Value.Kind)
	assert.InDelta(t, 2.7, density.Value.Number, 1e-9)
	assert.Equal(t, "g/cm3", density.Unit)
	assert.True(t, density.HasProvenance())

	power, ok := rec.NumberField("laser_power")
	require.True(t, ok)
	assert.Equal(t, 500.0, power)
	assert.False(t, rec.Fields["laser_power"].HasProvenance())

	settings := rec.Fields["laser_settings"]
	assert.Equal(t, KindObject, settings.Value.Kind)
	assert.Equal(t, KindNumber, settings.Value.Object["wavelength"].Value.Kind)

	assert.Equal(t, KindList, rec.Fields["tags"].Value.Kind)
	assert.Len(t, rec.Fields["tags"].Value.List, 2)
	assert.Equal(t, "Aluminum is light.", rec.Text["description"])
}

func TestFromMap_ObjectWithValueMember(t *testing.T) {
	rec, err := FromMap(map[string]any{
		"id":       "aluminum",
		"category": "material",
		"fields": map[string]any{
			"laser_settings": map[string]any{
				"value":     3,
				"frequency": 20,
			},
			"wavelength": map[string]any{
				"value": 1064,
				"unit":  "nm",
			},
		},
	})
	require.NoError(t, err)

	settings := rec.Fields["laser_settings"]
	require.Equal(t, KindObject, settings.Value.Kind)
	assert.Equal(t, 3.0, settings.Value.Object["value"].Value.Number)
	assert.Equal(t, 20.0, settings.Value.Object["frequency"].Value.Number)

	wavelength := rec.Fields["wavelength"]
	assert.Equal(t, KindNumber, wavelength.Value.Kind)
	assert.Equal(t, "nm", wavelength.Unit)
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{"missing id", map[string]any{"category": "material"}, "record id is required"},
		{"id wrong type", map[string]any{"id": 5}, "id: expected string"},
		{"fields not a map", map[string]any{"id": "x", "fields": "nope"}, "fields: expected mapping"},
		{"text not string", map[string]any{"id": "x", "text": map[string]any{"a": 1}}, "text.a: expected string"},
		{"bad confidence", map[string]any{"id": "x", "fields": map[string]any{
			"d": map[string]any{"value": 1, "confidence": "high"},
		}}, "confidence: expected number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode_Formats(t *testing.T) {
	yamlDoc := []byte("id: steel\ncategory: material\nfields:\n  density: 7.85\ntext:\n  description: Steel is strong.\n")
	rec, err := Decode(yamlDoc, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "steel", rec.ID)

	jsonDoc := []byte(`{"id":"steel","category":"material","fields":{"density":7.85}}`)
	rec, err = Decode(jsonDoc, ".json")
	require.NoError(t, err)
	d, ok := rec.NumberField("density")
	require.True(t, ok)
	assert.InDelta(t, 7.85, d, 1e-9)

	tomlDoc := []byte("id = \"steel\"\ncategory = \"material\"\n[fields]\ndensity = 7.85\n[text]\ndescription = \"Steel.\"\n")
	rec, err = Decode(tomlDoc, ".toml")
	require.NoError(t, err)
	assert.Equal(t, "Steel.", rec.Text["description"])

	_, err = Decode(yamlDoc, ".xml")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: copper\ncategory: material\n"), 0o600))

	rec, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "copper", rec.ID)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	assert.True(t, SupportedExtension("a.YML"))
	assert.False(t, SupportedExtension("a.txt"))
}

func TestRecordClone(t *testing.T) {
	conf := 0.9
	rec := &Record{
		ID:       "r1",
		Category: CategoryMaterial,
		Fields: map[string]Field{
			"density": {Value: NumberValue(2.7), Confidence: &conf},
			"nested":  {Value: ObjectValue(map[string]Field{"a": Num(1)})},
		},
		Text: map[string]string{"description": "x"},
	}

	clone := rec.Clone()
	*clone.Fields["density"].Confidence = 0.1
	clone.Fields["nested"].Value.Object["a"] = Num(2)
	clone.Text["description"] = "y"

	assert.InDelta(t, 0.9, *rec.Fields["density"].Confidence, 1e-9)
	assert.Equal(t, 1.0, rec.Fields["nested"].Value.Object["a"].Value.Number)
	assert.Equal(t, "x", rec.Text["description"])
	assert.Equal(t, []string{"density", "nested"}, rec.FieldNames())
}
