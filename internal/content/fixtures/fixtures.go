// Package fixtures provides records shared by the pipeline test suites.
//
// Every constructor returns a fresh record, so tests may modify the result.
// The records are written against the bundled requirements document.
package fixtures

import "github.com/fyrsmithlabs/contentgate/internal/content"

// AuthenticDescription is eight sentences in two paragraphs written in the
// technical-analyst voice, with claims matching GoodMaterial.
const AuthenticDescription = "Aluminum reflects most near-infrared light, so cleaning it demands careful control of energy delivery. " +
	"The data show that a 1064 nm source removes oxide layers without pitting the base metal. " +
	"Measured surface roughness stayed below 1.2 microns after a single pass. " +
	"By comparison, abrasive blasting roughly doubled that figure on the same alloy.\n\n" +
	"A 500 W pulsed source gives enough peak power to lift contaminants quickly. " +
	"Consequently, operators can clean large panels without preheating. " +
	"Density of 2.7 g/cm3 keeps thermal mass low, which limits heat buildup between passes. " +
	"Residue levels measured after cleaning met aerospace bonding requirements."

// ContaminatedDescription keeps the structure and claims of
// AuthenticDescription but is dominated by field-engineer markers.
const ContaminatedDescription = "Aluminum reflects most near-infrared light, so cleaning it demands careful control of energy delivery. " +
	"The data show that a 1064 nm source removes oxide layers without pitting the base metal. " +
	"In practice, we dial the pulse overlap down on the shop floor to avoid pitting. " +
	"As a rule of thumb, we keep the beam moving on reflective alloys.\n\n" +
	"A 500 W pulsed source gives enough peak power to lift contaminants quickly. " +
	"On the shop floor we run a single pass before inspection. " +
	"Density of 2.7 g/cm3 keeps thermal mass low, which limits heat buildup between passes. " +
	"Residue levels measured after cleaning met aerospace bonding requirements."

func sourced(v float64, unit, source string, confidence float64) content.Field {
	return content.Field{Value: content.NumberValue(v), Unit: unit, Source: source, Confidence: &confidence}
}

// GoodMaterial returns a material record that passes every phase under the
// bundled requirements.
func GoodMaterial() *content.Record {
	return &content.Record{
		ID:           "aluminum",
		Category:     content.CategoryMaterial,
		VoiceProfile: "technical-analyst",
		Fields: map[string]content.Field{
			"name":           content.Str("Aluminum"),
			"category_class": content.Str("metal"),
			"density":        sourced(2.7, "g/cm3", "ASM Handbook", 0.95),
			"laser_power":    sourced(500, "W", "vendor datasheet", 0.9),
			"laser_power_kw": sourced(0.5, "kW", "derived", 1),
			"wavelength":     sourced(1064, "nm", "vendor datasheet", 0.9),
			"melting_point":  sourced(660, "C", "ASM Handbook", 0.95),
			"laser_settings": {Value: content.ObjectValue(map[string]content.Field{
				"power":      content.Num(500),
				"wavelength": content.Num(1064),
				"spot_size":  content.Num(0.1),
			})},
		},
		Text: map[string]string{"description": AuthenticDescription},
	}
}

// GoodCompound returns a compound record that passes schema and audit.
func GoodCompound() *content.Record {
	return &content.Record{
		ID:           "aluminum-oxide",
		Category:     content.CategoryCompound,
		VoiceProfile: "technical-analyst",
		Fields: map[string]content.Field{
			"name":         content.Str("Aluminum oxide"),
			"formula":      content.Str("Al2O3"),
			"cas_number":   content.Str("1344-28-1"),
			"molar_mass":   sourced(101.96, "g/mol", "CRC Handbook", 0.99),
			"hazard_class": content.Str("irritant"),
		},
		Text: map[string]string{"description": AuthenticDescription},
	}
}

// GoodContaminant returns a contaminant record that passes schema and audit.
func GoodContaminant() *content.Record {
	return &content.Record{
		ID:           "rust",
		Category:     content.CategoryContaminant,
		VoiceProfile: "technical-analyst",
		Fields: map[string]content.Field{
			"name":               content.Str("Rust"),
			"removal_methods":    {Value: content.ListValue(content.StringValue("pulsed ablation"), content.StringValue("continuous wave"))},
			"affected_materials": {Value: content.ListValue(content.StringValue("stainless-steel"), content.StringValue("titanium"))},
			"adhesion":           content.Str("moderate"),
			"thickness":          sourced(80, "um", "field survey", 0.7),
		},
		Text: map[string]string{"description": AuthenticDescription},
	}
}

// Records returns one good record per category.
func Records() []*content.Record {
	return []*content.Record{GoodMaterial(), GoodCompound(), GoodContaminant()}
}

// Document renders rec in the generic form accepted by content.FromMap, as a
// request body or record file would carry it.
func Document(rec *content.Record) map[string]any {
	fields := make(map[string]any, len(rec.Fields))
	for name, f := range rec.Fields {
		fields[name] = fieldDocument(f)
	}
	text := make(map[string]any, len(rec.Text))
	for name, s := range rec.Text {
		text[name] = s
	}

	doc := map[string]any{
		"id":       rec.ID,
		"category": string(rec.Category),
		"fields":   fields,
		"text":     text,
	}
	if rec.VoiceProfile != "" {
		doc["voice_profile"] = rec.VoiceProfile
	}
	return doc
}

func fieldDocument(f content.Field) any {
	v := valueDocument(f.Value)
	if f.Unit == "" && f.Source == "" && f.Confidence == nil {
		return v
	}
	m := map[string]any{"value": v}
	if f.Unit != "" {
		m["unit"] = f.Unit
	}
	if f.Source != "" {
		m["source"] = f.Source
	}
	if f.Confidence != nil {
		m["confidence"] = *f.Confidence
	}
	return m
}

func valueDocument(v content.Value) any {
	switch v.Kind {
	case content.KindNumber:
		return v.Number
	case content.KindBool:
		return v.Bool
	case content.KindObject:
		obj := make(map[string]any, len(v.Object))
		for k, f := range v.Object {
			obj[k] = fieldDocument(f)
		}
		return obj
	case content.KindList:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = valueDocument(item)
		}
		return items
	default:
		return v.String
	}
}
