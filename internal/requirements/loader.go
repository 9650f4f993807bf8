package requirements

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/contentgate/internal/content"
)

const maxRequirementsFileSize = 1024 * 1024 // 1MB

//go:embed default.yaml
var defaultDocument []byte

// Load reads a requirements document from provider, validates it and
// compiles its pattern tables. parser may be nil for providers that return
// structured maps. Every failure is a *ConfigurationError.
func Load(provider koanf.Provider, parser koanf.Parser) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(provider, parser); err != nil {
		return nil, wrapConfigErr("", "failed to read requirements", err)
	}

	for _, key := range requiredKeys {
		if !k.Exists(key) {
			return nil, configErr(key, "required key missing")
		}
	}

	if err := rejectNonFinite("", k.Raw()); err != nil {
		return nil, err
	}

	var doc document
	if err := k.Unmarshal("", &doc); err != nil {
		return nil, wrapConfigErr("", "failed to decode requirements", err)
	}

	cfg := &Config{
		Version:    doc.Version,
		Categories: make(map[content.Category]CategoryRules, len(doc.Categories)),
		Schema:     doc.Schema,
		Text:       doc.Text,
		Structural: doc.Structural,
		Voice:      doc.Voice,
		Synthetic:  doc.Synthetic,
		Technical:  doc.Technical,
		Scoring:    doc.Scoring,
		Phases:     doc.Phases,
		AutoFix:    doc.AutoFix,
		k:          k,
	}
	if err := compile(cfg, doc, k); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBytes loads a YAML (or JSON) requirements document.
func LoadBytes(data []byte) (*Config, error) {
	return Load(rawbytes.Provider(data), yaml.Parser())
}

// LoadFile loads a requirements document from disk.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapConfigErr("", fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxRequirementsFileSize+1))
	if err != nil {
		return nil, wrapConfigErr("", fmt.Sprintf("failed to read %s", path), err)
	}
	if len(data) > maxRequirementsFileSize {
		return nil, configErr("", "%s exceeds %d bytes", path, maxRequirementsFileSize)
	}
	return LoadBytes(data)
}

// FromMap loads a requirements document from a nested map.
func FromMap(doc map[string]any) (*Config, error) {
	return Load(confmap.Provider(doc, ""), nil)
}

// Default returns the bundled requirements document.
func Default() (*Config, error) {
	return LoadBytes(defaultDocument)
}

// DefaultDocument returns a copy of the bundled requirements YAML.
func DefaultDocument() []byte {
	out := make([]byte, len(defaultDocument))
	copy(out, defaultDocument)
	return out
}
