package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
)

const maxRecordFileSize = 4 * 1024 * 1024

// SupportedExtension reports whether LoadFile can decode files with the
// given extension.
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}

// LoadFile decodes a record document from disk. YAML and JSON share the
// YAML parser; TOML is decoded separately.
func LoadFile(path string) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat record file: %w", err)
	}
	if info.Size() > maxRecordFileSize {
		return nil, fmt.Errorf("record file too large: %d bytes (max %d)", info.Size(), maxRecordFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}
	rec, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}

// Decode parses document bytes in the format implied by ext.
func Decode(data []byte, ext string) (*Record, error) {
	var doc map[string]any
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml", ".json", "":
		parsed, err := yaml.Parser().Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		doc = parsed
	default:
		return nil, fmt.Errorf("unsupported record format %q", ext)
	}
	return FromMap(doc)
}
