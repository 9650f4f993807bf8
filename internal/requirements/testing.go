package requirements

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
)

// DefaultMap returns the bundled document as a nested map that callers may
// modify and pass to FromMap. It is intended for tests that need variants of
// the default requirements.
func DefaultMap() map[string]any {
	doc, err := yaml.Parser().Unmarshal(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("requirements: bundled document is invalid: %v", err))
	}
	return doc
}

// SetPath sets a dotted key in a nested map, creating intermediate maps.
func SetPath(doc map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// DeletePath removes a dotted key from a nested map.
func DeletePath(doc map[string]any, key string) {
	parts := strings.Split(key, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}

// MustFromMap is FromMap that panics on error.
func MustFromMap(doc map[string]any) *Config {
	cfg, err := FromMap(doc)
	if err != nil {
		panic(err)
	}
	return cfg
}
