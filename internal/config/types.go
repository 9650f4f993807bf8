package config

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"
)

// Duration is a time.Duration read from text such as "30s". A bare integer
// is taken as seconds, so CONTENTGATE_SERVER_SHUTDOWN_TIMEOUT=30 works.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.ParseInt(s, 10, 64)
		if convErr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		parsed = time.Duration(secs) * time.Second
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler. JSON output uses it too.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return d.Duration().String() }

// Secret is a configuration string, such as server.auth_token, that never
// appears in logs, reports or serialized config. Value returns the raw
// string.
type Secret string

const redacted = "[REDACTED]"

// String returns "[REDACTED]" for a set secret and "" otherwise.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString keeps %#v redacted.
func (s Secret) GoString() string { return "Secret(" + redacted + ")" }

// Value returns the raw secret.
func (s Secret) Value() string { return string(s) }

// IsSet reports whether the secret is non-empty.
func (s Secret) IsSet() bool { return s != "" }

// Matches compares candidate with the secret in constant time. An unset
// secret matches nothing.
func (s Secret) Matches(candidate string) bool {
	if !s.IsSet() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s)) == 1
}

// MarshalText implements encoding.TextMarshaler with the redacted form.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and keeps the raw value.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}
