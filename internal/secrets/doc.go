// Package secrets detects credentials leaked into publishable text.
//
// Detection is rule driven: every rule is a regular expression with optional
// keywords that must also appear in the text before the rule applies. Rules
// are compiled once by Config.Validate and the resulting Detector is safe for
// concurrent use. Findings never carry the matched value.
package secrets
