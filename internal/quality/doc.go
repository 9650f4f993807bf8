// Package quality scores free-text fields along four dimensions: voice
// authenticity, human likeness, technical accuracy and structural quality.
//
// Every scorer reads its pattern tables and thresholds from a
// requirements.Config and returns one content.QualityScore in [0, 100] plus
// zero or more issues. Wrap scorers with Safe so malformed input or an
// internal fault becomes a zero score and an issue instead of a panic.
package quality
