// Package audit performs cross-field data-architecture checks on records.
//
// Severities follow a two-tier policy: architectural violations (forbidden
// upstream fields, leaked credentials) are critical so the gate fails fast,
// while data-quality concerns (out-of-range values, index drift, stale
// derived fields) are major or minor so a full audit pass still completes.
package audit
