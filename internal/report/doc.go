// Package report renders quality grades for terminals and machines.
//
// The text format prints one line per issue,
//
//	[MAJOR][SCHEMA] density: value 27.1 outside range [0.5, 25] (source: materials.properties.density)
//
// followed by the dimension score table and a final PASS or FAIL line.
// The JSON format emits the grade together with its exit code.
//
// Exit codes follow the gate decision: 0 pass, 1 fail with only major or
// minor issues, 2 fail with at least one critical issue.
package report
