// Package content defines the records validated by contentgate and the
// issues, scores, and results the pipeline produces about them.
//
// A Record is read-only input: structured fields are modeled as a tagged
// union (Value) so that validators dispatch on Kind rather than on runtime
// type inspection. Issues, QualityScores, ValidationResults, and
// QualityGrades are values; once a phase returns them they are not mutated.
package content
