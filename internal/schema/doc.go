// Package schema checks records for structural and type conformance.
//
// One Validator serves every record category. Category-specific rules live
// in CategoryAdapter implementations selected by the record's category, and
// strictness is chosen per call with a content.Mode: basic, enhanced,
// research-grade and audit each add checks to the previous mode.
package schema
