// Package requirements is the registry of every rule, severity and threshold
// the validation pipeline applies.
//
// A Config is loaded once from a koanf provider, validated, and compiled: all
// pattern tables and the claim matcher are built at load time. The result is
// immutable and may be shared by any number of goroutines. Nothing in the
// pipeline hardcodes a limit; every threshold is read from a Config, and a
// missing key is a ConfigurationError rather than an implicit default.
//
// Several configurations (for example strict and lenient) can coexist in one
// process because nothing is held in package state.
package requirements
