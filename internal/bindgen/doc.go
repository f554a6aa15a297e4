// Package bindgen turns the declarations clang found behind the umbrella header
// into a cgo source file exposing every allowlisted function, type and variable of
// the kernel.
//
// Matched enums are emitted as closed variants: a named integer type with one
// constant per discriminant, a checked conversion from the raw value and a String
// method. Declarations cgo cannot express are skipped and reported, never guessed.
package bindgen
