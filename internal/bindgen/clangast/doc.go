// Package clangast runs clang over the umbrella header and decodes the JSON AST
// dump into the flat list of top-level declarations the binding generator needs.
//
// The dump is streamed: each top-level node of the translation unit is decoded on
// its own, so system headers pulled in by the kernel never have to fit in memory
// as one document.
package clangast
