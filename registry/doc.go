// Package registry resolves collate, exclude and distance functions by name.
//
// Built-in functions are registered at init. Additional functions can be
// defined in Go source files that are interpreted at runtime with yaegi:
//
//	package acme
//
//	import "strings"
//
//	func Collate(s string) string { return strings.ToUpper(s) }
//	func Exclude(left, right map[string]string) bool { return left["src"] == right["src"] }
//	func Distance(a, b string) int { ... }
//
// LoadScript("acme.go") registers "acme.Collate", "acme.Exclude" and
// "acme.Distance" for whichever of the three the file defines.
package registry
