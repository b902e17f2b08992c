// Package confwriter serializes objects into the configuration language.
//
// EmitObject writes one declaration with sorted attribute keys, so the same
// object always produces the same bytes. The output is exactly what
// pkg/confcompile parses back.
package confwriter
