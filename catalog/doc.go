// Package catalog connects named parts to declarative pipeline definitions.
//
// A Registry maps names to stream parts. A Definition lists part names in
// composition order and typically comes from a YAML file:
//
//	name: word-count
//	description: count words in a text file
//	parts:
//	  - read-lines
//	  - split-words
//	  - count
//
// Build resolves the names against the registry and composes them left to
// right; BuildProcess additionally requires the result to be a complete,
// runnable pipeline:
//
//	reg := catalog.NewRegistry()
//	reg.MustRegister("read-lines", parts.ReadLines("input.txt"))
//	reg.MustRegister("split-words", parts.FlatMap(splitWords))
//	reg.MustRegister("count", parts.Collect[string]())
//
//	def, err := catalog.NewFileLoader("./pipelines").Load("word-count")
//	proc, err := catalog.BuildProcess(def, reg)
//	result, err := proc.Run(ctx)
//
// Composition and type errors surface unchanged from the stream package,
// so a definition that chains incompatible parts fails at build time with
// the offending operands named.
package catalog
