// Package stream provides a composition algebra for pull-based streaming
// pipelines.
//
// Independently authored producers, consumers, and pipes are combined with
// Compose (or Chain) into larger parts and, ultimately, into a runnable
// Process. Type compatibility is checked eagerly at every composition
// boundary, never at run time.
//
// Streams are lazy and demand-driven: the consumer end drives all pulling,
// one value at a time, providing natural backpressure without explicit flow
// control. Pipes may drop, expand, or batch values (any in/out ratio), but
// must preserve relative order.
//
// # Roles
//
// Every stage implements Part (environment lifecycle) plus a role interface:
//
//   - Producer: emits values of TypeOut()
//   - Consumer: accepts values of TypeIn(), accumulates a result
//   - Pipe: both, rewriting an upstream iterator into a downstream one
//
// Composing follows a fixed rule table:
//
//	Pipe     >> Pipe     = Pipe      (fused)
//	Producer >> Pipe     = Producer  (pipe appended)
//	Pipe     >> Consumer = Consumer  (pipe prepended)
//	Producer >> Consumer = *Process  (runnable)
//
// Any other pairing is a composition error naming both operands.
//
// # Environments
//
// Definitions are immutable; all per-run state lives in an environment
// created by CreateEnv at the start of a run and released by ReleaseEnv at
// the end, exactly once, even on failure or early stop. The same definition
// is therefore safely runnable many times, including concurrently.
//
// # Usage
//
//	src := parts.FromSlice([]int{1, 2, 3})
//	sink := parts.Collect[int]()
//	p, err := stream.Compose(src, sink)
//	if err != nil { ... }
//	result, err := p.(*stream.Process).Run(ctx)  // []int{1, 2, 3}
package stream
