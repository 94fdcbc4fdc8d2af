// Package parts provides the standard library of stream parts: producers
// that bring values into a pipeline, pipes that transform them, and
// consumers that terminate a pipeline and produce its result.
//
// All constructors return immutable parts. Parts are generic over their
// element types and advertise them with stream.TypeOf tags, so mismatched
// compositions fail at build time rather than mid-run. Values travel the
// pipeline as any and are re-checked on the way into each typed callback.
//
// # Usage
//
//	part, err := stream.Chain(
//		parts.FromSlice([]string{"alpha", "beta", "gamma"}),
//		parts.Filter(func(ctx context.Context, s string) (bool, error) {
//			return len(s) > 4, nil
//		}),
//		parts.Map(func(ctx context.Context, s string) (int, error) {
//			return len(s), nil
//		}),
//		parts.Collect[int](),
//	)
//	if err != nil {
//		return err
//	}
//	result, err := part.(*stream.Process).Run(ctx)
//
// Parts that hold external resources (ReadLines, WriteLines) open them in
// CreateEnv and close them in ReleaseEnv, so every run gets its own
// resources and concurrent runs of one definition never interfere.
package parts
