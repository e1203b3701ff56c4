// Package dynamo holds the primitives shared by every simulation package:
// the domain error taxonomy and a chunked parallel-for helper.
//
//   - [ErrInvalidConfiguration]: rejected construction (non-positive body
//     count, impossible arena, bad index capacity)
//   - [ErrInvalidState]: NaN/Inf detected after a step
//   - [ErrOutOfBounds]: a point outside a spatial index's root bounds
//   - [SimError]: a failure tagged with the step at which it was detected
//
// # Example
//
//	w, err := physics.New(0, physics.DefaultParams())
//	if errors.Is(err, dynamo.ErrInvalidConfiguration) {
//	    // n <= 0 never reaches the step loop
//	}
//
// # Thread Safety
//
// [ParallelFor] blocks until every chunk has returned. Chunks never overlap,
// so per-worker accumulators indexed by the worker id need no locking.
package dynamo
