package stream

import (
	"github.com/streamkit/streamkit/errors"
)

// Compose combines two parts into one, following a fixed rule table:
//
//	Pipe     >> Pipe     = Pipe      (fused)
//	Producer >> Pipe     = Producer  (pipe appended)
//	Pipe     >> Consumer = Consumer  (pipe prepended)
//	Producer >> Consumer = *Process  (runnable)
//
// Any other pairing (composing onto a producer, out of a consumer, with a
// finished process, or with a part satisfying no role interface) returns an
// INVALID_COMPOSITION error naming both operands. When the pairing is valid,
// the boundary types must line up: left.TypeOut() must equal right.TypeIn(),
// else a TYPE_MISMATCH error is returned. Both checks happen here, at
// composition time, never at run time.
//
// Roles are classified structurally, Pipe first: a part satisfying both the
// producing and consuming capabilities composes as a pipe.
func Compose(left, right Part) (Part, error) {
	switch l := left.(type) {
	case *Process:
		// finished processes take no further parts
	case Pipe:
		switch r := right.(type) {
		case *Process:
		case Pipe:
			return fusePipes(l, r)
		case Consumer:
			return prependConsumer(l, r)
		}
	case Producer:
		switch r := right.(type) {
		case *Process:
		case Pipe:
			return appendProducer(l, r)
		case Consumer:
			return newProcess(l, r)
		}
	}
	return nil, errors.InvalidComposition(Describe(left), Describe(right))
}

// ComposeReverse is the mirrored entry point: ComposeReverse(b, a) is exactly
// Compose(a, b). It introduces no rules of its own.
func ComposeReverse(right, left Part) (Part, error) {
	return Compose(left, right)
}

// Chain folds parts left to right with Compose, so Chain(a, b, c) is
// Compose(Compose(a, b), c). At least one part is required; a single part is
// returned unchanged.
func Chain(parts ...Part) (Part, error) {
	if len(parts) == 0 {
		return nil, errors.InvalidInput("parts", "at least one part is required")
	}
	acc := parts[0]
	for _, p := range parts[1:] {
		next, err := Compose(acc, p)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// checkBoundary verifies the newly introduced boundary between an emitting
// left part and an accepting right part. Inner boundaries of already-composed
// children are never re-checked.
func checkBoundary(left Part, out Type, right Part, in Type) error {
	if typesMatch(out, in) {
		return nil
	}
	return errors.TypeMismatch(Describe(left), Describe(right), out, in)
}

// typesMatch reports boundary compatibility: structural equality of the two
// tags, with AnyType matching everything.
func typesMatch(out, in Type) bool {
	if out == AnyType || in == AnyType {
		return true
	}
	return out == in
}
