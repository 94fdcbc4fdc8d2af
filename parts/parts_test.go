package parts

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/resilience"
	"github.com/streamkit/streamkit/stream"
)

// --- test helpers ---

var errBoom = stderrors.New("boom")

func runPipeline(t *testing.T, pieces ...stream.Part) any {
	t.Helper()
	part, err := stream.Chain(pieces...)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	proc, ok := part.(*stream.Process)
	if !ok {
		t.Fatalf("expected a runnable process, got %T", part)
	}
	result, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

func runPipelineErr(t *testing.T, pieces ...stream.Part) error {
	t.Helper()
	part, err := stream.Chain(pieces...)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	_, err = part.(*stream.Process).Run(context.Background())
	if err == nil {
		t.Fatal("expected run error")
	}
	return err
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countingSource yields ints and counts how often it is pulled.
type countingSource struct {
	stateless
	items []int
	pulls int32
}

func (s *countingSource) TypeOut() stream.Type { return stream.TypeOf[int]() }

func (s *countingSource) Produce(_ context.Context, _ stream.Env) stream.Iterator {
	i := 0
	return stream.IteratorFunc(func(_ context.Context) (any, bool, error) {
		atomic.AddInt32(&s.pulls, 1)
		if i >= len(s.items) {
			return nil, false, nil
		}
		v := s.items[i]
		i++
		return v, true, nil
	})
}

// mistypedSource advertises string output but yields ints.
type mistypedSource struct {
	stateless
}

func (s *mistypedSource) TypeOut() stream.Type { return stream.TypeOf[string]() }

func (s *mistypedSource) Produce(_ context.Context, _ stream.Env) stream.Iterator {
	done := false
	return stream.IteratorFunc(func(_ context.Context) (any, bool, error) {
		if done {
			return nil, false, nil
		}
		done = true
		return 42, true, nil
	})
}

// --- producer tests ---

func TestFromSlice_Collect(t *testing.T) {
	got := runPipeline(t, FromSlice([]int{1, 2, 3}), Collect[int]())
	if !intSliceEqual(got.([]int), []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	got := runPipeline(t, FromSlice([]int{}), Collect[int]())
	vals := got.([]int)
	if vals == nil {
		t.Error("empty stream should collect into an empty slice, not nil")
	}
	if len(vals) != 0 {
		t.Errorf("got %v, want empty", vals)
	}
}

func TestFromSlice_Rerun(t *testing.T) {
	part, err := stream.Compose(FromSlice([]string{"a", "b"}), Collect[string]())
	if err != nil {
		t.Fatal(err)
	}
	proc := part.(*stream.Process)
	for i := 0; i < 2; i++ {
		got, err := proc.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		if !strSliceEqual(got.([]string), []string{"a", "b"}) {
			t.Errorf("run %d: got %v, want [a b]", i, got)
		}
	}
}

func TestGenerate(t *testing.T) {
	n := 0
	src := Generate(func(_ context.Context) (int, bool, error) {
		n++
		if n > 3 {
			return 0, false, nil
		}
		return n * 10, true, nil
	})
	got := runPipeline(t, src, Collect[int]())
	if !intSliceEqual(got.([]int), []int{10, 20, 30}) {
		t.Errorf("got %v, want [10 20 30]", got)
	}
}

func TestGenerate_Error(t *testing.T) {
	src := Generate(func(_ context.Context) (int, bool, error) {
		return 0, false, errBoom
	})
	err := runPipelineErr(t, src, Collect[int]())
	if !stderrors.Is(err, errBoom) {
		t.Errorf("expected generator error, got %v", err)
	}
}

func TestFromChan(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "x"
	ch <- "y"
	ch <- "z"
	close(ch)

	got := runPipeline(t, FromChan(ch), Collect[string]())
	if !strSliceEqual(got.([]string), []string{"x", "y", "z"}) {
		t.Errorf("got %v, want [x y z]", got)
	}
}

func TestFromChan_ContextCanceled(t *testing.T) {
	ch := make(chan int)
	part, err := stream.Compose(FromChan(ch), Collect[int]())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = part.(*stream.Process).Run(ctx)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// --- pipe tests ---

func TestMap(t *testing.T) {
	got := runPipeline(t,
		FromSlice([]int{1, 2, 3}),
		Map(func(_ context.Context, n int) (string, error) {
			return strconv.Itoa(n * 2), nil
		}),
		Collect[string](),
	)
	if !strSliceEqual(got.([]string), []string{"2", "4", "6"}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestMap_Error(t *testing.T) {
	err := runPipelineErr(t,
		FromSlice([]int{1, 2, 3}),
		Map(func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, errBoom
			}
			return n, nil
		}),
		Collect[int](),
	)
	if !stderrors.Is(err, errBoom) {
		t.Errorf("expected mapping error, got %v", err)
	}
}

func TestMap_Retry(t *testing.T) {
	var attempts int32
	cfg := resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
	got := runPipeline(t,
		FromSlice([]int{7}),
		Map(func(_ context.Context, n int) (int, error) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return 0, errBoom
			}
			return n, nil
		}, WithRetry(cfg)),
		Collect[int](),
	)
	if !intSliceEqual(got.([]int), []int{7}) {
		t.Errorf("got %v, want [7]", got)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestMap_RetryExhausted(t *testing.T) {
	cfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
	err := runPipelineErr(t,
		FromSlice([]int{1}),
		Map(func(_ context.Context, _ int) (int, error) {
			return 0, errBoom
		}, WithRetry(cfg)),
		Collect[int](),
	)
	if !stderrors.Is(err, errBoom) {
		t.Errorf("expected exhausted retry error, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	got := runPipeline(t,
		FromSlice([]int{1, 2, 3, 4, 5, 6}),
		Filter(func(_ context.Context, n int) (bool, error) {
			return n%2 == 0, nil
		}),
		Collect[int](),
	)
	if !intSliceEqual(got.([]int), []int{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestFilter_DropsEverything(t *testing.T) {
	got := runPipeline(t,
		FromSlice([]int{1, 3, 5}),
		Filter(func(_ context.Context, n int) (bool, error) {
			return n%2 == 0, nil
		}),
		Collect[int](),
	)
	if len(got.([]int)) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestFilter_Error(t *testing.T) {
	err := runPipelineErr(t,
		FromSlice([]int{1, 2}),
		Filter(func(_ context.Context, _ int) (bool, error) {
			return false, errBoom
		}),
		Collect[int](),
	)
	if !stderrors.Is(err, errBoom) {
		t.Errorf("expected predicate error, got %v", err)
	}
}

func TestFlatMap(t *testing.T) {
	got := runPipeline(t,
		FromSlice([]string{"a b", "", "c d e"}),
		FlatMap(func(_ context.Context, line string) ([]string, error) {
			return strings.Fields(line), nil
		}),
		Collect[string](),
	)
	if !strSliceEqual(got.([]string), []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("got %v, want [a b c d e]", got)
	}
}

func TestBatch(t *testing.T) {
	got := runPipeline(t,
		FromSlice([]int{1, 2, 3, 4, 5}),
		Batch[int](2),
		Collect[[]int](),
	)
	batches := got.([][]int)
	want := [][]int{{1, 2}, {3, 4}, {5}}
	if len(batches) != len(want) {
		t.Fatalf("got %d batches, want %d: %v", len(batches), len(want), batches)
	}
	for i := range want {
		if !intSliceEqual(batches[i], want[i]) {
			t.Errorf("batch %d: got %v, want %v", i, batches[i], want[i])
		}
	}
}

func TestBatch_ExactMultiple(t *testing.T) {
	got := runPipeline(t,
		FromSlice([]int{1, 2, 3, 4}),
		Batch[int](2),
		Collect[[]int](),
	)
	if n := len(got.([][]int)); n != 2 {
		t.Errorf("got %d batches, want 2", n)
	}
}

func TestTake(t *testing.T) {
	src := &countingSource{items: []int{1, 2, 3, 4, 5}}
	got := runPipeline(t, src, Take[int](2), Collect[int]())
	if !intSliceEqual(got.([]int), []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if pulls := atomic.LoadInt32(&src.pulls); pulls != 2 {
		t.Errorf("Take(2) must pull upstream exactly twice, pulled %d times", pulls)
	}
}

func TestTake_Zero(t *testing.T) {
	src := &countingSource{items: []int{1, 2, 3}}
	got := runPipeline(t, src, Take[int](0), Collect[int]())
	if len(got.([]int)) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if pulls := atomic.LoadInt32(&src.pulls); pulls != 0 {
		t.Errorf("Take(0) must not pull upstream, pulled %d times", pulls)
	}
}

func TestTake_MoreThanAvailable(t *testing.T) {
	got := runPipeline(t, FromSlice([]int{1, 2}), Take[int](10), Collect[int]())
	if !intSliceEqual(got.([]int), []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestTap(t *testing.T) {
	var seen []int
	got := runPipeline(t,
		FromSlice([]int{1, 2, 3}),
		Tap(func(_ context.Context, n int) {
			seen = append(seen, n)
		}),
		Collect[int](),
	)
	if !intSliceEqual(got.([]int), []int{1, 2, 3}) {
		t.Errorf("tap must not alter the stream: got %v", got)
	}
	if !intSliceEqual(seen, []int{1, 2, 3}) {
		t.Errorf("tap saw %v, want [1 2 3]", seen)
	}
}

// --- consumer tests ---

func TestCollect_Limit(t *testing.T) {
	src := &countingSource{items: []int{1, 2, 3, 4, 5}}
	got := runPipeline(t, src, Collect[int](Limit(2)))
	if !intSliceEqual(got.([]int), []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if pulls := atomic.LoadInt32(&src.pulls); pulls != 2 {
		t.Errorf("Limit(2) must pull exactly twice, pulled %d times", pulls)
	}
}

func TestCollect_LimitZero(t *testing.T) {
	src := &countingSource{items: []int{1, 2, 3}}
	got := runPipeline(t, src, Collect[int](Limit(0)))
	if len(got.([]int)) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if pulls := atomic.LoadInt32(&src.pulls); pulls != 0 {
		t.Errorf("Limit(0) must not pull, pulled %d times", pulls)
	}
}

func TestForEach(t *testing.T) {
	sum := 0
	got := runPipeline(t,
		FromSlice([]int{1, 2, 3}),
		ForEach(func(_ context.Context, n int) error {
			sum += n
			return nil
		}),
	)
	if got.(int) != 3 {
		t.Errorf("got count %v, want 3", got)
	}
	if sum != 6 {
		t.Errorf("got sum %d, want 6", sum)
	}
}

func TestForEach_Error(t *testing.T) {
	err := runPipelineErr(t,
		FromSlice([]int{1, 2, 3}),
		ForEach(func(_ context.Context, n int) error {
			if n == 2 {
				return errBoom
			}
			return nil
		}),
	)
	if !stderrors.Is(err, errBoom) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestDiscard(t *testing.T) {
	got := runPipeline(t, FromSlice([]string{"a", "b", "c"}), Discard())
	if got.(int) != 3 {
		t.Errorf("got count %v, want 3", got)
	}
}

func TestDiscard_AcceptsAnyType(t *testing.T) {
	if _, err := stream.Compose(FromSlice([]int{1}), Discard()); err != nil {
		t.Errorf("discard must accept int streams: %v", err)
	}
	if _, err := stream.Compose(FromSlice([]string{"s"}), Discard()); err != nil {
		t.Errorf("discard must accept string streams: %v", err)
	}
}

// --- type tag tests ---

func TestPartTypeTags(t *testing.T) {
	m := Map(func(_ context.Context, n int) (string, error) { return "", nil })
	if m.TypeIn() != stream.TypeOf[int]() {
		t.Errorf("Map TypeIn: got %v, want int", m.TypeIn())
	}
	if m.TypeOut() != stream.TypeOf[string]() {
		t.Errorf("Map TypeOut: got %v, want string", m.TypeOut())
	}

	b := Batch[int](2)
	if b.TypeOut() != stream.TypeOf[[]int]() {
		t.Errorf("Batch TypeOut: got %v, want []int", b.TypeOut())
	}
}

func TestComposeRejectsMismatchedParts(t *testing.T) {
	_, err := stream.Compose(
		FromSlice([]int{1}),
		Map(func(_ context.Context, s string) (string, error) { return s, nil }),
	)
	if err == nil {
		t.Fatal("expected build-time type mismatch")
	}
	if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", errors.GetCode(err))
	}
}

func TestMistypedValueSurfaces(t *testing.T) {
	err := runPipelineErr(t, &mistypedSource{}, Collect[string]())
	if !errors.IsCode(err, errors.ErrCodeValueType) {
		t.Fatalf("expected VALUE_TYPE_MISMATCH, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "string") || !strings.Contains(msg, "int") {
		t.Errorf("expected message to name both types, got %q", msg)
	}
}
