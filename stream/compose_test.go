package stream

import (
	"context"
	stderrors "errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/streamkit/streamkit/errors"
)

// --- test helpers ---

var errBoom = stderrors.New("boom")

// testSource is a slice-backed producer counting pulls and env lifecycle.
type testSource struct {
	typ        Type
	items      []any
	failAfter  int // return errBoom once this many values were yielded (0 = never)
	createErr  error
	releaseErr error

	pulls    int32
	creates  int32
	releases int32
}

func newIntSource(items ...int) *testSource {
	vals := make([]any, len(items))
	for i, v := range items {
		vals[i] = v
	}
	return &testSource{typ: TypeOf[int](), items: vals}
}

func (s *testSource) TypeOut() Type { return s.typ }

func (s *testSource) CreateEnv(_ context.Context) (Env, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	atomic.AddInt32(&s.creates, 1)
	return nil, nil
}

func (s *testSource) ReleaseEnv(_ context.Context, _ Env) error {
	atomic.AddInt32(&s.releases, 1)
	return s.releaseErr
}

func (s *testSource) Produce(_ context.Context, _ Env) Iterator {
	i := 0
	return IteratorFunc(func(_ context.Context) (any, bool, error) {
		atomic.AddInt32(&s.pulls, 1)
		if s.failAfter > 0 && i >= s.failAfter {
			return nil, false, errBoom
		}
		if i >= len(s.items) {
			return nil, false, nil
		}
		v := s.items[i]
		i++
		return v, true, nil
	})
}

// testSink accumulates into []any, optionally stopping after limit values.
type testSink struct {
	typ        Type
	limit      int // -1 = unlimited
	consumeErr error
	createErr  error
	releaseErr error

	creates  int32
	releases int32
}

func newIntSink() *testSink { return &testSink{typ: TypeOf[int](), limit: -1} }

func newIntSinkLimit(n int) *testSink { return &testSink{typ: TypeOf[int](), limit: n} }

func (s *testSink) TypeIn() Type { return s.typ }

func (s *testSink) CreateEnv(_ context.Context) (Env, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	atomic.AddInt32(&s.creates, 1)
	return nil, nil
}

func (s *testSink) ReleaseEnv(_ context.Context, _ Env) error {
	atomic.AddInt32(&s.releases, 1)
	return s.releaseErr
}

func (s *testSink) Consume(ctx context.Context, _ Env, src Iterator) (any, error) {
	out := []any{}
	n := 0
	for s.limit < 0 || n < s.limit {
		v, ok, err := src.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, v)
		n++
		if s.consumeErr != nil {
			return out, s.consumeErr
		}
	}
	return out, nil
}

// testPipe transforms values 1:1, or drops them when fn reports keep=false.
type testPipe struct {
	in, out    Type
	fn         func(v any) (any, bool)
	createErr  error
	releaseErr error

	creates  int32
	releases int32
}

func newIntPipe(fn func(int) int) *testPipe {
	return &testPipe{
		in:  TypeOf[int](),
		out: TypeOf[int](),
		fn: func(v any) (any, bool) {
			return fn(v.(int)), true
		},
	}
}

func (p *testPipe) TypeIn() Type  { return p.in }
func (p *testPipe) TypeOut() Type { return p.out }

func (p *testPipe) CreateEnv(_ context.Context) (Env, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	atomic.AddInt32(&p.creates, 1)
	return nil, nil
}

func (p *testPipe) ReleaseEnv(_ context.Context, _ Env) error {
	atomic.AddInt32(&p.releases, 1)
	return p.releaseErr
}

func (p *testPipe) Transform(_ context.Context, _ Env, src Iterator) Iterator {
	return IteratorFunc(func(ctx context.Context) (any, bool, error) {
		for {
			v, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			if p.fn == nil {
				return v, true, nil
			}
			out, keep := p.fn(v)
			if !keep {
				continue
			}
			return out, true, nil
		}
	})
}

// barePart satisfies only the base Part contract, no role interface.
type barePart struct{}

func (barePart) CreateEnv(_ context.Context) (Env, error) { return nil, nil }
func (barePart) ReleaseEnv(_ context.Context, _ Env) error { return nil }

func mustCompose(t *testing.T, left, right Part) Part {
	t.Helper()
	p, err := Compose(left, right)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	return p
}

func anySliceEqual(got any, want []any) bool {
	gs, ok := got.([]any)
	if !ok || len(gs) != len(want) {
		return false
	}
	for i := range gs {
		if gs[i] != want[i] {
			return false
		}
	}
	return true
}

// --- composition rule table ---

func TestCompose_RuleTable(t *testing.T) {
	src := newIntSource(1, 2, 3)
	pipe := newIntPipe(func(n int) int { return n })
	sink := newIntSink()
	proc := mustCompose(t, newIntSource(1), newIntSink())

	tests := []struct {
		name  string
		left  Part
		right Part
		want  string // pipe | producer | consumer | process | error
	}{
		{"pipe>>pipe", pipe, pipe, "pipe"},
		{"producer>>pipe", src, pipe, "producer"},
		{"pipe>>consumer", pipe, sink, "consumer"},
		{"producer>>consumer", src, sink, "process"},
		{"producer>>producer", src, src, "error"},
		{"pipe>>producer", pipe, src, "error"},
		{"consumer>>producer", sink, src, "error"},
		{"consumer>>pipe", sink, pipe, "error"},
		{"consumer>>consumer", sink, sink, "error"},
		{"process>>pipe", proc, pipe, "error"},
		{"process>>consumer", proc, sink, "error"},
		{"producer>>process", src, proc, "error"},
		{"pipe>>process", pipe, proc, "error"},
		{"roleless left", barePart{}, pipe, "error"},
		{"roleless right", src, barePart{}, "error"},
		{"nil left", nil, pipe, "error"},
		{"nil right", src, nil, "error"},
		{"nil both", nil, nil, "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compose(tc.left, tc.right)
			if tc.want == "error" {
				if err == nil {
					t.Fatalf("expected composition error, got %T", got)
				}
				if !errors.IsCode(err, errors.ErrCodeInvalidComposition) {
					t.Errorf("expected INVALID_COMPOSITION, got %v", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch tc.want {
			case "pipe":
				if _, ok := got.(Pipe); !ok {
					t.Errorf("expected Pipe, got %T", got)
				}
			case "producer":
				if _, ok := got.(Pipe); ok {
					t.Errorf("appended producer must not classify as Pipe")
				}
				if _, ok := got.(Producer); !ok {
					t.Errorf("expected Producer, got %T", got)
				}
			case "consumer":
				if _, ok := got.(Pipe); ok {
					t.Errorf("prepended consumer must not classify as Pipe")
				}
				if _, ok := got.(Consumer); !ok {
					t.Errorf("expected Consumer, got %T", got)
				}
			case "process":
				if _, ok := got.(*Process); !ok {
					t.Errorf("expected *Process, got %T", got)
				}
			}
		})
	}
}

func TestCompose_TypeMismatch(t *testing.T) {
	intSrc := newIntSource(1)
	strPipe := &testPipe{in: TypeOf[string](), out: TypeOf[string]()}
	strSink := &testSink{typ: TypeOf[string](), limit: -1}

	tests := []struct {
		name  string
		left  Part
		right Part
	}{
		{"producer>>pipe", intSrc, strPipe},
		{"producer>>consumer", intSrc, strSink},
		{"pipe>>pipe", newIntPipe(func(n int) int { return n }), strPipe},
		{"pipe>>consumer", newIntPipe(func(n int) int { return n }), strSink},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compose(tc.left, tc.right)
			if err == nil {
				t.Fatal("expected type mismatch error")
			}
			if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
				t.Errorf("expected TYPE_MISMATCH, got %v", errors.GetCode(err))
			}
			msg := err.Error()
			if !strings.Contains(msg, "int") || !strings.Contains(msg, "string") {
				t.Errorf("expected message to name both types, got %q", msg)
			}
		})
	}
}

func TestCompose_ErrorNamesBothOperands(t *testing.T) {
	src := newIntSource(1)
	sink := newIntSink()

	_, err := Compose(sink, src)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "(int -> ())") {
		t.Errorf("expected consumer description in %q", msg)
	}
	if !strings.Contains(msg, "(() -> int)") {
		t.Errorf("expected producer description in %q", msg)
	}
}

func TestCompose_MismatchNamesBothDescriptions(t *testing.T) {
	intSrc := newIntSource(1)
	strSink := &testSink{typ: TypeOf[string](), limit: -1}

	_, err := Compose(intSrc, strSink)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "(() -> int)") || !strings.Contains(msg, "(string -> ())") {
		t.Errorf("expected both operand descriptions in %q", msg)
	}
}

// --- composed-part type delegation ---

func TestCompose_FusedPipeTypes(t *testing.T) {
	left := &testPipe{in: TypeOf[int](), out: TypeOf[string]()}
	right := &testPipe{in: TypeOf[string](), out: TypeOf[bool]()}

	got := mustCompose(t, left, right)
	fused, ok := got.(Pipe)
	if !ok {
		t.Fatalf("expected Pipe, got %T", got)
	}
	if fused.TypeIn() != TypeOf[int]() {
		t.Errorf("TypeIn: got %v, want int", fused.TypeIn())
	}
	if fused.TypeOut() != TypeOf[bool]() {
		t.Errorf("TypeOut: got %v, want bool", fused.TypeOut())
	}
}

func TestCompose_AppendedProducerType(t *testing.T) {
	src := newIntSource(1)
	toStr := &testPipe{in: TypeOf[int](), out: TypeOf[string]()}

	got := mustCompose(t, src, toStr)
	prod, ok := got.(Producer)
	if !ok {
		t.Fatalf("expected Producer, got %T", got)
	}
	if prod.TypeOut() != TypeOf[string]() {
		t.Errorf("TypeOut: got %v, want string", prod.TypeOut())
	}
}

func TestCompose_PrependedConsumerType(t *testing.T) {
	toStr := &testPipe{in: TypeOf[int](), out: TypeOf[string]()}
	sink := &testSink{typ: TypeOf[string](), limit: -1}

	got := mustCompose(t, toStr, sink)
	cons, ok := got.(Consumer)
	if !ok {
		t.Fatalf("expected Consumer, got %T", got)
	}
	if cons.TypeIn() != TypeOf[int]() {
		t.Errorf("TypeIn: got %v, want int", cons.TypeIn())
	}
}

// --- type tags ---

func TestTypeOf_Equality(t *testing.T) {
	if TypeOf[int]() != TypeOf[int]() {
		t.Error("two TypeOf[int] tags must compare equal")
	}
	if TypeOf[int]() == TypeOf[string]() {
		t.Error("distinct element types must not compare equal")
	}
	if TypeOf[[]string]() != TypeOf[[]string]() {
		t.Error("composite element types must compare equal")
	}
}

func TestCompose_StringTags(t *testing.T) {
	src := &testSource{typ: "line", items: []any{"a"}}
	sink := &testSink{typ: "line", limit: -1}

	if _, err := Compose(src, sink); err != nil {
		t.Fatalf("equal string tags should compose: %v", err)
	}

	other := &testSink{typ: "record", limit: -1}
	if _, err := Compose(src, other); err == nil {
		t.Fatal("unequal string tags must not compose")
	}
}

func TestCompose_AnyTypeMatchesEverything(t *testing.T) {
	src := newIntSource(1, 2)
	drain := &testSink{typ: AnyType, limit: -1}

	got := mustCompose(t, src, drain)
	if _, ok := got.(*Process); !ok {
		t.Fatalf("expected *Process, got %T", got)
	}
}

// --- Describe ---

func TestDescribe(t *testing.T) {
	proc := mustCompose(t, newIntSource(1), newIntSink())

	tests := []struct {
		name string
		part Part
		want string
	}{
		{"producer", newIntSource(1), "(() -> int)"},
		{"consumer", newIntSink(), "(int -> ())"},
		{"pipe", &testPipe{in: TypeOf[int](), out: TypeOf[string]()}, "(int -> string)"},
		{"process", proc, "(() -> ())"},
		{"roleless", barePart{}, "(unknown)"},
		{"nil", nil, "(unknown)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Describe(tc.part); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

// --- Chain / ComposeReverse ---

func TestChain(t *testing.T) {
	src := newIntSource(1, 2, 3)
	double := newIntPipe(func(n int) int { return n * 2 })
	sink := newIntSink()

	part, err := Chain(src, double, sink)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	proc, ok := part.(*Process)
	if !ok {
		t.Fatalf("expected *Process, got %T", part)
	}

	got, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !anySliceEqual(got, []any{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestChain_SinglePart(t *testing.T) {
	src := newIntSource(1)
	part, err := Chain(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if part != Part(src) {
		t.Error("single-part chain should return the part unchanged")
	}
}

func TestChain_Empty(t *testing.T) {
	_, err := Chain()
	if err == nil {
		t.Fatal("expected error for empty chain")
	}
}

func TestChain_StopsAtFirstError(t *testing.T) {
	src := newIntSource(1)
	strPipe := &testPipe{in: TypeOf[string](), out: TypeOf[string]()}
	sink := newIntSink()

	_, err := Chain(src, strPipe, sink)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", errors.GetCode(err))
	}
}

func TestComposeReverse(t *testing.T) {
	src := newIntSource(1, 2)
	double := newIntPipe(func(n int) int { return n * 2 })

	// ComposeReverse(b, a) == Compose(a, b)
	got, err := ComposeReverse(double, src)
	if err != nil {
		t.Fatalf("ComposeReverse failed: %v", err)
	}
	if _, ok := got.(Producer); !ok {
		t.Fatalf("expected Producer, got %T", got)
	}

	// Mirrored arguments introduce no new rules.
	if _, err := ComposeReverse(src, double); err == nil {
		t.Fatal("expected error for pipe>>producer via mirror")
	}
}
