package retry

import (
	"errors"
	"math"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestDelayDoublesUpToMax(t *testing.T) {
	p := Policy{MaxAttempts: 5, Base: time.Second, Max: 3 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("attempt %d: expected %v, got %v", i+1, w, got)
		}
	}
	if got := (Policy{}).Delay(0); got != 100*time.Millisecond {
		t.Fatalf("expected default base, got %v", got)
	}
}

func TestDelayWithoutMaxKeepsGrowing(t *testing.T) {
	p := Policy{Base: time.Second}
	prev := time.Duration(0)
	for attempt := 1; attempt <= 100; attempt++ {
		got := p.Delay(attempt)
		if got < prev {
			t.Fatalf("attempt %d: delay shrank from %v to %v", attempt, prev, got)
		}
		prev = got
	}
	if prev != time.Duration(math.MaxInt64) {
		t.Fatalf("expected saturated delay, got %v", prev)
	}
	if got := p.Delay(40); got <= 0 {
		t.Fatalf("expected positive delay, got %v", got)
	}
}

func TestNext(t *testing.T) {
	p := DefaultPolicy()
	storage := goerrors.Wrap(errors.New("disk"), goerrors.CategoryInternal, "store")

	if d, ok := p.Next(1, storage); !ok || d != time.Second {
		t.Fatalf("expected retry after 1s, got %v %v", d, ok)
	}
	if _, ok := p.Next(3, storage); ok {
		t.Fatalf("expected attempts to be exhausted")
	}
	if _, ok := p.Next(1, nil); ok {
		t.Fatalf("expected no retry without error")
	}
	if _, ok := (Policy{}).Next(1, storage); ok {
		t.Fatalf("zero policy must not retry")
	}
}

func TestRetryable(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"plain":      {err: errors.New("boom"), want: true},
		"internal":   {err: goerrors.New("db down", goerrors.CategoryInternal), want: true},
		"external":   {err: goerrors.New("upstream", goerrors.CategoryExternal), want: true},
		"validation": {err: goerrors.New("bad", goerrors.CategoryValidation), want: false},
		"not found":  {err: goerrors.New("gone", goerrors.CategoryNotFound), want: false},
		"bad input":  {err: goerrors.New("resolve", goerrors.CategoryBadInput), want: false},
	}
	for name, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}
