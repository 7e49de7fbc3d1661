package pipeline

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tidelang/tide/pkg/signals"
	"github.com/tidelang/tide/pkg/span"
)

func TestCollectValuePassthrough(t *testing.T) {
	d := FromValue(int64(7))
	got, err := d.Collect(span.Unknown())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got.Value() != int64(7) {
		t.Errorf("Value = %v, want 7", got.Value())
	}
}

func TestCollectStream(t *testing.T) {
	ls := StreamFromSlice([]any{int64(1), int64(2), int64(3)}, signals.Empty(), span.Unknown())
	got, err := FromStream(ls).Collect(span.Unknown())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []any{int64(1), int64(2), int64(3)}
	if diff := cmp.Diff(want, got.Value()); diff != "" {
		t.Errorf("collected values mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectInterrupted(t *testing.T) {
	var flag atomic.Bool
	sig := signals.New(&flag)

	pulls := 0
	ls := NewListStream(func() (any, bool) {
		pulls++
		if pulls == 2 {
			sig.Trigger()
		}
		return int64(pulls), true
	}, sig, span.New(5, 10))

	_, err := FromStream(ls).Collect(span.Unknown())
	var ie *signals.InterruptedError
	if !errors.As(err, &ie) {
		t.Fatalf("Collect = %v, want *InterruptedError", err)
	}
	if ie.Span != span.New(5, 10) {
		t.Errorf("error span = %v, want the stream's span 5..10", ie.Span)
	}
	if pulls != 2 {
		t.Errorf("pulls = %d, want 2 (interrupt lands before the next pull)", pulls)
	}
}

func TestDrain(t *testing.T) {
	ls := StreamFromSlice([]any{int64(1), int64(2)}, signals.Empty(), span.Unknown())
	if err := FromStream(ls).Drain(span.Unknown()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if _, ok := ls.Next(); ok {
		t.Error("stream not exhausted after Drain")
	}
}

func TestMetadataSurvivesCollect(t *testing.T) {
	md := &Metadata{ContentType: "text/csv", Source: "x.csv"}
	ls := StreamFromSlice([]any{"a"}, signals.Empty(), span.Unknown())
	d := FromStream(ls).WithMetadata(md)

	got, err := d.Collect(span.Unknown())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got.Metadata() != md {
		t.Error("metadata lost through Collect")
	}
}

func TestCloneStreamFails(t *testing.T) {
	ls := StreamFromSlice(nil, signals.Empty(), span.Unknown())
	_, err := FromStream(ls).Clone()
	if !errors.Is(err, ErrCloneStream) {
		t.Errorf("Clone = %v, want ErrCloneStream", err)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "empty"},
		{"bool", true, "true"},
		{"int", int64(-3), "-3"},
		{"float", float64(2.5), "2.5"},
		{"string", "hi", "hi"},
		{"list", []any{int64(1), "a"}, "[1, a]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDataString(t *testing.T) {
	if got := Empty().String(); got != "empty" {
		t.Errorf("Empty String = %q", got)
	}
	ls := StreamFromSlice(nil, signals.Empty(), span.Unknown())
	if got := FromStream(ls).String(); got != "<stream>" {
		t.Errorf("stream String = %q", got)
	}
}
