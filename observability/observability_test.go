package observability

import (
	"errors"
	"testing"
)

func TestFieldConstructors(t *testing.T) {
	err := errors.New("boom")
	cases := []struct {
		field Field
		key   string
		value interface{}
	}{
		{String("op", "merge"), "op", "merge"},
		{Int("pages", 5), "pages", 5},
		{Int64("bytes", 1 << 20), "bytes", int64(1 << 20)},
		{Float64("reduction", 12.5), "reduction", 12.5},
		{Error("error", err), "error", err},
	}
	for _, c := range cases {
		if c.field.Key() != c.key {
			t.Errorf("key %q, want %q", c.field.Key(), c.key)
		}
		if c.field.Value() != c.value {
			t.Errorf("value %v, want %v", c.field.Value(), c.value)
		}
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("k", "v"))
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e", Error("error", errors.New("x")))
}
