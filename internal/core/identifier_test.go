package core

import (
	"errors"
	"testing"
)

func TestGenerateIDFoldsOutOfRangeDraws(t *testing.T) {
	cases := []struct {
		draw int64
		want string
	}{
		{100000000000, "100000000000"},
		{999999999999, "999999999999"},
		{0, "100000000000"},
		{-1, "999999999999"},
		{1000000000000, "200000000000"},
	}
	for _, tc := range cases {
		got, err := GenerateID(nil, func() int64 { return tc.draw }, 1)
		if err != nil {
			t.Fatalf("draw %d: %v", tc.draw, err)
		}
		if got != tc.want {
			t.Fatalf("draw %d: want %s got %s", tc.draw, tc.want, got)
		}
	}
}

func TestGenerateIDAgainstPopulatedKeys(t *testing.T) {
	existing := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id, err := GenerateID(func(id string) bool { return existing[id] }, nil, 0)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(id) != 12 {
			t.Fatalf("bad length %q", id)
		}
		for _, c := range id {
			if c < '0' || c > '9' {
				t.Fatalf("non digit in %q", id)
			}
		}
		if existing[id] {
			t.Fatalf("returned existing id %s", id)
		}
		existing[id] = true
	}
}

func TestGenerateIDCap(t *testing.T) {
	calls := 0
	_, err := GenerateID(func(string) bool { return true }, func() int64 {
		calls++
		return 555555555555
	}, 7)
	if !errors.Is(err, ErrIDSpaceExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
	if calls != 7 {
		t.Fatalf("expected 7 draws, got %d", calls)
	}
}
