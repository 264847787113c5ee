package memo

import (
	"errors"
	"testing"
)

type key struct {
	n    int
	name string
}

func TestDoMemoizesSuccess(t *testing.T) {
	var c Cache[key]
	runs := 0
	compute := func() error { runs++; return nil }

	for range 3 {
		if _, err := c.Do(key{1, "a"}, compute); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if ran, _ := c.Do(key{2, "a"}, compute); !ran || runs != 2 {
		t.Fatalf("changed signature: ran=%v runs=%d", ran, runs)
	}
}

func TestDoRetriesFailure(t *testing.T) {
	var c Cache[key]
	boom := errors.New("boom")
	runs := 0
	fail := func() error { runs++; return boom }

	if _, err := c.Do(key{1, "a"}, fail); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := c.Do(key{1, "a"}, fail); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
	if _, err, ok := c.Last(); !ok || !errors.Is(err, boom) {
		t.Fatalf("Last = %v, %v", err, ok)
	}
}

func TestForceAndInvalidate(t *testing.T) {
	var c Cache[int]
	runs := 0
	compute := func() error { runs++; return nil }

	c.Do(7, compute)
	c.Force()
	if ran, _ := c.Do(7, compute); !ran {
		t.Fatal("forced Do did not run")
	}
	if ran, _ := c.Do(7, compute); ran {
		t.Fatal("Force must only apply once")
	}
	c.Invalidate()
	if _, _, ok := c.Last(); ok {
		t.Fatal("Last reports a computation after Invalidate")
	}
	if ran, _ := c.Do(7, compute); !ran {
		t.Fatal("Do after Invalidate did not run")
	}
	if runs != 3 {
		t.Fatalf("runs = %d, want 3", runs)
	}
}
