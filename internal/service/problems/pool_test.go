package problems

import "testing"

func TestPickReturnsCatalogMember(t *testing.T) {
	pool := NewPool()
	for i := 0; i < 20; i++ {
		problem := pool.Pick()
		if _, ok := pool.Get(problem.ID); !ok {
			t.Fatalf("Pick returned problem %q not in catalog", problem.ID)
		}
	}
}

func TestGetUnknownProblem(t *testing.T) {
	pool := NewPool()
	if _, ok := pool.Get("no-such-problem"); ok {
		t.Fatal("expected lookup of unknown id to fail")
	}
}

func TestFactorialHasTests(t *testing.T) {
	pool := NewPool()
	problem, ok := pool.Get("factorial-5")
	if !ok {
		t.Fatal("factorial-5 missing from catalog")
	}
	if problem.Tests == nil {
		t.Fatal("factorial-5 should carry graded tests")
	}
	if len(problem.Tests.Inputs) != len(problem.Tests.Expected) {
		t.Fatalf("inputs/expected length mismatch: %d vs %d",
			len(problem.Tests.Inputs), len(problem.Tests.Expected))
	}
}
