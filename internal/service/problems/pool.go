package problems

import (
	"math/rand"

	"github.com/mindmash/backend/internal/domain"
)

// Pool is the in-memory problem catalog. The set is small enough that a
// slice plus an id index is all we need; a database-backed catalog can slot
// in behind the same methods later.
type Pool struct {
	list  []domain.Problem
	byID  map[string]domain.Problem
}

// NewPool builds the default catalog.
func NewPool() *Pool {
	p := &Pool{byID: make(map[string]domain.Problem)}
	for _, problem := range defaultProblems() {
		p.list = append(p.list, problem)
		p.byID[problem.ID] = problem
	}
	return p
}

// Pick returns a random problem to start a match with.
func (p *Pool) Pick() domain.Problem {
	return p.list[rand.Intn(len(p.list))]
}

// Get looks a problem up by id.
func (p *Pool) Get(id string) (domain.Problem, bool) {
	problem, ok := p.byID[id]
	return problem, ok
}

func defaultProblems() []domain.Problem {
	return []domain.Problem{
		{
			ID:             "factorial-5",
			Title:          "Factorial of 5",
			Difficulty:     "Easy",
			Description:    "Write a function that returns factorial(5).",
			ExpectedOutput: "120",
			LanguageHints: map[string]string{
				"javascript": "function factorial(n){ if(n===0) return 1; return n*factorial(n-1); }\nconsole.log(factorial(5));",
				"python":     "def factorial(n):\n    if n==0: return 1\n    return n*factorial(n-1)\nprint(factorial(5))",
				"c":          "#include <stdio.h>\nlong long f(long long n){ return n? n*f(n-1):1; }\nint main(){ printf(\"%lld\", f(5)); }",
				"cpp":        "#include <bits/stdc++.h>\nusing namespace std; long long f(long long n){ return n? n*f(n-1):1; }\nint main(){ cout<<f(5); }",
				"java":       "class Main{ static long f(long n){ return n==0?1:n*f(n-1); }\npublic static void main(String[] a){ System.out.println(f(5)); }}",
			},
			Tests: &domain.ProblemTests{
				Inputs:   []int{0, 1, 3, 5, 7},
				Expected: []string{"1", "1", "6", "120", "5040"},
			},
		},
		{
			ID:             "reverse-hello",
			Title:          "Reverse 'hello'",
			Difficulty:     "Easy",
			Description:    "Print the reverse of the string 'hello'.",
			ExpectedOutput: "olleh",
		},
		{
			ID:             "fib-10",
			Title:          "10th Fibonacci",
			Difficulty:     "Medium",
			Description:    "Print the 10th Fibonacci number (0-indexed: F0=0, F1=1).",
			ExpectedOutput: "55",
		},
	}
}
