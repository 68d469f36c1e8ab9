package judge

import (
	"encoding/json"
	"strings"
)

// Judge0 language ids the graded harness supports.
const (
	LanguageJavaScript = 63
	LanguagePython     = 71
)

// TestOutcome is one graded test case.
type TestOutcome struct {
	Input    int    `json:"input"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
	Pass     bool   `json:"pass"`
}

// BuildHarness wraps a user's solve() implementation so every test input
// prints exactly one line to stdout. Returns false for languages the
// harness doesn't support.
func BuildHarness(languageID int, userCode string, inputs []int) (string, bool) {
	// [1,2,3] is a valid array literal in both target languages.
	literal, err := json.Marshal(inputs)
	if err != nil {
		return "", false
	}

	switch languageID {
	case LanguageJavaScript:
		var b strings.Builder
		b.WriteString(userCode)
		b.WriteString("\nconst __inputs__ = ")
		b.Write(literal)
		b.WriteString(";\nfor (const n of __inputs__) {\n")
		b.WriteString("  try { const r = solve(n); console.log(String(r)); } catch(e){ console.log('__ERROR__'); }\n}")
		return b.String(), true
	case LanguagePython:
		var b strings.Builder
		b.WriteString(userCode)
		b.WriteString("\n__inputs__ = ")
		b.Write(literal)
		b.WriteString("\nfor n in __inputs__:\n")
		b.WriteString("  try:\n    print(solve(n))\n  except Exception as e:\n    print('__ERROR__')\n")
		return b.String(), true
	}
	return "", false
}

// Grade matches harness stdout lines against the expected outputs, one
// line per input. Missing lines count as failures.
func Grade(stdout string, inputs []int, expected []string) (passed int, results []TestOutcome) {
	stdout = strings.TrimSpace(strings.ReplaceAll(stdout, "\r\n", "\n"))
	var lines []string
	if stdout != "" {
		lines = strings.Split(stdout, "\n")
	}

	results = make([]TestOutcome, 0, len(inputs))
	for i, input := range inputs {
		got := ""
		if i < len(lines) {
			got = strings.TrimSpace(lines[i])
		}
		pass := got == expected[i]
		if pass {
			passed++
		}
		results = append(results, TestOutcome{
			Input:    input,
			Expected: expected[i],
			Got:      got,
			Pass:     pass,
		})
	}
	return passed, results
}
