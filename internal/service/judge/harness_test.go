package judge

import (
	"strings"
	"testing"
)

func TestBuildHarnessJavaScript(t *testing.T) {
	src, ok := BuildHarness(LanguageJavaScript, "function solve(n){return n*2;}", []int{1, 2, 3})
	if !ok {
		t.Fatal("expected JavaScript to be supported")
	}
	if !strings.Contains(src, "function solve(n){return n*2;}") {
		t.Fatal("harness dropped the user code")
	}
	if !strings.Contains(src, "[1,2,3]") {
		t.Fatal("harness missing input literal")
	}
	if !strings.Contains(src, "console.log") {
		t.Fatal("harness missing output statement")
	}
}

func TestBuildHarnessPython(t *testing.T) {
	src, ok := BuildHarness(LanguagePython, "def solve(n):\n    return n*2", []int{0, 5})
	if !ok {
		t.Fatal("expected Python to be supported")
	}
	if !strings.Contains(src, "[0,5]") {
		t.Fatal("harness missing input literal")
	}
	if !strings.Contains(src, "print(solve(n))") {
		t.Fatal("harness missing print loop")
	}
}

func TestBuildHarnessUnsupportedLanguage(t *testing.T) {
	if _, ok := BuildHarness(54, "int main(){}", []int{1}); ok {
		t.Fatal("expected C++ to be rejected by the harness")
	}
}

func TestGradeAllPass(t *testing.T) {
	passed, results := Grade("1\n1\n6\n120\n5040\n", []int{0, 1, 3, 5, 7},
		[]string{"1", "1", "6", "120", "5040"})
	if passed != 5 {
		t.Fatalf("expected 5 passes, got %d", passed)
	}
	for _, r := range results {
		if !r.Pass {
			t.Fatalf("case %d unexpectedly failed: got %q want %q", r.Input, r.Got, r.Expected)
		}
	}
}

func TestGradeMissingAndWrongLines(t *testing.T) {
	passed, results := Grade("1\n2\n", []int{0, 1, 3}, []string{"1", "1", "6"})
	if passed != 1 {
		t.Fatalf("expected 1 pass, got %d", passed)
	}
	if results[1].Pass || results[1].Got != "2" {
		t.Fatalf("wrong line should fail: %+v", results[1])
	}
	if results[2].Pass || results[2].Got != "" {
		t.Fatalf("missing line should fail with empty got: %+v", results[2])
	}
}

func TestGradeWindowsLineEndings(t *testing.T) {
	passed, _ := Grade("1\r\n6\r\n", []int{0, 3}, []string{"1", "6"})
	if passed != 2 {
		t.Fatalf("expected CRLF output to grade cleanly, got %d passes", passed)
	}
}
