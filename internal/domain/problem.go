package domain

// Problem is one coding challenge handed to both players of a match.
type Problem struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Difficulty     string            `json:"difficulty,omitempty"`
	Description    string            `json:"description"`
	ExpectedOutput string            `json:"expectedOutput"`
	LanguageHints  map[string]string `json:"languageHints,omitempty"`
	Tests          *ProblemTests     `json:"-"`
}

// ProblemTests are the graded inputs for problems that support the
// solve()-harness runner. Expected[i] is the required stdout line for
// Inputs[i].
type ProblemTests struct {
	Inputs   []int
	Expected []string
}
