package models

// QuizKind identifies one of the supported quiz shapes
type QuizKind string

const (
	// TranslateToSource shows the translation and asks for the original line
	TranslateToSource QuizKind = "translate_to_source"
	// TranslateToTarget shows the original line and asks for the translation
	TranslateToTarget QuizKind = "translate_to_target"
	// FillBlank removes one key word from the sentence
	FillBlank QuizKind = "fill_blank"
	// GrammarCorrection asks for the grammatically correct form of a broken line
	GrammarCorrection QuizKind = "grammar_correction"
	// RandomKind picks one of the four kinds uniformly
	RandomKind QuizKind = "random"
)

// Quiz is a single multiple-choice question produced by the quiz engine.
// Choices contain no duplicate strings and Choices[CorrectIndex] == CorrectAnswer.
type Quiz struct {
	Kind          QuizKind `json:"kind"`
	Prompt        string   `json:"prompt"`
	Hint          string   `json:"hint,omitempty"`
	Choices       []string `json:"choices"`
	CorrectIndex  int      `json:"correct_index"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Issue is a single grammar problem found in a sentence. Start and End are
// byte offsets into the original text, valid for direct substitution.
type Issue struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Matched     string `json:"matched"`
	Replacement string `json:"replacement"`
	Explanation string `json:"explanation"`
}

// Correction is the result of running a sentence through a correction service
type Correction struct {
	HasErrors bool    `json:"has_errors"`
	Original  string  `json:"original"`
	Corrected string  `json:"corrected"`
	Issues    []Issue `json:"issues"`
}
