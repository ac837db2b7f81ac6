package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/example/studybot/pkg/models"
)

// ErrNoQuiz signals that no quiz can be produced from the given expression
// and kind. It is a soft failure: callers should try another item or kind.
var ErrNoQuiz = errors.New("quiz: no quiz producible")

// Corrector maps a sentence to its corrected form plus the list of flagged
// grammar issues. Implemented outside the core.
type Corrector interface {
	Correct(text string) models.Correction
}

// distractorPoolSize caps how many length-ranked candidates the random
// sample draws from. Keeping the pool to the closest 50 biases distractors
// toward sentences of similar difficulty.
const distractorPoolSize = 50

// Words worth blanking out in a fill-blank quiz: common verbs and
// adjectives a learner should be able to supply from context.
var preferredWordPattern = regexp.MustCompile(`(?i)\b(get|go|come|take|put|make|think|know|want|need|like|love|have|help|work|feel|look|seem|happy|good|bad|sorry|right|important|nice|great)\b`)

var fallbackWordPattern = regexp.MustCompile(`\b\w{3,10}\b`)

const blankMarker = "_____"

// Engine generates quizzes from a fixed corpus of expressions. The corpus
// slice is treated as read-only; the engine never mutates entries.
type Engine struct {
	corpus     []models.Expression
	corrector  Corrector
	rng        *rand.Rand
	numChoices int
}

// NewEngine creates a quiz engine over the given corpus. corrector may be
// nil, in which case grammar correction quizzes are not producible. rng may
// be nil to use a time-seeded source; tests pass a fixed seed.
func NewEngine(corpus []models.Expression, corrector Corrector, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		corpus:     corpus,
		corrector:  corrector,
		rng:        rng,
		numChoices: 4,
	}
}

// Generate produces one quiz of the requested kind. A nil item picks a
// corpus expression uniformly at random; models.RandomKind picks the kind
// uniformly among the four shapes. Returns ErrNoQuiz when the selected
// generator cannot produce a well-formed question.
func (e *Engine) Generate(kind models.QuizKind, item *models.Expression) (*models.Quiz, error) {
	if len(e.corpus) == 0 {
		return nil, ErrNoQuiz
	}

	if item == nil {
		picked := e.corpus[e.rng.Intn(len(e.corpus))]
		item = &picked
	}

	if kind == models.RandomKind {
		kinds := []models.QuizKind{
			models.TranslateToSource,
			models.TranslateToTarget,
			models.FillBlank,
			models.GrammarCorrection,
		}
		kind = kinds[e.rng.Intn(len(kinds))]
	}

	switch kind {
	case models.TranslateToSource:
		return e.generateTranslateToSource(item)
	case models.TranslateToTarget:
		return e.generateTranslateToTarget(item)
	case models.FillBlank:
		return e.generateFillBlank(item)
	case models.GrammarCorrection:
		return e.generateGrammarCorrection(item)
	default:
		return nil, ErrNoQuiz
	}
}

// generateTranslateToSource shows the gloss and asks for the original line
func (e *Engine) generateTranslateToSource(item *models.Expression) (*models.Quiz, error) {
	if item.Translation == "" {
		return nil, ErrNoQuiz
	}

	correct := item.Text
	wrong := e.sampleDistractors(correct, e.numChoices-1, func(x models.Expression) string { return x.Text })
	if len(wrong) == 0 {
		return nil, ErrNoQuiz
	}

	choices, correctIndex := e.shuffleChoices(correct, wrong)
	return &models.Quiz{
		Kind:          models.TranslateToSource,
		Prompt:        item.Translation,
		Choices:       choices,
		CorrectIndex:  correctIndex,
		CorrectAnswer: correct,
		Explanation:   fmt.Sprintf("%q is expressed as %q.", item.Translation, correct),
	}, nil
}

// generateTranslateToTarget shows the original line and asks for the gloss
func (e *Engine) generateTranslateToTarget(item *models.Expression) (*models.Quiz, error) {
	if item.Translation == "" {
		return nil, ErrNoQuiz
	}

	correct := item.Translation
	wrong := e.sampleDistractors(correct, e.numChoices-1, func(x models.Expression) string { return x.Translation })
	if len(wrong) == 0 {
		return nil, ErrNoQuiz
	}

	choices, correctIndex := e.shuffleChoices(correct, wrong)
	return &models.Quiz{
		Kind:          models.TranslateToTarget,
		Prompt:        item.Text,
		Choices:       choices,
		CorrectIndex:  correctIndex,
		CorrectAnswer: correct,
		Explanation:   fmt.Sprintf("%q means %q.", item.Text, correct),
	}, nil
}

// generateFillBlank removes one key word from the sentence and offers
// near-synonyms as distractors
func (e *Engine) generateFillBlank(item *models.Expression) (*models.Quiz, error) {
	text := item.Text

	keyWord := preferredWordPattern.FindString(text)
	if keyWord == "" {
		words := fallbackWordPattern.FindAllString(text, -1)
		if len(words) == 0 {
			return nil, ErrNoQuiz
		}
		keyWord = words[e.rng.Intn(len(words))]
	}

	// Only the first occurrence becomes the blank.
	blanked := strings.Replace(text, keyWord, blankMarker, 1)

	wrong := e.similarWords(keyWord, e.numChoices-1)
	if len(wrong) == 0 {
		return nil, ErrNoQuiz
	}

	choices, correctIndex := e.shuffleChoices(keyWord, wrong)
	quiz := &models.Quiz{
		Kind:          models.FillBlank,
		Prompt:        blanked,
		Choices:       choices,
		CorrectIndex:  correctIndex,
		CorrectAnswer: keyWord,
		Explanation:   fmt.Sprintf("The answer is %q. Full sentence: %q", keyWord, text),
	}
	if item.Translation != "" {
		quiz.Hint = "(" + item.Translation + ")"
	}
	return quiz, nil
}

// generateGrammarCorrection asks for the corrected form of a broken line.
// Distractors are the original sentence plus partially corrected variants.
func (e *Engine) generateGrammarCorrection(item *models.Expression) (*models.Quiz, error) {
	if e.corrector == nil {
		return nil, ErrNoQuiz
	}

	result := e.corrector.Correct(item.Text)
	if !result.HasErrors {
		return nil, ErrNoQuiz
	}

	correct := result.Corrected
	candidates := []string{
		item.Text,
		e.partialCorrection(item.Text, result.Issues),
		e.partialCorrection(item.Text, result.Issues),
	}

	seen := make(map[string]bool)
	wrong := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == correct || seen[c] {
			continue
		}
		seen[c] = true
		wrong = append(wrong, c)
	}
	if len(wrong) > e.numChoices-1 {
		wrong = wrong[:e.numChoices-1]
	}
	if len(wrong) == 0 {
		return nil, ErrNoQuiz
	}

	var explanation strings.Builder
	fmt.Fprintf(&explanation, "Original: %q\n", item.Text)
	fmt.Fprintf(&explanation, "Corrected: %q\n", correct)
	explanation.WriteString("Grammar points:\n")
	for _, issue := range result.Issues {
		fmt.Fprintf(&explanation, "  - %q -> %q: %s\n", issue.Matched, issue.Replacement, issue.Explanation)
	}

	choices, correctIndex := e.shuffleChoices(correct, wrong)
	quiz := &models.Quiz{
		Kind:          models.GrammarCorrection,
		Prompt:        fmt.Sprintf("Which is the correct form of: %q", item.Text),
		Choices:       choices,
		CorrectIndex:  correctIndex,
		CorrectAnswer: correct,
		Explanation:   explanation.String(),
	}
	if item.Translation != "" {
		quiz.Hint = "(" + item.Translation + ")"
	}
	return quiz, nil
}

// partialCorrection applies a random strict subset of the detected issues,
// producing a plausible near-miss answer that fixes some but not all errors
func (e *Engine) partialCorrection(text string, issues []models.Issue) string {
	if len(issues) == 0 {
		return text
	}

	upper := len(issues) - 1
	if upper < 1 {
		upper = 1
	}
	numToFix := 1 + e.rng.Intn(upper)

	picked := make([]models.Issue, 0, numToFix)
	for _, idx := range e.rng.Perm(len(issues))[:numToFix] {
		picked = append(picked, issues[idx])
	}

	// Apply from the highest start offset down so earlier spans stay valid.
	sort.Slice(picked, func(i, j int) bool { return picked[i].Start > picked[j].Start })

	corrected := text
	for _, issue := range picked {
		if issue.Start < 0 || issue.End > len(corrected) || issue.Start > issue.End {
			continue
		}
		corrected = corrected[:issue.Start] + issue.Replacement + corrected[issue.End:]
	}
	return corrected
}

// sampleDistractors picks up to n wrong answers for a translation quiz.
// Candidates are ranked by how close their word count is to the correct
// answer's, and the sample is drawn uniformly from the closest pool so
// repeated quizzes vary. Returns fewer than n when the corpus is small.
func (e *Engine) sampleDistractors(correct string, n int, field func(models.Expression) string) []string {
	type candidate struct {
		value   string
		lenDiff int
	}

	correctWords := len(strings.Fields(correct))

	var candidates []candidate
	seen := map[string]bool{correct: true}
	for _, expr := range e.corpus {
		value := field(expr)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		diff := len(strings.Fields(value)) - correctWords
		if diff < 0 {
			diff = -diff
		}
		candidates = append(candidates, candidate{value: value, lenDiff: diff})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].lenDiff < candidates[j].lenDiff
	})

	pool := candidates
	if len(pool) > distractorPoolSize {
		pool = pool[:distractorPoolSize]
	}
	if n > len(pool) {
		n = len(pool)
	}
	if n == 0 {
		return nil
	}

	wrong := make([]string, 0, n)
	for _, idx := range e.rng.Perm(len(pool))[:n] {
		wrong = append(wrong, pool[idx].value)
	}
	return wrong
}

// shuffleChoices mixes the correct answer in with the distractors and
// reports where it ended up
func (e *Engine) shuffleChoices(correct string, wrong []string) ([]string, int) {
	choices := make([]string, 0, len(wrong)+1)
	choices = append(choices, correct)
	choices = append(choices, wrong...)

	correctIndex := 0
	e.rng.Shuffle(len(choices), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		choices[i], choices[j] = choices[j], choices[i]
	})

	return choices, correctIndex
}
