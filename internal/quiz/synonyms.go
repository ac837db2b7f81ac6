package quiz

import "strings"

// Curated near-neighbor tables for fill-blank distractors, grouped by
// semantic role. Words outside any group fall back to the generic pool.
var verbGroups = map[string][]string{
	"get":   {"have", "take", "make"},
	"go":    {"come", "move", "walk"},
	"make":  {"create", "build", "form"},
	"think": {"believe", "consider", "suppose"},
	"know":  {"understand", "realize", "recognize"},
	"want":  {"need", "wish", "desire"},
	"like":  {"love", "enjoy", "prefer"},
	"have":  {"own", "possess", "hold"},
	"help":  {"assist", "support", "aid"},
	"work":  {"function", "operate", "perform"},
}

var adjectiveGroups = map[string][]string{
	"happy":     {"glad", "pleased", "joyful"},
	"good":      {"nice", "fine", "great"},
	"bad":       {"poor", "wrong", "terrible"},
	"sorry":     {"apologetic", "regretful", "sad"},
	"important": {"significant", "crucial", "vital"},
}

// genericWordPool backs distractors for words no curated group covers
var genericWordPool = []string{"good", "make", "take", "know", "think", "want", "need", "help"}

// similarWords picks up to n plausible distractors for a blanked-out word
func (e *Engine) similarWords(word string, n int) []string {
	lower := strings.ToLower(word)

	var source []string
	if group, ok := verbGroups[lower]; ok {
		source = group
	} else if group, ok := adjectiveGroups[lower]; ok {
		source = group
	} else {
		source = genericWordPool
	}

	// Never offer the answer itself as a distractor.
	filtered := make([]string, 0, len(source))
	for _, w := range source {
		if strings.ToLower(w) != lower {
			filtered = append(filtered, w)
		}
	}

	if n > len(filtered) {
		n = len(filtered)
	}
	if n == 0 {
		return nil
	}

	picked := make([]string, 0, n)
	for _, idx := range e.rng.Perm(len(filtered))[:n] {
		picked = append(picked, filtered[idx])
	}
	return picked
}
