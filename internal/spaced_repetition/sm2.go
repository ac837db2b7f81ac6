package spaced_repetition

import "math"

// SM2 implements the SuperMemo-2 algorithm variant used for scheduling reviews
type SM2 struct {
	// Answers at or above this quality count as a successful recall
	PassThreshold int
	// Lower bound for the ease factor
	MinEaseFactor float64
}

// NewSM2 creates a new SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: 3,
		MinEaseFactor: 1.3,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// ComputeNextInterval calculates the next review interval from a quality rating.
// quality is the 0-5 answer rating, repetitions the count of consecutive
// successful recalls so far, easeFactor the current EF and interval the
// current interval in days. Returns (newInterval, newEaseFactor, newRepetitions).
//
// A failing quality (< PassThreshold) resets the item back to a 1-day
// interval with zero repetitions but leaves the ease factor untouched, so a
// previously easy item does not become artificially hard after one slip.
func (sm *SM2) ComputeNextInterval(quality, repetitions int, easeFactor float64, interval int) (int, float64, int) {
	if quality < sm.PassThreshold {
		return 1, easeFactor, 0
	}

	// EF' = EF + (0.1 - (5 - q) * (0.08 + (5 - q) * 0.02))
	q := float64(quality)
	newEaseFactor := easeFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if newEaseFactor < sm.MinEaseFactor {
		newEaseFactor = sm.MinEaseFactor
	}

	newRepetitions := repetitions + 1

	// First two successful recalls use fixed intervals (day 1, day 6),
	// after that growth is multiplicative.
	var newInterval int
	switch repetitions {
	case 0:
		newInterval = 1
	case 1:
		newInterval = 6
	default:
		newInterval = int(math.Round(float64(interval) * newEaseFactor))
	}

	return newInterval, newEaseFactor, newRepetitions
}

// IsPassing reports whether a quality rating counts as a successful recall
func (sm *SM2) IsPassing(quality int) bool {
	return quality >= sm.PassThreshold
}
