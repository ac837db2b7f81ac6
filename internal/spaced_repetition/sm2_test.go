package spaced_repetition

import (
	"math"
	"testing"
)

const epsilon = 1e-6

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %.6f, want %.6f", name, got, want)
	}
}

func TestFailingQualityResets(t *testing.T) {
	sm := NewSM2()
	// Any quality below 3 sends the item back to the start of the ladder,
	// with the ease factor preserved.
	for _, quality := range []int{0, 1, 2} {
		interval, ef, reps := sm.ComputeNextInterval(quality, 7, 2.8, 42)
		if interval != 1 {
			t.Errorf("quality=%d: interval = %d, want 1", quality, interval)
		}
		if reps != 0 {
			t.Errorf("quality=%d: repetitions = %d, want 0", quality, reps)
		}
		assertFloat(t, "ease factor after failure", ef, 2.8)
	}
}

func TestTieredIntervalGrowth(t *testing.T) {
	sm := NewSM2()

	// Three consecutive perfect recalls from a fresh record: 1, 6, round(6*EF).
	interval, ef, reps := sm.ComputeNextInterval(5, 0, 2.5, 1)
	if interval != 1 || reps != 1 {
		t.Fatalf("first review: got (interval=%d, reps=%d), want (1, 1)", interval, reps)
	}
	assertFloat(t, "ease after first review", ef, 2.6)

	interval, ef, reps = sm.ComputeNextInterval(5, reps, ef, interval)
	if interval != 6 || reps != 2 {
		t.Fatalf("second review: got (interval=%d, reps=%d), want (6, 2)", interval, reps)
	}
	assertFloat(t, "ease after second review", ef, 2.7)

	interval, ef, reps = sm.ComputeNextInterval(5, reps, ef, interval)
	want := int(math.Round(6 * 2.8))
	if interval != want || reps != 3 {
		t.Fatalf("third review: got (interval=%d, reps=%d), want (%d, 3)", interval, reps, want)
	}
	assertFloat(t, "ease after third review", ef, 2.8)
}

func TestEaseFactorFloor(t *testing.T) {
	sm := NewSM2()
	// Quality 3 lowers the ease factor by 0.14 per review, but it never
	// drops below 1.3.
	ef := 2.5
	reps := 0
	interval := 1
	for i := 0; i < 50; i++ {
		interval, ef, reps = sm.ComputeNextInterval(3, reps, ef, interval)
		if ef < 1.3-epsilon {
			t.Fatalf("review %d: ease factor %.4f dropped below 1.3", i+1, ef)
		}
	}
	assertFloat(t, "ease factor after many hard passes", ef, 1.3)
}

func TestEaseFactorUpdateFormula(t *testing.T) {
	sm := NewSM2()
	tests := []struct {
		quality int
		ease    float64
		want    float64
	}{
		{5, 2.5, 2.6},   // +0.1
		{4, 2.5, 2.5},   // unchanged
		{3, 2.5, 2.36},  // -0.14
		{4, 2.6, 2.6},   // (quality=4, reps=1, ef=2.6) worked example
	}
	for _, tt := range tests {
		_, got, _ := sm.ComputeNextInterval(tt.quality, 2, tt.ease, 10)
		assertFloat(t, "ease factor update", got, tt.want)
	}
}

func TestSecondReviewWorkedExample(t *testing.T) {
	sm := NewSM2()
	// quality=4, repetitions=1, ease=2.6, interval=1:
	// EF' = 2.6 + (0.1 - 1*(0.08 + 1*0.02)) = 2.6, interval jumps to 6.
	interval, ef, reps := sm.ComputeNextInterval(4, 1, 2.6, 1)
	if interval != 6 {
		t.Errorf("interval = %d, want 6", interval)
	}
	if reps != 2 {
		t.Errorf("repetitions = %d, want 2", reps)
	}
	assertFloat(t, "ease factor", ef, 2.6)
}

func TestMultiplicativeIntervalRounds(t *testing.T) {
	sm := NewSM2()
	// round(13 * 1.3) = round(16.9) = 17
	interval, _, _ := sm.ComputeNextInterval(3, 5, 1.3, 13)
	if interval != 17 {
		t.Errorf("interval = %d, want 17", interval)
	}
}

func TestIsPassing(t *testing.T) {
	sm := NewSM2()
	for quality := 0; quality <= 5; quality++ {
		want := quality >= 3
		if got := sm.IsPassing(quality); got != want {
			t.Errorf("IsPassing(%d) = %v, want %v", quality, got, want)
		}
	}
}
