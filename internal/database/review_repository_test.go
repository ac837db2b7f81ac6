package database

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"
)

// setupTestDB connects the package to a throwaway SQLite file
func setupTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := ConnectSQLite(path); err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	t.Cleanup(func() { Close() })
	return path
}

// fixedRepo returns a repository whose clock is pinned to the given day
func fixedRepo(day string) *ReviewRepository {
	r := NewReviewRepository()
	when, _ := time.Parse(DateLayout, day)
	r.now = func() time.Time { return when }
	return r
}

func TestAddIsIdempotent(t *testing.T) {
	setupTestDB(t)
	repo := fixedRepo("2026-03-01")

	if err := repo.Add("expr_001", "How are you?", map[string]string{"episode": "1"}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	first, err := repo.Get("expr_001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// Second add with different text must be a silent no-op.
	if err := repo.Add("expr_001", "different text", nil); err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	second, err := repo.Get("expr_001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if second.Text != first.Text {
		t.Errorf("text changed on re-add: %q -> %q", first.Text, second.Text)
	}
	if second.EaseFactor != 2.5 || second.Interval != 1 || second.Repetitions != 0 {
		t.Errorf("unexpected defaults: ease=%.2f interval=%d reps=%d", second.EaseFactor, second.Interval, second.Repetitions)
	}
	if second.NextReviewDate != "2026-03-01" {
		t.Errorf("next review = %s, want 2026-03-01", second.NextReviewDate)
	}
	if second.LastReviewDate != nil {
		t.Errorf("last review should be nil before first review, got %v", *second.LastReviewDate)
	}

	stats, err := repo.Statistics()
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.TotalExpressions != 1 {
		t.Errorf("total expressions = %d, want 1", stats.TotalExpressions)
	}
}

func TestRecordReviewUnknownExpression(t *testing.T) {
	setupTestDB(t)
	repo := NewReviewRepository()

	err := repo.RecordReview("missing", 4)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordReviewInvalidQuality(t *testing.T) {
	setupTestDB(t)
	repo := fixedRepo("2026-03-01")
	repo.Add("expr_001", "Okay, see you.", nil)

	for _, quality := range []int{-1, 6, 100} {
		if err := repo.RecordReview("expr_001", quality); !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("quality=%d: err = %v, want ErrInvalidQuality", quality, err)
		}
	}

	// Nothing was mutated by the rejected calls.
	rec, err := repo.Get("expr_001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(rec.QualityHistory) != 0 || rec.LastReviewDate != nil {
		t.Errorf("record was mutated by invalid quality: history=%v last=%v", rec.QualityHistory, rec.LastReviewDate)
	}
}

func TestRecordReviewSchedulesNextReview(t *testing.T) {
	setupTestDB(t)
	repo := fixedRepo("2026-03-01")
	repo.Add("expr_001", "Can you help me?", nil)

	// First perfect recall: interval 1, review tomorrow.
	if err := repo.RecordReview("expr_001", 5); err != nil {
		t.Fatalf("record review failed: %v", err)
	}
	rec, _ := repo.Get("expr_001")
	if rec.Interval != 1 || rec.Repetitions != 1 {
		t.Fatalf("after first review: interval=%d reps=%d, want 1, 1", rec.Interval, rec.Repetitions)
	}
	if rec.NextReviewDate != "2026-03-02" {
		t.Errorf("next review = %s, want 2026-03-02", rec.NextReviewDate)
	}
	if rec.LastReviewDate == nil || *rec.LastReviewDate != "2026-03-01" {
		t.Errorf("last review = %v, want 2026-03-01", rec.LastReviewDate)
	}
	if math.Abs(rec.EaseFactor-2.6) > 1e-6 {
		t.Errorf("ease factor = %.4f, want 2.6", rec.EaseFactor)
	}

	// Second recall: interval jumps to 6.
	if err := repo.RecordReview("expr_001", 5); err != nil {
		t.Fatalf("record review failed: %v", err)
	}
	rec, _ = repo.Get("expr_001")
	if rec.Interval != 6 || rec.Repetitions != 2 {
		t.Fatalf("after second review: interval=%d reps=%d, want 6, 2", rec.Interval, rec.Repetitions)
	}
	if rec.NextReviewDate != "2026-03-07" {
		t.Errorf("next review = %s, want 2026-03-07", rec.NextReviewDate)
	}

	// A failing recall resets the ladder but keeps the ease factor.
	easeBefore := rec.EaseFactor
	if err := repo.RecordReview("expr_001", 2); err != nil {
		t.Fatalf("record review failed: %v", err)
	}
	rec, _ = repo.Get("expr_001")
	if rec.Interval != 1 || rec.Repetitions != 0 {
		t.Errorf("after failure: interval=%d reps=%d, want 1, 0", rec.Interval, rec.Repetitions)
	}
	if rec.EaseFactor != easeBefore {
		t.Errorf("ease factor changed on failure: %.4f -> %.4f", easeBefore, rec.EaseFactor)
	}
	wantHistory := []int{5, 5, 2}
	if len(rec.QualityHistory) != len(wantHistory) {
		t.Fatalf("quality history = %v, want %v", rec.QualityHistory, wantHistory)
	}
	for i, q := range wantHistory {
		if rec.QualityHistory[i] != q {
			t.Errorf("quality history = %v, want %v", rec.QualityHistory, wantHistory)
			break
		}
	}
}

func TestDueOrderedByMostOverdue(t *testing.T) {
	setupTestDB(t)
	repo := fixedRepo("2026-03-10")

	for _, id := range []string{"a", "b", "c", "future"} {
		if err := repo.Add(id, "line "+id, nil); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	// Rewind next review dates directly; Add always schedules for today.
	dates := map[string]string{
		"a":      "2026-03-09", // 1 day overdue
		"b":      "2026-03-05", // 5 days overdue
		"c":      "2026-03-10", // due today
		"future": "2026-03-15", // not due
	}
	for id, date := range dates {
		if _, err := DB.Exec(DB.Rebind(`UPDATE expressions SET next_review = ? WHERE expression_id = ?`), date, id); err != nil {
			t.Fatalf("failed to rewind next review: %v", err)
		}
	}

	due, err := repo.Due("2026-03-10")
	if err != nil {
		t.Fatalf("due failed: %v", err)
	}

	wantOrder := []string{"b", "a", "c"}
	wantOverdue := []int{5, 1, 0}
	if len(due) != len(wantOrder) {
		t.Fatalf("got %d due records, want %d", len(due), len(wantOrder))
	}
	for i := range wantOrder {
		if due[i].ExpressionID != wantOrder[i] {
			t.Errorf("due[%d] = %s, want %s", i, due[i].ExpressionID, wantOrder[i])
		}
		if due[i].DaysOverdue != wantOverdue[i] {
			t.Errorf("due[%d].DaysOverdue = %d, want %d", i, due[i].DaysOverdue, wantOverdue[i])
		}
	}
}

func TestStatisticsAccumulate(t *testing.T) {
	setupTestDB(t)
	repo := fixedRepo("2026-03-01")
	repo.Add("expr_001", "I got it.", nil)
	repo.Add("expr_002", "Thank you very much.", nil)

	repo.RecordReview("expr_001", 5)
	repo.RecordReview("expr_002", 3)
	repo.RecordReview("expr_001", 2)

	stats, err := repo.Statistics()
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.TotalReviews != 3 {
		t.Errorf("total reviews = %d, want 3", stats.TotalReviews)
	}
	if stats.TotalExpressions != 2 {
		t.Errorf("total expressions = %d, want 2", stats.TotalExpressions)
	}
	// (5 + 3 + 2) / (3 * 5)
	want := 10.0 / 15.0
	if math.Abs(stats.CorrectRate-want) > 1e-6 {
		t.Errorf("correct rate = %.4f, want %.4f", stats.CorrectRate, want)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := setupTestDB(t)
	repo := fixedRepo("2026-03-01")
	repo.Add("expr_001", "Where were you?", map[string]string{"category": "questions"})
	repo.RecordReview("expr_001", 4)

	if err := Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := ConnectSQLite(path); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	rec, err := repo.Get("expr_001")
	if err != nil {
		t.Fatalf("get after reopen failed: %v", err)
	}
	if len(rec.QualityHistory) != 1 || rec.QualityHistory[0] != 4 {
		t.Errorf("quality history = %v, want [4]", rec.QualityHistory)
	}
	if rec.Metadata["category"] != "questions" {
		t.Errorf("metadata lost across reopen: %v", rec.Metadata)
	}
}
