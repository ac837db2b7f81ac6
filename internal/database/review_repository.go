package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
)

// DateLayout is the day-granularity format used for all review dates
const DateLayout = "2006-01-02"

// ReviewRepository is the review store: durable scheduling state for every
// expression ever seen, plus aggregate statistics. Every mutating call runs
// as a single transaction, so a record is either fully updated or untouched.
type ReviewRepository struct {
	sm2 *spaced_repetition.SM2
	now func() time.Time
}

// NewReviewRepository creates a new repository instance
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		sm2: spaced_repetition.NewSM2(),
		now: time.Now,
	}
}

// reviewRow is the raw database shape of a review record
type reviewRow struct {
	ExpressionID   string         `db:"expression_id"`
	Text           string         `db:"text"`
	EaseFactor     float64        `db:"ease_factor"`
	Interval       int            `db:"interval"`
	Repetitions    int            `db:"repetitions"`
	NextReview     string         `db:"next_review"`
	LastReview     sql.NullString `db:"last_review"`
	QualityHistory string         `db:"quality_history"`
	CreatedAt      string         `db:"created_at"`
	Metadata       string         `db:"metadata"`
}

func (row *reviewRow) toModel() (*models.ReviewRecord, error) {
	rec := &models.ReviewRecord{
		ExpressionID:   row.ExpressionID,
		Text:           row.Text,
		EaseFactor:     row.EaseFactor,
		Interval:       row.Interval,
		Repetitions:    row.Repetitions,
		NextReviewDate: row.NextReview,
		CreatedAt:      row.CreatedAt,
	}
	if row.LastReview.Valid {
		last := row.LastReview.String
		rec.LastReviewDate = &last
	}
	if err := json.Unmarshal([]byte(row.QualityHistory), &rec.QualityHistory); err != nil {
		return nil, fmt.Errorf("failed to decode quality history for %s: %w", row.ExpressionID, err)
	}
	if err := json.Unmarshal([]byte(row.Metadata), &rec.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", row.ExpressionID, err)
	}
	return rec, nil
}

// Add creates a review record with default scheduling state for a new
// expression. Re-adding an existing id is a no-op, not an error.
func (r *ReviewRepository) Add(id, text string, metadata map[string]string) error {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	today := r.now().Format(DateLayout)

	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(tx.Rebind(`
		INSERT INTO expressions (expression_id, text, next_review, created_at, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (expression_id) DO NOTHING
	`), id, text, today, today, string(metaJSON))
	if err != nil {
		return fmt.Errorf("failed to insert expression: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if inserted == 0 {
		// Already known, nothing to do.
		return nil
	}

	_, err = tx.Exec(`UPDATE statistics SET total_expressions = (SELECT COUNT(*) FROM expressions) WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to update statistics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// RecordReview applies a 0-5 quality rating to an expression: it runs the
// SM-2 update, reschedules the next review, appends to the quality history
// and refreshes the aggregate statistics, all in one transaction.
func (r *ReviewRepository) RecordReview(id string, quality int) error {
	if quality < 0 || quality > 5 {
		return ErrInvalidQuality
	}

	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var row reviewRow
	err = tx.Get(&row, tx.Rebind(`SELECT * FROM expressions WHERE expression_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get expression: %w", err)
	}

	newInterval, newEase, newReps := r.sm2.ComputeNextInterval(quality, row.Repetitions, row.EaseFactor, row.Interval)

	var history []int
	if err := json.Unmarshal([]byte(row.QualityHistory), &history); err != nil {
		return fmt.Errorf("failed to decode quality history: %w", err)
	}
	history = append(history, quality)
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode quality history: %w", err)
	}

	now := r.now()
	today := now.Format(DateLayout)
	nextReview := now.AddDate(0, 0, newInterval).Format(DateLayout)

	_, err = tx.Exec(tx.Rebind(`
		UPDATE expressions SET
			ease_factor = ?,
			interval = ?,
			repetitions = ?,
			next_review = ?,
			last_review = ?,
			quality_history = ?
		WHERE expression_id = ?
	`), newEase, newInterval, newReps, nextReview, today, string(historyJSON), id)
	if err != nil {
		return fmt.Errorf("failed to update expression: %w", err)
	}

	if err := r.refreshStatistics(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// refreshStatistics recomputes the aggregate block from all quality
// histories. The correct rate is sum(quality) / (count * 5), a running
// average bounded in [0, 1].
func (r *ReviewRepository) refreshStatistics(tx *sqlx.Tx) error {
	var histories []string
	if err := tx.Select(&histories, `SELECT quality_history FROM expressions`); err != nil {
		return fmt.Errorf("failed to load quality histories: %w", err)
	}

	totalQuality := 0
	totalCount := 0
	for _, raw := range histories {
		var qualities []int
		if err := json.Unmarshal([]byte(raw), &qualities); err != nil {
			return fmt.Errorf("failed to decode quality history: %w", err)
		}
		for _, q := range qualities {
			totalQuality += q
		}
		totalCount += len(qualities)
	}

	correctRate := 0.0
	if totalCount > 0 {
		correctRate = float64(totalQuality) / (float64(totalCount) * 5)
	}

	_, err := tx.Exec(tx.Rebind(`
		UPDATE statistics SET
			total_reviews = total_reviews + 1,
			correct_rate = ?
		WHERE id = 1
	`), correctRate)
	if err != nil {
		return fmt.Errorf("failed to update statistics: %w", err)
	}
	return nil
}

// Get returns the review record for a single expression
func (r *ReviewRepository) Get(id string) (*models.ReviewRecord, error) {
	var row reviewRow
	err := DB.Get(&row, DB.Rebind(`SELECT * FROM expressions WHERE expression_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expression: %w", err)
	}
	return row.toModel()
}

// Due returns every record whose next review date has arrived as of the
// given day (YYYY-MM-DD), most overdue first. The ordering is deliberate:
// items the learner is furthest behind on come up first.
func (r *ReviewRepository) Due(asOf string) ([]models.DueRecord, error) {
	asOfDate, err := time.Parse(DateLayout, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date %q: %w", asOf, err)
	}

	var rows []reviewRow
	// Day-granularity dates in YYYY-MM-DD order lexicographically.
	err = DB.Select(&rows, DB.Rebind(`SELECT * FROM expressions WHERE next_review <= ?`), asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get due expressions: %w", err)
	}

	due := make([]models.DueRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		nextReview, err := time.Parse(DateLayout, rec.NextReviewDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next review date %q: %w", rec.NextReviewDate, err)
		}
		overdue := int(asOfDate.Sub(nextReview).Hours() / 24)
		due = append(due, models.DueRecord{ReviewRecord: *rec, DaysOverdue: overdue})
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DaysOverdue > due[j].DaysOverdue
	})
	return due, nil
}

// DueToday is a convenience wrapper over Due for the current day
func (r *ReviewRepository) DueToday() ([]models.DueRecord, error) {
	return r.Due(r.now().Format(DateLayout))
}

// Statistics returns the aggregate review statistics
func (r *ReviewRepository) Statistics() (*models.Statistics, error) {
	var stats models.Statistics
	err := DB.Get(&stats, `SELECT total_reviews, total_expressions, correct_rate FROM statistics WHERE id = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return &stats, nil
}
