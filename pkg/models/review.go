package models

// ReviewRecord tracks scheduling state for one expression using the SM-2 algorithm
type ReviewRecord struct {
	ExpressionID   string            `json:"expression_id" db:"expression_id"`
	Text           string            `json:"text" db:"text"`
	EaseFactor     float64           `json:"ease_factor" db:"ease_factor"` // SM-2 EF parameter, never below 1.3
	Interval       int               `json:"interval" db:"interval"`       // Current interval in days
	Repetitions    int               `json:"repetitions" db:"repetitions"` // Consecutive successful recalls
	NextReviewDate string            `json:"next_review" db:"next_review"` // YYYY-MM-DD
	LastReviewDate *string           `json:"last_review" db:"last_review"` // YYYY-MM-DD, nil until first review
	QualityHistory []int             `json:"quality_history" db:"-"`       // Past 0-5 ratings, append-only
	CreatedAt      string            `json:"created_at" db:"created_at"`   // YYYY-MM-DD
	Metadata       map[string]string `json:"metadata,omitempty" db:"-"`
}

// DueRecord is a review record annotated with how overdue it is
type DueRecord struct {
	ReviewRecord
	DaysOverdue int `json:"days_overdue"`
}

// Statistics tracks aggregate review progress across all expressions
type Statistics struct {
	TotalReviews     int     `json:"total_reviews" db:"total_reviews"`
	TotalExpressions int     `json:"total_expressions" db:"total_expressions"`
	CorrectRate      float64 `json:"correct_rate" db:"correct_rate"` // sum(quality) / (count * 5), in [0, 1]
}
