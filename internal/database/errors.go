package database

import "errors"

// Sentinel errors for the review store. Check with errors.Is.
var (
	// ErrNotFound is returned when reviewing an expression that was never added
	ErrNotFound = errors.New("database: expression not found")
	// ErrInvalidQuality is returned for quality ratings outside 0-5;
	// no state is mutated in that case
	ErrInvalidQuality = errors.New("database: quality rating must be between 0 and 5")
)
