package repository

import "errors"

var (
	// ErrRecordNotFound indicates the record id is not (or no longer) tracked
	ErrRecordNotFound = errors.New("image record not found")

	// ErrStaleAnalysis indicates a conditional merge targeted an analysis
	// generation that has since been replaced or cleared
	ErrStaleAnalysis = errors.New("analysis generation is stale")

	// ErrNoAnalysis indicates the record has no analysis to merge into
	ErrNoAnalysis = errors.New("record has no analysis")
)
