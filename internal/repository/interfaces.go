package repository

import "go-photo-insight/pkg/models"

// RecordRepository is the keyed store for image records. All reads return
// deep-copied snapshots; live records never escape the store, so the
// lifecycle controller stays the only writer.
type RecordRepository interface {
	// Insert registers a new record
	Insert(record *models.ImageRecord)

	// Get returns a snapshot of one record
	Get(id string) (*models.ImageRecord, error)

	// List returns snapshots of every record in insertion order
	List() []*models.ImageRecord

	// SetStatus moves a record to the given status; entering the analyzing
	// state clears any prior error message
	SetStatus(id string, status models.RecordStatus) error

	// AttachAnalysis stores a completed analysis, bumps the analysis
	// generation and returns the new generation
	AttachAnalysis(id string, analysis *models.ImageAnalysis) (uint64, error)

	// SetError moves a record to the error state with a message
	SetError(id string, message string) error

	// MergeMetadata merges an enrichment partial into the record's current
	// analysis, but only when the record still exists, still carries an
	// analysis and that analysis is still the given generation. The merge
	// is shallow and additive: present fields are never overwritten or
	// removed.
	MergeMetadata(id string, generation uint64, partial *models.Metadata) error

	// Clear removes every record and reports how many were dropped
	Clear() int
}
