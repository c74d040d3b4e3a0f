package repository

import (
	"sync"

	"go-photo-insight/pkg/models"
)

// MemoryRecordRepository keeps all records in process memory; nothing
// survives a restart, which is the intended lifetime of an analysis session
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*models.ImageRecord
	order   []string
}

// NewMemoryRecordRepository creates an empty in-memory record store
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{
		records: make(map[string]*models.ImageRecord),
	}
}

var _ RecordRepository = (*MemoryRecordRepository)(nil)

// Insert registers a new record
func (r *MemoryRecordRepository) Insert(record *models.ImageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.ID]; !exists {
		r.order = append(r.order, record.ID)
	}
	r.records[record.ID] = record.Clone()
}

// Get returns a snapshot of one record
func (r *MemoryRecordRepository) Get(id string) (*models.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return record.Clone(), nil
}

// List returns snapshots of every record in insertion order
func (r *MemoryRecordRepository) List() []*models.ImageRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.ImageRecord, 0, len(r.order))
	for _, id := range r.order {
		if record, ok := r.records[id]; ok {
			out = append(out, record.Clone())
		}
	}
	return out
}

// SetStatus moves a record to the given status
func (r *MemoryRecordRepository) SetStatus(id string, status models.RecordStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	record.Status = status
	if status == models.StatusAnalyzing {
		record.Error = ""
	}
	return nil
}

// AttachAnalysis stores a completed analysis and bumps the generation
func (r *MemoryRecordRepository) AttachAnalysis(id string, analysis *models.ImageAnalysis) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return 0, ErrRecordNotFound
	}
	record.Analysis = analysis.Clone()
	record.Status = models.StatusCompleted
	record.Error = ""
	record.Generation++
	return record.Generation, nil
}

// SetError moves a record to the error state with a message
func (r *MemoryRecordRepository) SetError(id string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	record.Status = models.StatusError
	record.Error = message
	return nil
}

// MergeMetadata performs the checked-and-conditional enrichment write. The
// target state is re-validated here, at write time, never at call time.
func (r *MemoryRecordRepository) MergeMetadata(id string, generation uint64, partial *models.Metadata) error {
	if partial.IsEmpty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if record.Analysis == nil || record.Status != models.StatusCompleted {
		return ErrNoAnalysis
	}
	if record.Generation != generation {
		return ErrStaleAnalysis
	}

	if record.Analysis.Metadata == nil {
		record.Analysis.Metadata = &models.Metadata{}
	}
	mergeMetadata(record.Analysis.Metadata, partial)
	return nil
}

// Clear removes every record
func (r *MemoryRecordRepository) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := len(r.records)
	r.records = make(map[string]*models.ImageRecord)
	r.order = nil
	return dropped
}

// mergeMetadata copies fields from the partial into the destination without
// ever overwriting a field that is already present. Re-applying the same
// partial is therefore a no-op.
func mergeMetadata(dst, src *models.Metadata) {
	if dst.CameraMake == nil && src.CameraMake != nil {
		v := *src.CameraMake
		dst.CameraMake = &v
	}
	if dst.CameraModel == nil && src.CameraModel != nil {
		v := *src.CameraModel
		dst.CameraModel = &v
	}
	if dst.TakenAt == nil && src.TakenAt != nil {
		v := *src.TakenAt
		dst.TakenAt = &v
	}
	if dst.ISO == nil && src.ISO != nil {
		v := *src.ISO
		dst.ISO = &v
	}
	if dst.ExposureTime == nil && src.ExposureTime != nil {
		v := *src.ExposureTime
		dst.ExposureTime = &v
	}
	if dst.FNumber == nil && src.FNumber != nil {
		v := *src.FNumber
		dst.FNumber = &v
	}
	if dst.Latitude == nil && src.Latitude != nil {
		v := *src.Latitude
		dst.Latitude = &v
	}
	if dst.Longitude == nil && src.Longitude != nil {
		v := *src.Longitude
		dst.Longitude = &v
	}
}
