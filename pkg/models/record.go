package models

// RecordStatus is the lifecycle state of one submitted image
type RecordStatus string

const (
	StatusPending   RecordStatus = "pending"
	StatusAnalyzing RecordStatus = "analyzing"
	StatusCompleted RecordStatus = "completed"
	StatusError     RecordStatus = "error"
)

// ImageRecord is one user-submitted image. The record lifecycle controller
// is the only writer of Status, Analysis and Error; everyone else reads
// snapshots produced by the repository.
type ImageRecord struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	MimeType string       `json:"mime_type"`
	Status   RecordStatus `json:"status"`

	Analysis *ImageAnalysis `json:"analysis,omitempty"`
	Error    string         `json:"error,omitempty"`

	// Generation increments every time a new analysis is attached. A
	// background enrichment captures the generation it targets and the
	// merge is refused when the record has since moved on.
	Generation uint64 `json:"-"`
}

// Clone returns a deep copy of the record
func (r *ImageRecord) Clone() *ImageRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Analysis = r.Analysis.Clone()
	return &cp
}
