package models

// FacePosition classifies where a face sits horizontally in the frame
type FacePosition string

const (
	PositionLeft   FacePosition = "left"
	PositionCenter FacePosition = "center"
	PositionRight  FacePosition = "right"
)

// Emotion labels form a closed set; adapters must map provider output onto it
const (
	EmotionNeutral   = "neutral"
	EmotionHappy     = "happy"
	EmotionSad       = "sad"
	EmotionAngry     = "angry"
	EmotionFearful   = "fearful"
	EmotionDisgusted = "disgusted"
	EmotionSurprised = "surprised"
)

// BoundingBox is a face or object rectangle in the coordinate space of the
// normalized (resized) image surface
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center of the box
func (b BoundingBox) CenterX() float64 {
	return b.X + b.Width/2
}

// FaceDetail describes one detected face after normalization
type FaceDetail struct {
	Age               int          `json:"age"`
	Gender            string       `json:"gender"`
	GenderProbability float64      `json:"gender_probability"`
	Emotion           string       `json:"emotion"`
	EmotionScore      float64      `json:"emotion_score"`
	Position          FacePosition `json:"position"`
	Box               BoundingBox  `json:"box"`
}

// OCRResult holds the recognized text and, when an expected text was supplied
// with the submission, similarity scores against it
type OCRResult struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedText  string  `json:"expected_text,omitempty"`
	MatchScore    float64 `json:"match_score,omitempty"`
	WER           float64 `json:"word_error_rate,omitempty"`
}

// Metadata is the embedded-metadata enrichment block. Every field is
// optional; a partial result (e.g. GPS without camera make) is valid.
// Fields are additive-only: once present on an analysis they are never
// removed by a later merge.
type Metadata struct {
	CameraMake   *string  `json:"camera_make,omitempty"`
	CameraModel  *string  `json:"camera_model,omitempty"`
	TakenAt      *int64   `json:"taken_at,omitempty"`
	ISO          *int     `json:"iso,omitempty"`
	ExposureTime *string  `json:"exposure_time,omitempty"`
	FNumber      *float64 `json:"f_number,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// IsEmpty reports whether the extractor found nothing worth merging
func (m *Metadata) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.CameraMake == nil && m.CameraModel == nil && m.TakenAt == nil &&
		m.ISO == nil && m.ExposureTime == nil && m.FNumber == nil &&
		m.Latitude == nil && m.Longitude == nil
}

// ImageAnalysis is the unified, immutable result of one analysis pass.
// Faces are always ordered by ascending box x (left-to-right reading
// order); that ordering is a contract, not an artifact.
type ImageAnalysis struct {
	Objects []string `json:"objects"`
	Scenery string   `json:"scenery"`
	// Labels is the deduplicated, title-cased union of scenery and objects
	Labels      []string     `json:"labels"`
	Description string       `json:"description"`
	Confidence  float64      `json:"confidence"`
	Colors      []string     `json:"colors"`
	Faces       []FaceDetail `json:"faces"`

	// Legacy scalar summaries derived from the face sequence, kept for
	// consumers that predate multi-face support
	AgeEstimate     string `json:"age_estimate,omitempty"`
	EmotionEstimate string `json:"emotion_estimate,omitempty"`

	OCR              *OCRResult `json:"ocr,omitempty"`
	MarkedUpImageURL string     `json:"marked_up_image_url,omitempty"`
	Metadata         *Metadata  `json:"metadata,omitempty"`
}

// Clone returns a deep copy so repository snapshots never alias live state
func (a *ImageAnalysis) Clone() *ImageAnalysis {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Objects = append([]string(nil), a.Objects...)
	cp.Labels = append([]string(nil), a.Labels...)
	cp.Colors = append([]string(nil), a.Colors...)
	cp.Faces = append([]FaceDetail(nil), a.Faces...)
	if a.OCR != nil {
		ocr := *a.OCR
		cp.OCR = &ocr
	}
	cp.Metadata = a.Metadata.Clone()
	return &cp
}

// Clone returns a deep copy of the metadata block
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	cp := Metadata{}
	if m.CameraMake != nil {
		v := *m.CameraMake
		cp.CameraMake = &v
	}
	if m.CameraModel != nil {
		v := *m.CameraModel
		cp.CameraModel = &v
	}
	if m.TakenAt != nil {
		v := *m.TakenAt
		cp.TakenAt = &v
	}
	if m.ISO != nil {
		v := *m.ISO
		cp.ISO = &v
	}
	if m.ExposureTime != nil {
		v := *m.ExposureTime
		cp.ExposureTime = &v
	}
	if m.FNumber != nil {
		v := *m.FNumber
		cp.FNumber = &v
	}
	if m.Latitude != nil {
		v := *m.Latitude
		cp.Latitude = &v
	}
	if m.Longitude != nil {
		v := *m.Longitude
		cp.Longitude = &v
	}
	return &cp
}
