package models

// SubmitByURLRequest asks the service to fetch and analyze remote images
type SubmitByURLRequest struct {
	URLs         []string `json:"urls" binding:"required,min=1,dive,url"`
	ExpectedText string   `json:"expected_text,omitempty"`
}

// SubmitResponse returns the freshly registered records; analysis proceeds
// asynchronously after this response is delivered
type SubmitResponse struct {
	Records []*ImageRecord `json:"records"`
}

// RecordListResponse is the snapshot list returned by GET /images
type RecordListResponse struct {
	Records []*ImageRecord `json:"records"`
	Total   int            `json:"total"`
}

// ErrorResponse is the uniform transport error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
