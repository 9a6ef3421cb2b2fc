package api

import "time"

// SuccessResponse is the standard envelope for successful responses
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  int         `json:"count,omitempty"`
	Meta   *Meta       `json:"meta,omitempty"`
}

// Meta carries response metadata
type Meta struct {
	Empty     bool      `json:"empty"`
	Page      int       `json:"page,omitempty"`
	PerPage   int       `json:"per_page,omitempty"`
	Total     int       `json:"total,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewSuccessResponse wraps data in the standard envelope
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Status: "success",
		Data:   data,
	}
}

// DatasetUploadResponse describes a freshly loaded dataset
type DatasetUploadResponse struct {
	Source           string    `json:"source"`
	Posts            int       `json:"posts"`
	SyntheticColumns []string  `json:"synthetic_columns,omitempty"`
	LoadedAt         time.Time `json:"loaded_at"`
}
