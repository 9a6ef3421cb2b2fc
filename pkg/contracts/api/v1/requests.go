// Package api contains API contract definitions for the festival
// dashboard. Version v1 represents the current stable API version.
package api

// Common request parameters

// PaginationRequest represents common pagination parameters
type PaginationRequest struct {
	Page    int `json:"page" query:"page" validate:"omitempty,min=1"`
	PerPage int `json:"per_page" query:"per_page" validate:"omitempty,min=1,max=500"`
}

// FilterRequest represents festival and sentiment filter parameters.
// Empty slices mean no restriction on that dimension.
type FilterRequest struct {
	Festivals  []string `json:"festivals" query:"festival" validate:"omitempty,dive,min=1"`
	Sentiments []string `json:"sentiments" query:"sentiment" validate:"omitempty,dive,min=1"`
}

// ChartRequest represents chart spec parameters
type ChartRequest struct {
	FilterRequest
	TopN int `json:"top_n" query:"top_n" validate:"omitempty,min=1,max=50"`
}

// RowsRequest represents a request for a page of dataset rows
type RowsRequest struct {
	FilterRequest
	PaginationRequest
}

// DatasetUploadRequest represents a workbook upload. The workbook
// itself arrives as a multipart file part named "file".
type DatasetUploadRequest struct {
	Filename string `json:"filename" validate:"required,min=1,max=255"`
}
