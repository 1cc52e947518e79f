package domain

// UploadMode selects how a dropped file set is routed to the backend.
type UploadMode string

const (
	UploadModeSingle   UploadMode = "single"
	UploadModeMultiple UploadMode = "multiple"
	UploadModeZip      UploadMode = "zip"
	UploadModeManual   UploadMode = "manual"
)

// UploadResult is the union of the three success payload shapes the upload
// endpoints return. The active variant is determined by field presence in
// the response body, never by the mode that triggered the request: a ZIP
// routed through single mode still comes back as a FolderResult.
type UploadResult interface {
	// UploadMessage returns the backend's human-readable status line.
	UploadMessage() string
}

// SingleFileResult is returned by the single-file upload endpoint.
type SingleFileResult struct {
	Message            string `json:"message"`
	Filename           string `json:"filename"`
	DocumentsProcessed int    `json:"documents_processed"`
}

func (r *SingleFileResult) UploadMessage() string { return r.Message }

// FileProcessingResult is the per-file breakdown inside a FolderResult.
type FileProcessingResult struct {
	Filename           string `json:"filename"`
	Success            bool   `json:"success"`
	DocumentsProcessed int    `json:"documents_processed"`
	ErrorMessage       string `json:"error_message,omitempty"`
	FileType           string `json:"file_type"`
}

// FolderResult is returned by the folder and ZIP upload endpoints.
type FolderResult struct {
	Message                 string                 `json:"message"`
	TotalFilesProcessed     int                    `json:"total_files_processed"`
	SuccessfulFiles         int                    `json:"successful_files"`
	FailedFiles             int                    `json:"failed_files"`
	TotalDocumentsProcessed int                    `json:"total_documents_processed"`
	FileResults             []FileProcessingResult `json:"file_results"`
	ProcessingSummary       map[string]int         `json:"processing_summary,omitempty"`
}

func (r *FolderResult) UploadMessage() string { return r.Message }

// ManualPdfResult is returned by the manual PDF extraction endpoint.
type ManualPdfResult struct {
	Message               string  `json:"message"`
	Filename              string  `json:"filename"`
	FileSizeBytes         int64   `json:"file_size_bytes"`
	PageCount             int     `json:"page_count"`
	TextLength            int     `json:"text_length"`
	DocumentsProcessed    int     `json:"documents_processed"`
	ExtractionMethod      string  `json:"extraction_method"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

func (r *ManualPdfResult) UploadMessage() string { return r.Message }
