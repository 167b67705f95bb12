package resumes

import (
	"time"

	"jobtracker-backend/internal/analysis"
)

// Resume is an uploaded file owned by one user together with its latest analysis.
type Resume struct {
	ID           string                   `json:"_id"`
	UserID       string                   `json:"user"`
	FileName     string                   `json:"filename"`
	OriginalName string                   `json:"originalName"`
	FilePath     string                   `json:"filePath"`
	FileSize     int64                    `json:"fileSize"`
	MimeType     string                   `json:"mimeType"`
	Analysis     *analysis.ResumeAnalysis `json:"analysis"`
	UploadedAt   time.Time                `json:"uploadedAt"`
}

// Upload carries a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
}
