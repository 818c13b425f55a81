package downloads

import (
	"time"

	"github.com/hbomb79/Riptide/internal/job"
)

type (
	FileDto struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}

	// DownloadDto is the response shape used by endpoints that return
	// download records (e.g., submit, list, get).
	DownloadDto struct {
		ID          string    `json:"job_id"`
		URL         string    `json:"url"`
		Status      string    `json:"status"`
		SubmittedAt time.Time `json:"timestamp"`
		Error       string    `json:"error,omitempty"`
		Files       []FileDto `json:"files,omitempty"`
		Username    string    `json:"username,omitempty"`
	}
)

// NewDto creates a DownloadDto from a download record snapshot.
func NewDto(download job.Download) *DownloadDto {
	var fileDtos []FileDto
	for _, ref := range download.Files {
		fileDtos = append(fileDtos, FileDto{Filename: ref.Filename, Path: ref.Path})
	}

	return &DownloadDto{
		ID:          download.ID,
		URL:         download.URL,
		Status:      download.Status.String(),
		SubmittedAt: download.SubmittedAt,
		Error:       download.Error,
		Files:       fileDtos,
		Username:    download.Username,
	}
}
