package job

import (
	"fmt"
	"time"
)

type (
	Status int

	// FileRef describes a single artifact produced by a download, as a
	// pairing of the generated library filename and its absolute path.
	FileRef struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}

	// Download represents one URL submission and its terminal outcome. A
	// download is created in the Pending state and is mutated exclusively
	// through the owning Store; after creation only the adapter handling
	// it writes to its fields.
	Download struct {
		ID          string
		URL         string
		Status      Status
		SubmittedAt time.Time
		Error       string
		Files       []FileRef
		Username    string
	}
)

const (
	Pending Status = iota
	Downloading
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Downloading:
		return "downloading"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}

	return fmt.Sprintf("unknown(%d)", int(s))
}

// Terminal reports whether this status permits no further transitions.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed
}

func (d *Download) String() string {
	return fmt.Sprintf("Download{id=%s status=%s url=%s}", d.ID, d.Status, d.URL)
}
