package model

// StatusValue is the lifecycle state reported by the render service for a job.
type StatusValue string

const (
	StatusPending   StatusValue = "pending"
	StatusRunning   StatusValue = "running"
	StatusCompleted StatusValue = "completed"
	StatusError     StatusValue = "error"
)

// Terminal reports whether no further polling should happen after this status.
func (s StatusValue) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// RenderRequest describes one audiobook render submission.
type RenderRequest struct {
	Title          string
	Outline        string
	Chapters       []string
	Voice          string
	Speed          float64 // Practical range ~0.7..1.3.
	IncludeOutline bool
	Instructions   string // Optional narration-style instructions.
}

// JobHandle identifies a submitted render job.
type JobHandle struct {
	JobID         string
	TotalChapters int // Chapter count known at submission time.
}

// ResultPayload is the raw result attached to a completed status.
type ResultPayload struct {
	Folder      string   `json:"folder"`
	AudioFiles  []string `json:"audio_files"`
	DownloadURL *string  `json:"download_url,omitempty"`
}

// JobStatus is one polled snapshot of a render job.
type JobStatus struct {
	Status            StatusValue    `json:"status"`
	Progress          float64        `json:"progress"` // Unit-based estimate, 0..100.
	CompletedChapters int            `json:"completed_chapters"`
	TotalChapters     int            `json:"total_chapters"`
	ElapsedSeconds    *float64       `json:"elapsed_seconds,omitempty"`
	EstimatedSeconds  *float64       `json:"estimated_seconds,omitempty"`
	Result            *ResultPayload `json:"result,omitempty"`
	Error             *string        `json:"error,omitempty"`
}

// RenderResult is the displayable summary of a finished render.
// DownloadURL is nil when the service produced no archive.
type RenderResult struct {
	Folder      string   `json:"folder"`
	AudioFiles  []string `json:"audioFiles"`
	DownloadURL *string  `json:"downloadUrl"`
}

// Downloadable reports whether an archive reference is available.
func (r RenderResult) Downloadable() bool {
	return r.DownloadURL != nil
}

// DisplayState is the UI-facing view of the active render job.
type DisplayState struct {
	IsGenerating      bool          `json:"isGenerating"`
	ProgressPercent   int           `json:"progressPercent"`
	CompletedChapters int           `json:"completedChapters"`
	TotalChapters     int           `json:"totalChapters"`
	ElapsedSeconds    *float64      `json:"elapsedSeconds"`
	EstimatedSeconds  *float64      `json:"estimatedSeconds"`
	Result            *RenderResult `json:"result"`
	Error             *string       `json:"error"`
}

// Float returns a pointer to v. Handy for optional timing fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
