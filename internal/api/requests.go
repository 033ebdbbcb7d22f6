package api

// OutlineRequest asks the service for a book outline.
type OutlineRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// OutlineFeedbackRequest regenerates an outline with free-text feedback.
type OutlineFeedbackRequest struct {
	Title    string `json:"title"`
	Prompt   string `json:"prompt"`
	Feedback string `json:"feedback"`
}

// ChaptersRequest asks for chapter drafts for an outline.
type ChaptersRequest struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
}

// VoicePreviewRequest asks for a short narration sample.
type VoicePreviewRequest struct {
	Voice        string  `json:"voice"`
	Speed        float64 `json:"speed"`
	Instructions string  `json:"instructions,omitempty"`
	Text         string  `json:"text"`
}

type outlineResponse struct {
	Outline string `json:"outline"`
}

type chaptersResponse struct {
	Chapters []string `json:"chapters"`
}

// RenderJobRequest is the wire form of model.RenderRequest.
type RenderJobRequest struct {
	Title          string   `json:"title"`
	Outline        string   `json:"outline"`
	Chapters       []string `json:"chapters"`
	Voice          string   `json:"voice"`
	Speed          float64  `json:"speed"`
	IncludeOutline bool     `json:"include_outline"`
	Instructions   string   `json:"instructions,omitempty"`
}

// RenderJobResponse is returned when a render job is accepted.
type RenderJobResponse struct {
	JobID         string `json:"job_id"`
	TotalChapters int    `json:"total_chapters"`
}

type errorBody struct {
	Detail any `json:"detail"`
}

type healthResponse struct {
	Status string `json:"status"`
}
