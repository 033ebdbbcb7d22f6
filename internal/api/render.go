package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"bookfoundry/internal/model"
)

// ValidateRenderRequest checks the submission preconditions.
func ValidateRenderRequest(req model.RenderRequest) error {
	var problems []error
	if strings.TrimSpace(req.Outline) == "" {
		problems = append(problems, ErrMissingOutline)
	}
	if len(req.Chapters) == 0 {
		problems = append(problems, ErrMissingChapters)
	}
	if req.Speed < 0 {
		problems = append(problems, ErrInvalidSpeed)
	}
	return validation(problems...)
}

// StartRender submits an audiobook render job. Each successful call creates
// a new job on the service; callers must not retry blindly.
func (c *Client) StartRender(ctx context.Context, req model.RenderRequest) (model.JobHandle, error) {
	if err := ValidateRenderRequest(req); err != nil {
		return model.JobHandle{}, err
	}
	speed := req.Speed
	if speed == 0 {
		speed = model.DefaultSpeed
	}
	body := RenderJobRequest{
		Title:          req.Title,
		Outline:        req.Outline,
		Chapters:       append([]string(nil), req.Chapters...),
		Voice:          req.Voice,
		Speed:          speed,
		IncludeOutline: req.IncludeOutline,
		Instructions:   req.Instructions,
	}
	var out RenderJobResponse
	if err := c.doJSON(ctx, http.MethodPost, PathRenderJobs, body, &out, MsgRenderFailed); err != nil {
		return model.JobHandle{}, err
	}
	if out.JobID == "" {
		return model.JobHandle{}, &APIError{Endpoint: PathRenderJobs, StatusCode: http.StatusOK, Message: MsgRenderFailed + ": response carried no job id"}
	}
	c.log.Info("render job submitted", "job_id", out.JobID, "total_chapters", out.TotalChapters)
	return model.JobHandle{JobID: out.JobID, TotalChapters: max(out.TotalChapters, 0)}, nil
}

// RenderStatus fetches one status snapshot for a job.
func (c *Client) RenderStatus(ctx context.Context, jobID string) (model.JobStatus, error) {
	if jobID == "" {
		return model.JobStatus{}, validation(ErrMissingJobID)
	}
	var st model.JobStatus
	path := PathRenderJobs + "/" + url.PathEscape(jobID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &st, MsgRequestFailed); err != nil {
		return model.JobStatus{}, err
	}
	return st, nil
}
