package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenerateOutline requests an outline for a prompt.
func (c *Client) GenerateOutline(ctx context.Context, req OutlineRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", validation(ErrMissingPrompt)
	}
	var out outlineResponse
	if err := c.doJSON(ctx, http.MethodPost, PathOutline, req, &out, MsgRequestFailed); err != nil {
		return "", err
	}
	return out.Outline, nil
}

// RegenerateOutline requests a new outline that takes feedback into account.
func (c *Client) RegenerateOutline(ctx context.Context, req OutlineFeedbackRequest) (string, error) {
	if err := validation(
		requireText(req.Prompt, ErrMissingPrompt),
		requireText(req.Feedback, ErrMissingFeedback),
	); err != nil {
		return "", err
	}
	var out outlineResponse
	if err := c.doJSON(ctx, http.MethodPost, PathOutlineFeedback, req, &out, MsgRequestFailed); err != nil {
		return "", err
	}
	return out.Outline, nil
}

// GenerateChapters requests chapter drafts for an outline, in outline order.
func (c *Client) GenerateChapters(ctx context.Context, req ChaptersRequest) ([]string, error) {
	if strings.TrimSpace(req.Outline) == "" {
		return nil, validation(ErrMissingOutline)
	}
	var out chaptersResponse
	if err := c.doJSON(ctx, http.MethodPost, PathChapters, req, &out, MsgRequestFailed); err != nil {
		return nil, err
	}
	return out.Chapters, nil
}

// VoicePreview returns the audio bytes of a short narration sample.
func (c *Client) VoicePreview(ctx context.Context, req VoicePreviewRequest) ([]byte, error) {
	if err := validation(
		requireText(req.Text, ErrMissingText),
		positive(req.Speed),
	); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, PathVoicePreview, req, MsgPreviewFailed)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read preview audio: %w", err)
	}
	return audio, nil
}

func requireText(s string, problem error) error {
	if strings.TrimSpace(s) == "" {
		return problem
	}
	return nil
}

func positive(speed float64) error {
	if speed <= 0 {
		return ErrInvalidSpeed
	}
	return nil
}
