package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bookfoundry/internal/util"
)

// DownloadURL turns a result's download reference into a retrievable URL.
// Relative references are joined onto the service base URL.
func (c *Client) DownloadURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return util.JoinURL(c.baseURL, ref)
}

// DownloadArchive streams the packaged archive behind ref into w and
// returns the number of bytes written.
func (c *Client) DownloadArchive(ctx context.Context, ref string, w io.Writer) (int64, error) {
	if strings.TrimSpace(ref) == "" {
		return 0, fmt.Errorf("empty download reference")
	}
	resp, err := c.doRaw(ctx, ref)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("write archive: %w", err)
	}
	return n, nil
}

// doRaw fetches either a service-relative path or an absolute URL.
func (c *Client) doRaw(ctx context.Context, ref string) (*http.Response, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return c.do(ctx, http.MethodGet, ref, nil, MsgDownload)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Endpoint: ref, Message: MsgDownload, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &APIError{Endpoint: ref, StatusCode: resp.StatusCode, Message: MsgDownload}
	}
	return resp, nil
}
