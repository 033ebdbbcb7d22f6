package jobstate

import (
	"strings"

	"bookfoundry/internal/model"
)

// ResolveResult maps a completed job's raw payload into a RenderResult.
// Folder and files are copied verbatim; a missing or blank download
// reference becomes nil.
func ResolveResult(p model.ResultPayload) model.RenderResult {
	res := model.RenderResult{
		Folder:     p.Folder,
		AudioFiles: append([]string{}, p.AudioFiles...),
	}
	if p.DownloadURL != nil && strings.TrimSpace(*p.DownloadURL) != "" {
		res.DownloadURL = model.String(*p.DownloadURL)
	}
	return res
}
