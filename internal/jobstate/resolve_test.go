package jobstate

import (
	"encoding/json"
	"testing"

	"bookfoundry/internal/model"
)

func TestResolveResult(t *testing.T) {
	tests := []struct {
		name     string
		in       model.ResultPayload
		wantURL  *string
		wantJSON string
	}{
		{
			name:     "absent download reference",
			in:       model.ResultPayload{Folder: "out/book1", AudioFiles: []string{"ch1.mp3", "ch2.mp3"}},
			wantJSON: `{"folder":"out/book1","audioFiles":["ch1.mp3","ch2.mp3"],"downloadUrl":null}`,
		},
		{
			name:     "blank download reference",
			in:       model.ResultPayload{Folder: "f", AudioFiles: []string{}, DownloadURL: model.String("")},
			wantJSON: `{"folder":"f","audioFiles":[],"downloadUrl":null}`,
		},
		{
			name:     "present download reference",
			in:       model.ResultPayload{Folder: "f", AudioFiles: []string{"a.mp3"}, DownloadURL: model.String("/downloads/f.zip")},
			wantURL:  model.String("/downloads/f.zip"),
			wantJSON: `{"folder":"f","audioFiles":["a.mp3"],"downloadUrl":"/downloads/f.zip"}`,
		},
		{
			name:     "nil file list becomes empty",
			in:       model.ResultPayload{Folder: "f"},
			wantJSON: `{"folder":"f","audioFiles":[],"downloadUrl":null}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveResult(tt.in)
			if (got.DownloadURL == nil) != (tt.wantURL == nil) {
				t.Fatalf("DownloadURL = %v, want %v", got.DownloadURL, tt.wantURL)
			}
			if tt.wantURL != nil && *got.DownloadURL != *tt.wantURL {
				t.Errorf("DownloadURL = %q, want %q", *got.DownloadURL, *tt.wantURL)
			}
			if got.Downloadable() != (tt.wantURL != nil) {
				t.Errorf("Downloadable() = %v", got.Downloadable())
			}
			b, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tt.wantJSON {
				t.Errorf("json = %s, want %s", b, tt.wantJSON)
			}
		})
	}
}
