package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bookfoundry/internal/model"
)

func TestInitLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.toml")

	p, err := Init(path, "  The Lost Lighthouse ", "a keeper and a storm", false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.Title != "The Lost Lighthouse" {
		t.Errorf("title = %q", p.Title)
	}
	if _, err := Init(path, "Other", "", false); !errors.Is(err, ErrExists) {
		t.Errorf("second Init err = %v, want ErrExists", err)
	}
	if _, err := Init(path, "Other", "", true); err != nil {
		t.Errorf("forced Init: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != "Other" || got.Voice != nil {
		t.Errorf("loaded %+v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.toml")
	if err := os.WriteFile(path, []byte("title = \"x\"\ncolour = \"red\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.toml")
	if _, err := Init(path, "Book", "prompt", false); err != nil {
		t.Fatal(err)
	}

	p, err := Update(path, func(p *model.BookProject) error {
		p.Outline = "1. Start"
		p.Chapters = []string{"Once upon a time."}
		p.Voice = &model.VoiceSettings{Voice: "nova", Speed: 1.25}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Outline != "1. Start" {
		t.Errorf("returned %+v", p)
	}

	got, _ := Load(path)
	if len(got.Chapters) != 1 || got.Voice == nil || got.Voice.Voice != "nova" || got.Voice.Speed != 1.25 {
		t.Errorf("persisted %+v", got)
	}

	boom := errors.New("boom")
	if _, err := Update(path, func(p *model.BookProject) error {
		p.Outline = "changed"
		return boom
	}); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	got, _ = Load(path)
	if got.Outline != "1. Start" {
		t.Errorf("failed update was written: %q", got.Outline)
	}
}

func TestUpdateConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.toml")
	if _, err := Init(path, "Book", "", false); err != nil {
		t.Fatal(err)
	}

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update(path, func(p *model.BookProject) error {
				p.Chapters = append(p.Chapters, "ch")
				return nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := Load(path)
	if len(got.Chapters) != n {
		t.Errorf("chapters = %d, want %d", len(got.Chapters), n)
	}
}

func TestMarkdown(t *testing.T) {
	p := model.BookProject{Title: "Tides", Outline: "1. Low\n2. High", Chapters: []string{"Ebb.", "Flow."}}
	want := "# Tides\n\n## Outline\n\n1. Low\n2. High\n\n## Chapters\n\n### Chapter 1\n\nEbb.\n\n### Chapter 2\n\nFlow.\n\n"
	if got := Markdown(p); got != want {
		t.Errorf("Markdown() =\n%q\nwant\n%q", got, want)
	}
	if got := ChapterMarkdown(3, "x"); got != "# Chapter 3\n\nx" {
		t.Errorf("ChapterMarkdown = %q", got)
	}
	if got := OutlineMarkdown("Tides", "o"); !strings.HasPrefix(got, "# Tides - Outline") {
		t.Errorf("OutlineMarkdown = %q", got)
	}
	if got := BaseName(" The Lost Lighthouse "); got != "the_lost_lighthouse" {
		t.Errorf("BaseName = %q", got)
	}
}
