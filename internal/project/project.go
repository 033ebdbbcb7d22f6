// Package project stores a book in progress as a TOML file. All writes go
// through Update, which holds an exclusive lock for the read-modify-write.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"bookfoundry/internal/model"
	"bookfoundry/internal/util"
)

// DefaultFile is the project file used when none is given.
const DefaultFile = "book.toml"

var (
	// ErrNotFound is returned when the project file does not exist.
	ErrNotFound = errors.New("project file not found")
	// ErrExists is returned by Init when the project file already exists.
	ErrExists = errors.New("project file already exists")
)

// Load reads the project at path.
func Load(path string) (model.BookProject, error) {
	var p model.BookProject
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, fmt.Errorf("%w: %s (run 'bookfoundry init' first)", ErrNotFound, path)
		}
		return p, fmt.Errorf("read project: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("parse project %s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path atomically.
func Save(path string, p model.BookProject) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// Init creates a new project file. An existing file is only replaced when
// force is set.
func Init(path, title, prompt string, force bool) (model.BookProject, error) {
	p := model.BookProject{Title: strings.TrimSpace(title), Prompt: strings.TrimSpace(prompt)}
	if p.Title == "" {
		return p, errors.New("title is required")
	}
	return p, withLock(path, func() error {
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%w: %s", ErrExists, path)
			}
		}
		return Save(path, p)
	})
}

// Update loads the project, applies fn and saves the result while holding
// the project lock. Nothing is written when fn returns an error.
func Update(path string, fn func(*model.BookProject) error) (model.BookProject, error) {
	var out model.BookProject
	err := withLock(path, func() error {
		p, err := Load(path)
		if err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
		if err := Save(path, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func withLock(path string, fn func() error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock project: %w", err)
	}
	defer lock.Unlock()
	return fn()
}
