// Package profiles manages a directory of imported IES profiles, with an
// optional sqlite catalog summarizing each one.
package profiles

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/df07/go-ies-processor/pkg/fsutil"
	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/rs/zerolog"
)

// Library is a flat directory of .ies files. Names are file base names.
type Library struct {
	fs        fsutil.FileSystem
	dir       string
	processor *ies.Processor
	catalog   *Catalog
	logger    zerolog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithCatalog keeps c in sync with the files in the library.
func WithCatalog(c *Catalog) Option {
	return func(l *Library) { l.catalog = c }
}

// WithLogger sets the logger for the library and its processor.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// NewLibrary creates a library stored in dir on fsys. The directory is
// created on the first import.
func NewLibrary(fsys fsutil.FileSystem, dir string, opts ...Option) *Library {
	l := &Library{
		fs:     fsys,
		dir:    dir,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.processor = ies.NewProcessorWithFS(fsys)
	l.processor.SetLogger(l.logger)
	return l
}

// Dir returns the profiles directory.
func (l *Library) Dir() string {
	return l.dir
}

// Catalog returns the attached catalog, or nil.
func (l *Library) Catalog() *Catalog {
	return l.catalog
}

// Path maps a profile name to its file path. Names must be plain file
// names; anything that could escape the directory is rejected.
func (l *Library) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProfileName, name)
	}
	return filepath.Join(l.dir, name), nil
}

// Import copies the IES file at src into the library under its base name.
// The file must parse; an existing profile is only replaced when overwrite
// is set, otherwise ErrProfileExists is returned.
func (l *Library) Import(src string, overwrite bool) (Entry, error) {
	if _, err := l.processor.Parse(src); err != nil {
		return Entry{}, err
	}
	data, err := l.fs.ReadFile(src)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s: %w", src, err)
	}
	return l.ImportData(filepath.Base(src), data, overwrite)
}

// ImportData stores data as profile name, with the same rules as Import.
func (l *Library) ImportData(name string, data []byte, overwrite bool) (Entry, error) {
	dest, err := l.Path(name)
	if err != nil {
		return Entry{}, err
	}
	if !ies.IsIESFile(name) {
		return Entry{}, &ies.Error{Code: ies.NotIESFile, Op: "import", Path: name}
	}

	rec, err := ies.Decode(bytes.NewReader(data))
	if err != nil {
		var ierr *ies.Error
		if errors.As(err, &ierr) && ierr.Path == "" {
			ierr.Path = name
		}
		return Entry{}, err
	}

	existed := l.fs.Exists(dest)
	if existed && !overwrite {
		return Entry{}, fmt.Errorf("%w: %s", ErrProfileExists, name)
	}
	var previous []byte
	if existed {
		if previous, err = l.fs.ReadFile(dest); err != nil {
			return Entry{}, fmt.Errorf("failed to read profile %s: %w", name, err)
		}
	}
	if err := l.fs.MkdirAll(l.dir, 0755); err != nil {
		return Entry{}, fmt.Errorf("failed to create profiles directory: %w", err)
	}
	if err := l.fs.WriteFile(dest, data, 0644); err != nil {
		return Entry{}, fmt.Errorf("failed to write profile %s: %w", name, err)
	}

	entry := NewEntry(name, rec)
	if l.catalog != nil {
		if err := l.catalog.Upsert(entry); err != nil {
			l.rollback(dest, previous, existed)
			return Entry{}, err
		}
		// Re-imports keep the original catalog ID.
		if stored, err := l.catalog.Get(name); err == nil {
			entry = stored
		}
	}

	l.logger.Info().
		Str("name", name).
		Str("symmetry", string(entry.Symmetry)).
		Bool("overwrite", overwrite).
		Msg("imported IES profile")
	return entry, nil
}

// rollback restores dest to its state before a failed import.
func (l *Library) rollback(dest string, previous []byte, existed bool) {
	var err error
	if existed {
		err = l.fs.WriteFile(dest, previous, 0644)
	} else {
		err = l.fs.Remove(dest)
	}
	if err != nil {
		l.logger.Error().Err(err).Str("path", dest).Msg("failed to roll back profile import")
	}
}

// List returns the sorted names of the .ies files in the library. A missing
// directory is an empty library.
func (l *Library) List() ([]string, error) {
	entries, err := l.fs.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && ies.IsIESFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Load parses profile name.
func (l *Library) Load(name string) (*ies.Record, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	if !l.fs.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return l.processor.Parse(path)
}

// Describe returns the summary of profile name, from the catalog when it
// has one and from the file otherwise.
func (l *Library) Describe(name string) (Entry, error) {
	if l.catalog != nil {
		entry, err := l.catalog.Get(name)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrProfileNotFound) {
			return Entry{}, err
		}
	}
	rec, err := l.Load(name)
	if err != nil {
		return Entry{}, err
	}
	return NewEntry(name, rec), nil
}

// Remove deletes profile name and its catalog entry.
func (l *Library) Remove(name string) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}
	if !l.fs.Exists(path) {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err := l.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove profile %s: %w", name, err)
	}
	if l.catalog != nil {
		if err := l.catalog.Delete(name); err != nil && !errors.Is(err, ErrProfileNotFound) {
			return err
		}
	}
	l.logger.Info().Str("name", name).Msg("removed IES profile")
	return nil
}
