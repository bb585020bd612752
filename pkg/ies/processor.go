package ies

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/df07/go-ies-processor/pkg/fsutil"
	"github.com/rs/zerolog"
)

// Processor loads IES files through a FileSystem. It holds no per-file
// state; one Processor can serve any number of parses
type Processor struct {
	fs     fsutil.FileSystem
	logger zerolog.Logger
}

// NewProcessor creates a processor reading from the OS filesystem
func NewProcessor() *Processor {
	return NewProcessorWithFS(fsutil.OSFileSystem{})
}

// NewProcessorWithFS creates a processor reading through fsys
func NewProcessorWithFS(fsys fsutil.FileSystem) *Processor {
	return &Processor{fs: fsys, logger: zerolog.Nop()}
}

// SetLogger sets the logger used for debug output
func (p *Processor) SetLogger(logger zerolog.Logger) {
	p.logger = logger
}

// IsIESFile reports whether path has the .ies extension (any case)
func IsIESFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ies")
}

// Parse loads the IES file at path into a new Record
func (p *Processor) Parse(path string) (*Record, error) {
	rec := &Record{}
	if err := p.ParseInto(path, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseInto loads the IES file at path into out. The extension is checked
// before any I/O, and out is left untouched unless the whole file parses
func (p *Processor) ParseInto(path string, out *Record) error {
	if path == "" {
		return newError(NoFile, "parse", path, nil)
	}
	if !IsIESFile(path) {
		return newError(NotIESFile, "parse", path, nil)
	}

	file, err := p.fs.Open(path)
	if err != nil {
		return newError(FailedToReadFile, "parse", path, err)
	}
	defer file.Close()

	tokens, err := Tokenize(file)
	if err != nil {
		return withPath(err, path)
	}
	if err := ParseTokens(tokens, out); err != nil {
		return withPath(err, path)
	}

	p.logger.Debug().
		Str("path", path).
		Int("vertical", out.VerticalAngleCount).
		Int("horizontal", out.HorizontalAngleCount).
		Str("symmetry", string(out.Symmetry())).
		Msg("parsed IES file")
	return nil
}

// Update applies req to a copy of rec. See Update
func (p *Processor) Update(rec *Record, req UpdateRequest) (*Record, error) {
	return Update(rec, req)
}

// ToString serializes rec for the renderer. See Serialize
func (p *Processor) ToString(rec *Record) (string, error) {
	return Serialize(rec)
}

func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
