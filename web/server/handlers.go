package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/df07/go-ies-processor/pkg/preview"
	"github.com/df07/go-ies-processor/pkg/profiles"
	"github.com/gofiber/fiber/v3"
	"gonum.org/v1/plot/vg"
)

// ParseResponse is returned by POST /api/parse
type ParseResponse struct {
	Record     *ies.Record  `json:"record"`
	Symmetry   ies.Symmetry `json:"symmetry"`
	Serialized string       `json:"serialized"` // data block for the renderer
	MaxCandela float64      `json:"maxCandela"`
	Flux       float64      `json:"flux"`
}

// ProfileResponse is returned by GET /api/profiles/:name
type ProfileResponse struct {
	Entry  profiles.Entry `json:"entry"`
	Record *ies.Record    `json:"record"`
}

// handleParse parses an uploaded IES file, applies the optional intensity
// scale and returns the record with its serialized form
func (s *Server) handleParse(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	if !ies.IsIESFile(fileHeader.Filename) {
		return s.sendError(c, &ies.Error{Code: ies.NotIESFile, Op: "parse", Path: fileHeader.Filename})
	}

	scale, err := parseFloatParam(c.FormValue("scale"), "scale", 1, 0, 1000)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	rec, err := ies.Decode(file)
	if err != nil {
		return s.sendError(c, err)
	}
	rec, err = ies.Update(rec, ies.UpdateRequest{IntensityScale: scale})
	if err != nil {
		return s.sendError(c, err)
	}
	serialized, err := ies.Serialize(rec)
	if err != nil {
		return s.sendError(c, err)
	}

	s.logger.Debug().
		Str("file", fileHeader.Filename).
		Float64("scale", scale).
		Str("symmetry", string(rec.Symmetry())).
		Msg("parsed upload")

	return c.JSON(ParseResponse{
		Record:     rec,
		Symmetry:   rec.Symmetry(),
		Serialized: serialized,
		MaxCandela: rec.MaxCandela(),
		Flux:       rec.Flux(),
	})
}

// handleListProfiles lists the library with a summary per profile
func (s *Server) handleListProfiles(c fiber.Ctx) error {
	names, err := s.library.List()
	if err != nil {
		return s.sendError(c, err)
	}

	entries := make([]profiles.Entry, 0, len(names))
	for _, name := range names {
		entry, err := s.library.Describe(name)
		if err != nil {
			// A broken file should not hide the rest of the library.
			s.logger.Warn().Err(err).Str("name", name).Msg("skipping unreadable profile")
			continue
		}
		entries = append(entries, entry)
	}
	return c.JSON(fiber.Map{"profiles": entries})
}

// handleImportProfile stores an uploaded IES file in the library
func (s *Server) handleImportProfile(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	overwrite, err := parseBoolParam(c.FormValue("overwrite"), "overwrite")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	entry, err := s.library.ImportData(filepath.Base(fileHeader.Filename), data, overwrite)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(entry)
}

// handleGetProfile returns the summary and full record of one profile
func (s *Server) handleGetProfile(c fiber.Ctx) error {
	name := c.Params("name")
	entry, err := s.library.Describe(name)
	if err != nil {
		return s.sendError(c, err)
	}
	rec, err := s.library.Load(name)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(ProfileResponse{Entry: entry, Record: rec})
}

// handleDeleteProfile removes a profile from the library
func (s *Server) handleDeleteProfile(c fiber.Ctx) error {
	if err := s.library.Remove(c.Params("name")); err != nil {
		return s.sendError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// handlePolarPNG renders the polar candela diagram of a profile as PNG
func (s *Server) handlePolarPNG(c fiber.Ctx) error {
	size, err := parseIntParam(c.Query("size"), "size", 400, 100, 2000)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	rec, err := s.library.Load(c.Params("name"))
	if err != nil {
		return s.sendError(c, err)
	}

	var buf bytes.Buffer
	if err := preview.WritePolarPNG(&buf, rec, vg.Length(size)); err != nil {
		return s.sendError(c, err)
	}
	c.Set("Content-Type", "image/png")
	return c.Send(buf.Bytes())
}

// handlePolarHTML renders the polar candela diagram of a profile as an
// interactive page
func (s *Server) handlePolarHTML(c fiber.Ctx) error {
	name := c.Params("name")
	rec, err := s.library.Load(name)
	if err != nil {
		return s.sendError(c, err)
	}

	var buf bytes.Buffer
	if err := preview.WritePolarHTML(&buf, rec, name); err != nil {
		return s.sendError(c, err)
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// sendError writes err as JSON with the status it maps to
func (s *Server) sendError(c fiber.Ctx, err error) error {
	status := statusFor(err)
	body := fiber.Map{"error": err.Error()}

	var ierr *ies.Error
	if errors.As(err, &ierr) {
		body["code"] = ierr.Code.String()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(body)
}

// statusFor maps library and IES errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, profiles.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, profiles.ErrProfileExists):
		return http.StatusConflict
	case errors.Is(err, profiles.ErrInvalidProfileName):
		return http.StatusBadRequest
	case errors.Is(err, preview.ErrUnsupportedRecord):
		return http.StatusUnprocessableEntity
	}

	var ierr *ies.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code {
	case ies.NoFile:
		return http.StatusBadRequest
	case ies.NotIESFile:
		return http.StatusUnsupportedMediaType
	case ies.InvalidDataInIESFile, ies.ParseFailed, ies.UnexpectedEndOfFile:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
