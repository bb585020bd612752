package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-ies-processor/pkg/config"
	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/df07/go-ies-processor/pkg/profiles"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lampIES = "IESNA:LM-63-2002\n" +
	"[TEST] cli\n" +
	"TILT=NONE\n" +
	"1 1000 1 2 1 1 2 0 0 0\n" +
	"1 1 0\n" +
	"0 90\n" +
	"0\n" +
	"100 80\n"

func writeLamp(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(lampIES), 0644))
	return path
}

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{LogLevel: "info"}
	opts, _, err := parseFlags(args, cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(opts, &out, zerolog.Nop())
	return out.String(), err
}

func TestRunPrint(t *testing.T) {
	path := writeLamp(t, t.TempDir(), "lamp.ies")

	tests := []struct {
		name     string
		args     []string
		wantTail string
	}{
		{"unscaled", []string{"-file", path, "-print"}, "100 80\n"},
		{"scaled", []string{"-file", path, "-print", "-scale", "2"}, "200 160\n"},
		{"half", []string{"-file", path, "-print", "-scale", "0.5"}, "50 40\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runArgs(t, tt.args...)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "lamp.ies: type C, 2 vertical x 1 horizontal angles, axial symmetry"), out)
			assert.True(t, strings.HasSuffix(out, tt.wantTail), out)
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "lamp.txt")
	require.NoError(t, os.WriteFile(txt, []byte(lampIES), 0644))

	tests := []struct {
		name string
		args []string
		want ies.ErrorCode
	}{
		{"no file", []string{}, ies.NoFile},
		{"wrong extension", []string{"-file", txt}, ies.NotIESFile},
		{"missing", []string{"-file", filepath.Join(dir, "none.ies")}, ies.FailedToReadFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runArgs(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("run() error = %v, want %v", err, tt.want)
			}
			assert.Equal(t, tt.want.String(), errorKind(err))
		})
	}

	assert.Equal(t, "error", errorKind(profiles.ErrProfileExists))
}

func TestRunExportAndPreview(t *testing.T) {
	dir := t.TempDir()
	path := writeLamp(t, dir, "lamp.ies")
	exported := filepath.Join(dir, "bright.ies")
	png := filepath.Join(dir, "lamp.png")
	html := filepath.Join(dir, "lamp.html")

	_, err := runArgs(t, "-file", path, "-scale", "3", "-export", exported, "-preview", png)
	require.NoError(t, err)

	rec, err := ies.NewProcessor().Parse(exported)
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 240}, rec.CandelaValues)
	assert.Contains(t, rec.ExtraHeaderText, "[TEST] cli")

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = runArgs(t, "-file", path, "-preview", html)
	require.NoError(t, err)
	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), "lamp.ies")

	_, err = runArgs(t, "-file", path, "-preview", filepath.Join(dir, "lamp.svg"))
	assert.Error(t, err)
}

func TestRunLibrary(t *testing.T) {
	dir := t.TempDir()
	path := writeLamp(t, dir, "down.ies")
	lib := filepath.Join(dir, "profiles")
	catalog := filepath.Join(dir, "db", "catalog.db")

	out, err := runArgs(t, "-file", path, "-import", "-library", lib, "-catalog", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "imported down.ies")

	_, err = runArgs(t, "-file", path, "-import", "-library", lib, "-catalog", catalog)
	assert.ErrorIs(t, err, profiles.ErrProfileExists)

	_, err = runArgs(t, "-file", path, "-import", "-overwrite", "-library", lib, "-catalog", catalog)
	require.NoError(t, err)

	out, err = runArgs(t, "-list", "-library", lib, "-catalog=")
	require.NoError(t, err)
	assert.Equal(t, "down.ies\n", out)

	_, err = runArgs(t, "-import", "-library", lib, "-catalog=")
	assert.ErrorIs(t, err, ies.NoFile)
}

func TestParseFlags(t *testing.T) {
	cfg := &config.Config{ProfilesDir: "/tmp/profiles", CatalogPath: "/tmp/profiles/catalog.db", LogLevel: "warn"}

	opts, _, err := parseFlags([]string{"-file", "a.ies"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "a.ies", opts.file)
	assert.Equal(t, 1.0, opts.scale)
	assert.Equal(t, "/tmp/profiles", opts.library)
	assert.Equal(t, "/tmp/profiles/catalog.db", opts.catalog)
	assert.Equal(t, "warn", opts.logLevel)

	_, _, err = parseFlags([]string{"-scale", "lots"}, cfg)
	assert.Error(t, err)

	_, _, err = parseFlags([]string{"-h"}, cfg)
	assert.ErrorIs(t, err, flag.ErrHelp)

	var usage bytes.Buffer
	_, fs, _ := parseFlags(nil, cfg)
	printUsage(&usage, fs)
	assert.Contains(t, usage.String(), "-scale")
}
