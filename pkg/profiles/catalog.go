package profiles

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Entry is the catalog summary of one imported profile.
type Entry struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	LampCount  int          `json:"lampCount"`
	Lumens     float64      `json:"lumens"`
	Symmetry   ies.Symmetry `json:"symmetry"`
	MaxCandela float64      `json:"maxCandela"`
	Flux       float64      `json:"flux"`
	ImportedAt time.Time    `json:"importedAt"`
}

// NewEntry summarizes rec under name with a fresh ID.
func NewEntry(name string, rec *ies.Record) Entry {
	return Entry{
		ID:         uuid.New(),
		Name:       name,
		LampCount:  rec.LampCount,
		Lumens:     rec.LumensPerLamp,
		Symmetry:   rec.Symmetry(),
		MaxCandela: rec.MaxCandela(),
		Flux:       rec.Flux(),
		ImportedAt: time.Now().UTC(),
	}
}

// Catalog is a sqlite index of the profiles in a library.
type Catalog struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenCatalog opens (or creates) the catalog database at path and applies
// any pending migrations.
func OpenCatalog(path string, logger zerolog.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	// A single connection keeps sqlite writes serialized.
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db, logger: logger}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) migrateUp() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Closing m would close c.db as well.
	m.Log = &migrateLogger{logger: c.logger}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Upsert stores e, replacing the summary of an existing profile with the
// same name. The ID of an existing row is kept.
func (c *Catalog) Upsert(e Entry) error {
	query := `
		INSERT INTO profiles (id, name, lamp_count, lumens, symmetry, max_candela, flux, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			lamp_count = excluded.lamp_count,
			lumens = excluded.lumens,
			symmetry = excluded.symmetry,
			max_candela = excluded.max_candela,
			flux = excluded.flux,
			imported_at = excluded.imported_at
	`
	_, err := c.db.Exec(query,
		e.ID.String(), e.Name, e.LampCount, e.Lumens, string(e.Symmetry),
		e.MaxCandela, e.Flux, e.ImportedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", e.Name, err)
	}
	c.logger.Debug().Str("name", e.Name).Msg("catalog entry stored")
	return nil
}

// Get returns the entry for name or ErrProfileNotFound.
func (c *Catalog) Get(name string) (Entry, error) {
	row := c.db.QueryRow(`
		SELECT id, name, lamp_count, lumens, symmetry, max_candela, flux, imported_at
		FROM profiles WHERE name = ?
	`, name)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get profile %s: %w", name, err)
	}
	return e, nil
}

// List returns every entry ordered by name.
func (c *Catalog) List() ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT id, name, lamp_count, lumens, symmetry, max_candela, flux, imported_at
		FROM profiles ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the entry for name or returns ErrProfileNotFound.
func (c *Catalog) Delete(name string) error {
	result, err := c.db.Exec(`DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e          Entry
		id         string
		symmetry   string
		importedAt string
	)
	if err := s.Scan(&id, &e.Name, &e.LampCount, &e.Lumens, &symmetry, &e.MaxCandela, &e.Flux, &importedAt); err != nil {
		return Entry{}, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("bad id %q: %w", id, err)
	}
	e.ID = parsedID
	e.Symmetry = ies.Symmetry(symmetry)

	e.ImportedAt, err = time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("bad import time %q: %w", importedAt, err)
	}
	return e, nil
}

// migrateLogger implements migrate.Logger on top of zerolog
type migrateLogger struct {
	logger zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug().Msgf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
