// Package migrate applies versioned schema migrations to a storage backend.
//
// Migration files are named NNNN_name.sql and embedded per backend. A
// backend implements Target; Run applies the pending files in version order
// and records each one in schema_migrations.
package migrate

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

//go:embed sql
var files embed.FS

// Backend directories under the embedded sql tree.
const (
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

var filenamePattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration is one migration file.
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// Applied is a migration recorded in schema_migrations.
type Applied struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

// Target is a backend that can run migrations.
type Target interface {
	// Ensure creates the schema_migrations table if needed.
	Ensure(ctx context.Context) error
	// Applied lists recorded migrations.
	Applied(ctx context.Context) ([]Applied, error)
	// Apply executes a migration and records it.
	Apply(ctx context.Context, m Migration, appliedBy string) error
}

// ParseFilename extracts the version and name of a migration file.
func ParseFilename(filename string) (int, string, bool) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return version, m[2], true
}

// Load reads the embedded migrations of a backend. Placeholders such as
// {{PROJECT_ID}} are replaced after the checksum is taken, so the checksum
// tracks the migration itself and not where it is applied.
func Load(backend string, replacements map[string]string) ([]Migration, error) {
	return LoadFS(files, path.Join("sql", backend), replacements)
}

// LoadFS reads migrations from dir in fsys.
func LoadFS(fsys fs.FS, dir string, replacements map[string]string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migrate.Load: reading %s: %w", dir, err)
	}

	var migrations []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, ok := ParseFilename(e.Name())
		if !ok {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("migrate.Load: reading %s: %w", e.Name(), err)
		}

		sql := string(content)
		for k, v := range replacements {
			sql = strings.ReplaceAll(sql, "{{"+k+"}}", v)
		}
		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			Filename: e.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("migrate.Load: duplicate version %04d", migrations[i].Version)
		}
	}
	return migrations, nil
}

// Run applies every migration whose version is not yet recorded and
// returns how many it applied. A recorded migration whose checksum changed
// is reported but not re-applied.
func Run(ctx context.Context, target Target, migrations []Migration, appliedBy string, log zerolog.Logger) (int, error) {
	if err := target.Ensure(ctx); err != nil {
		return 0, fmt.Errorf("migrate.Run: ensure schema_migrations: %w", err)
	}
	applied, err := target.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate.Run: applied migrations: %w", err)
	}

	done := make(map[int]Applied, len(applied))
	for _, a := range applied {
		done[a.Version] = a
	}

	count := 0
	for _, m := range migrations {
		if a, ok := done[m.Version]; ok {
			if a.Checksum != "" && a.Checksum != m.Checksum {
				log.Warn().Int("version", m.Version).Str("name", m.Name).Msg("applied migration changed since it ran")
			}
			log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("skip (already applied)")
			continue
		}
		if err := target.Apply(ctx, m, appliedBy); err != nil {
			return count, fmt.Errorf("migrate.Run: %04d_%s: %w", m.Version, m.Name, err)
		}
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
		count++
	}
	return count, nil
}
