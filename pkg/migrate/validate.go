package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// versionLayout is the goose timestamp prefix of every migration file.
const versionLayout = "20060102150405"

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

	// Ledger rows are append-only; a migration may drop the table on Down but
	// never rewrite its history.
	ledgerRewriteRe = regexp.MustCompile(`(?i)\b(UPDATE\s+transactions|DELETE\s+FROM\s+transactions|TRUNCATE\s+(TABLE\s+)?transactions)\b`)
)

// ValidateDir checks every migration in dir: filename and version, goose
// markers, and that nothing rewrites ledger rows.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	names, err := migrationFiles(dir)
	if err != nil {
		return err
	}

	seen := map[string]string{}
	for _, name := range names {
		version, err := parseVersion(name)
		if err != nil {
			return err
		}
		key := version.Format(versionLayout)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", key, prev, name)
		}
		seen[key] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %q: %w", name, err)
		}
		if err := checkMigration(name, string(body)); err != nil {
			return err
		}
	}
	return nil
}

// checkMigration applies the per-file rules shared by ValidateDir and
// CreateSQLMigration.
func checkMigration(name, body string) error {
	if _, err := parseVersion(name); err != nil {
		return err
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(body, marker) {
			return fmt.Errorf("migration %q missing %q", name, marker)
		}
	}
	if stmt := ledgerRewriteRe.FindString(body); stmt != "" {
		return fmt.Errorf("migration %q rewrites ledger history (%s)", name, stmt)
	}
	return nil
}

func parseVersion(name string) (time.Time, error) {
	m := sqlFileRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
	}
	version, err := time.Parse(versionLayout, m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid migration version in %q: %w", name, err)
	}
	return version, nil
}

// migrationFiles lists the .sql files of dir in directory order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// latestVersion returns the newest version in dir, or the zero time when
// dir holds no migrations.
func latestVersion(dir string) (time.Time, error) {
	names, err := migrationFiles(dir)
	if err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	for _, name := range names {
		version, err := parseVersion(name)
		if err != nil {
			return time.Time{}, err
		}
		if version.After(latest) {
			latest = version
		}
	}
	return latest, nil
}
