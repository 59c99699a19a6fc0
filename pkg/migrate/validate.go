package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

	// The same files run on SQLite and Postgres.
	nonPortableRe = []struct {
		re   *regexp.Regexp
		hint string
	}{
		{regexp.MustCompile(`(?i)\b(big)?serial\b`), "use TEXT uuid primary keys"},
		{regexp.MustCompile(`(?i)\bjsonb\b`), "store JSON as TEXT"},
		{regexp.MustCompile(`(?i)\bcreate\s+extension\b`), "extensions are Postgres-only"},
		{regexp.MustCompile(`[A-Za-z0-9_)']::[A-Za-z]`), "use CAST(x AS type)"},
		{regexp.MustCompile(`(?i)\btimestamptz\b`), "use TIMESTAMP"},
	}
)

// ValidateDir validates migration filenames, goose headers and dialect
// portability of an on-disk directory.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	return validateFS(os.DirFS(dir))
}

// ValidateEmbedded runs the same checks over the migrations compiled into the
// binary.
func ValidateEmbedded() error {
	sub, err := fs.Sub(embedded, embeddedDir)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	return validateFS(sub)
}

func validateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	seen := map[string]string{} // version -> filename

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
		if err := checkPortable(name, txt); err != nil {
			return err
		}
	}

	// an empty directory is valid
	return nil
}

func checkPortable(name, txt string) error {
	for i, line := range strings.Split(txt, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		for _, rule := range nonPortableRe {
			if rule.re.MatchString(trimmed) {
				return fmt.Errorf("migration %q line %d is not portable across sqlite and postgres: %s", name, i+1, rule.hint)
			}
		}
	}
	return nil
}
