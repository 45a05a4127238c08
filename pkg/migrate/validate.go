package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp             = "-- +goose Up"
	annotationDown           = "-- +goose Down"
	annotationStatementBegin = "-- +goose StatementBegin"
	annotationStatementEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks every .sql file in dir: the file name must carry a
// unique 14 digit version, and the body needs one Up section before one Down
// section with balanced statement blocks.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}

		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, dup := versions[match[1]]; dup {
			return fmt.Errorf("duplicate migration version %s in %q and %q", match[1], prev, name)
		}
		versions[match[1]] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := validateAnnotations(body); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func validateAnnotations(body []byte) error {
	var (
		ups, downs int
		open       bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for line := 1; scanner.Scan(); line++ {
		switch strings.TrimSpace(scanner.Text()) {
		case annotationUp:
			if downs > 0 {
				return fmt.Errorf("line %d: Up section after Down", line)
			}
			ups++
		case annotationDown:
			if open {
				return fmt.Errorf("line %d: Down inside an open statement block", line)
			}
			downs++
		case annotationStatementBegin:
			if open {
				return fmt.Errorf("line %d: nested StatementBegin", line)
			}
			open = true
		case annotationStatementEnd:
			if !open {
				return fmt.Errorf("line %d: StatementEnd without StatementBegin", line)
			}
			open = false
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	switch {
	case ups != 1:
		return fmt.Errorf("expected one %q annotation, found %d", annotationUp, ups)
	case downs != 1:
		return fmt.Errorf("expected one %q annotation, found %d", annotationDown, downs)
	case open:
		return fmt.Errorf("unterminated statement block")
	}
	return nil
}
