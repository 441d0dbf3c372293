package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"
)

const versionLayout = "20060102150405"

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

	// now is swapped in tests.
	now = time.Now

	skeleton = fasttemplate.New(`-- +goose Up
-- +goose StatementBegin
-- [[name]]
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback [[name]]
-- +goose StatementEnd
`, "[[", "]]")
)

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql. If another migration already uses the
// current second as its version the version is bumped until it is free.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version := now().UTC().Truncate(time.Second)
	for {
		taken, err := filepath.Glob(filepath.Join(dir, version.Format(versionLayout)+"_*.sql"))
		if err != nil {
			return "", fmt.Errorf("scan %q: %w", dir, err)
		}
		if len(taken) == 0 {
			break
		}
		version = version.Add(time.Second)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), safe))
	body := skeleton.ExecuteString(map[string]any{"name": safe})
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
