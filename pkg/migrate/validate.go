package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every .sql file in dir and reports all problems at once:
// the file name, a parseable and unique version, and Up before Down with
// balanced statement blocks.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var problems error
	owners := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: name must look like YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		version := match[1]
		if _, err := time.Parse(versionLayout, version); err != nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: version %s is not a timestamp", name, version))
		}
		if owner, taken := owners[version]; taken {
			problems = multierr.Append(problems, fmt.Errorf("%s: version %s already used by %s", name, version, owner))
			continue
		}
		owners[version] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: %w", name, err))
			continue
		}
		problems = multierr.Append(problems, checkAnnotations(name, string(body)))
	}

	if len(owners) == 0 && problems == nil {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return problems
}

func checkAnnotations(name, body string) error {
	up, down := strings.Index(body, upMarker), strings.Index(body, downMarker)
	switch {
	case up < 0:
		return fmt.Errorf("%s: missing %q", name, upMarker)
	case down < 0:
		return fmt.Errorf("%s: missing %q", name, downMarker)
	case down < up:
		return fmt.Errorf("%s: %q must come before %q", name, upMarker, downMarker)
	}
	begins := strings.Count(body, "-- +goose StatementBegin")
	if ends := strings.Count(body, "-- +goose StatementEnd"); begins != ends {
		return fmt.Errorf("%s: %d StatementBegin but %d StatementEnd", name, begins, ends)
	}
	return nil
}
