package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFilePattern = regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)

// ValidateDir checks that every migration file is named correctly and carries
// both goose direction markers.
func ValidateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	var problems []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if !migrationFilePattern.MatchString(entry.Name()) {
			problems = append(problems, fmt.Sprintf("%s: bad file name (want <version>_<name>.sql)", entry.Name()))
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		content := string(raw)
		if !strings.Contains(content, "+goose Up") {
			problems = append(problems, fmt.Sprintf("%s: missing +goose Up marker", entry.Name()))
		}
		if !strings.Contains(content, "+goose Down") {
			problems = append(problems, fmt.Sprintf("%s: missing +goose Down marker", entry.Name()))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid migrations:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
