package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var FS embed.FS

// Migrations returns the embedded migration names (e.g. "001_scores.sql")
// in the order they must be applied.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Migration returns the SQL text of one migration.
func Migration(name string) (string, error) {
	b, err := FS.ReadFile("sql/" + name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
