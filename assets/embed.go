// Package assets bundles the files the server needs at runtime: the default
// curriculum and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed curriculum.yaml sql/*.sql
var FS embed.FS

// Curriculum returns the embedded default curriculum document.
func Curriculum() ([]byte, error) {
	return FS.ReadFile("curriculum.yaml")
}

// Migration is one embedded SQL script.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded scripts in lexical order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		b, err := FS.ReadFile("sql/" + e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: e.Name(), SQL: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
