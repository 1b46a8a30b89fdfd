package script

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed examples/*.yaml
var examplesFS embed.FS

// Examples lists the names of the bundled example scripts.
func Examples() ([]string, error) {
	entries, err := fs.ReadDir(examplesFS, "examples")
	if err != nil {
		return nil, fmt.Errorf("read embedded examples: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	return names, nil
}

// Example loads a bundled example script by name.
func Example(name string) (Script, error) {
	data, err := examplesFS.ReadFile("examples/" + name + ".yaml")
	if err != nil {
		names, _ := Examples()
		return Script{}, fmt.Errorf("unknown example %q (available: %s)", name, strings.Join(names, ", "))
	}

	s, err := Parse(data)
	if err != nil {
		return Script{}, fmt.Errorf("example %s: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, nil
}
