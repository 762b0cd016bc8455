package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"loadcompose/internal/project"
)

// Load reads a project from a single document, a root file with includes,
// or a directory holding default.yaml. Included servers and user paths are
// appended in include order.
func Load(path string) (*project.Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, RootFile)
	}

	root, err := readDoc(path)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, rel := range root.Includes {
		inc, err := readDoc(filepath.Join(base, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("include %s: %w", rel, err)
		}
		root.Servers = append(root.Servers, inc.Servers...)
		root.UserPaths = append(root.UserPaths, inc.UserPaths...)
		root.Populations = append(root.Populations, inc.Populations...)
		root.Scenarios = append(root.Scenarios, inc.Scenarios...)
	}
	root.Includes = nil
	return root, nil
}

func readDoc(path string) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var p project.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &p, nil
}
