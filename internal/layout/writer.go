package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"loadcompose/internal/project"
)

const (
	FilePermissions = 0644
	DirPermissions  = 0755
)

// ErrExists is wrapped by the PersistError Save returns for an existing
// path without overwrite permission.
var ErrExists = errors.New("path exists, but no overwrite argument provided")

// Target says where and how Save writes a project.
type Target struct {
	Path      string
	Overwrite bool
	// Temp marks a scratch location; it is always written as one document.
	Temp bool
}

// Save writes p to t.Path and returns the path of the root document.
// An existing regular file, a Temp target or a new path ending in .yaml/.yml
// gets a single document; anything else becomes an exploded directory.
func Save(p *project.Project, t Target) (string, error) {
	info, err := os.Stat(t.Path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", &PersistError{Op: "stat", Path: t.Path, Err: err}
	}
	if exists && !t.Overwrite && !t.Temp {
		return "", &PersistError{Op: "write", Path: t.Path, Err: ErrExists}
	}

	single := t.Temp
	if exists {
		single = single || info.Mode().IsRegular()
	} else {
		single = single || isYAMLName(t.Path)
	}

	if single {
		return t.Path, WriteFile(p, t.Path)
	}
	if err := WriteDir(p, t.Path); err != nil {
		return "", err
	}
	return filepath.Join(t.Path, RootFile), nil
}

// WriteDir writes the exploded layout of p under dir. The first failure
// aborts; files written before it stay on disk.
func WriteDir(p *project.Project, dir string) error {
	for _, a := range Explode(p) {
		target := filepath.Join(dir, filepath.FromSlash(a.Rel))
		if err := WriteFile(a.Content, target); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile replaces the file at path with the YAML form of v.
func WriteFile(v any, path string) error {
	data, err := Marshal(v)
	if err != nil {
		return &PersistError{Op: "encode", Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return &PersistError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &PersistError{Op: "remove", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return &PersistError{Op: "write", Path: path, Err: err}
	}

	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote project document")
	return nil
}

func isYAMLName(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
