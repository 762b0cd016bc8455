// Package layout writes projects to disk, either as one document or as a
// root file that includes one file per user path plus a shared servers file.
package layout

import (
	"bytes"
	"path"

	"gopkg.in/yaml.v3"

	"loadcompose/internal/project"
)

const (
	// Ext is applied to every generated include file.
	Ext = ".nl.yaml"

	RootFile    = "default.yaml"
	PathsDir    = "paths"
	ServersFile = "servers/servers" + Ext
)

// Artifact is one document of an exploded project, relative to its root.
type Artifact struct {
	Rel     string
	Content any
}

type pathsDoc struct {
	UserPaths []project.UserPath `yaml:"user_paths"`
}

type serversDoc struct {
	Servers []project.Server `yaml:"servers"`
}

// Explode splits a project into path files, a servers file and a root
// file listing them in that order. It does not touch the filesystem.
func Explode(p *project.Project) []Artifact {
	var (
		artifacts []Artifact
		includes  []string
	)

	for _, up := range p.UserPaths {
		rel := path.Join(PathsDir, up.Name+Ext)
		artifacts = append(artifacts, Artifact{
			Rel:     rel,
			Content: pathsDoc{UserPaths: []project.UserPath{up}},
		})
		includes = append(includes, rel)
	}

	artifacts = append(artifacts, Artifact{
		Rel:     ServersFile,
		Content: serversDoc{Servers: p.Servers},
	})
	includes = append(includes, ServersFile)

	root := p.Clone()
	root.UserPaths = nil
	root.Servers = nil
	root.Includes = includes

	return append(artifacts, Artifact{Rel: RootFile, Content: root})
}

// Marshal renders v as block-style YAML.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
