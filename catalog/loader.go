package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/util"
)

// definitionExts are the file extensions the loader recognizes.
var definitionExts = []string{".yaml", ".yml"}

// Loader loads pipeline definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
}

// FileLoader loads definitions from YAML files in a directory.
type FileLoader struct {
	dir string
}

// NewFileLoader creates a loader that reads {name}.yaml or {name}.yml from
// the given directory.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// Load reads the definition with the given name.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, ext := range definitionExts {
		path := filepath.Join(l.dir, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return parseDefinition(path, data)
	}
	return nil, errors.NotFound("pipeline", name)
}

// LoadAll reads every definition in the directory.
func (l *FileLoader) LoadAll() ([]*Definition, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	var defs []*Definition
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !util.Contains(definitionExts, filepath.Ext(e.Name())) {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		def, err := parseDefinition(path, data)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseDefinition(path string, data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Configuration(fmt.Sprintf("parsing %s: %v", path, err)).WithCause(err)
	}
	if def.Name == "" {
		base := filepath.Base(path)
		def.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := def.Validate(); err != nil {
		return nil, errors.Configuration(fmt.Sprintf("%s: invalid pipeline %q: %v", path, def.Name, err)).WithCause(err)
	}
	return &def, nil
}
