package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity is one spawn definition: key/value pairs as in a map entity lump.
// "classname" is mandatory; every other key names an entity field.
type Entity map[string]string

func (e Entity) Classname() string { return e["classname"] }

// Level is a spawnable entity list. The first entity must be worldspawn.
type Level struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`
}

// LoadLevel loads a level YAML file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(raw)
}

// LoadNamedLevel loads dir/<name>.yaml. Names are bare level names, never paths.
func LoadNamedLevel(dir, name string) (*Level, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("bad level name %q", name)
	}
	lvl, err := LoadLevel(filepath.Join(dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("level %q: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = name
	}
	return lvl, nil
}

// ParseLevel decodes and validates level YAML.
func ParseLevel(raw []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(raw, &lvl); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) validate() error {
	if len(l.Entities) == 0 {
		return fmt.Errorf("level %q: no entities", l.Name)
	}
	if cn := l.Entities[0].Classname(); cn != "worldspawn" {
		return fmt.Errorf("level %q: first entity is %q, want worldspawn", l.Name, cn)
	}
	for i, e := range l.Entities {
		if e.Classname() == "" {
			return fmt.Errorf("level %q: entity %d has no classname", l.Name, i)
		}
	}
	return nil
}

// Count returns the number of entity definitions.
func (l *Level) Count() int {
	return len(l.Entities)
}
