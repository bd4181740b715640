// Package settings reads and writes the aws-vapor configuration file, a
// small TOML document of sections holding string values. Older INI files
// are still read. A global file in
// ~/.aws-vapor is read first and a file in the working directory overrides
// it key by key.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/ini.v1"
)

const (
	// FileName is the name of the configuration file in both directories.
	FileName = "config"

	// GlobalDirName is the name of the global configuration directory
	// within the user's home directory.
	GlobalDirName = ".aws-vapor"
)

// Props holds configuration values by section and then by key.
type Props map[string]map[string]string

// Get returns the value of the given key, and whether it was set.
func (p Props) Get(section, key string) (string, bool) {
	entries, ok := p[section]
	if !ok {
		return "", false
	}
	value, ok := entries[key]
	return value, ok
}

// Set stores a value, creating the section if needed.
func (p Props) Set(section, key, value string) {
	if p[section] == nil {
		p[section] = make(map[string]string)
	}
	p[section][key] = value
}

// Delete removes a key, and its section too once the section is empty.
func (p Props) Delete(section, key string) {
	delete(p[section], key)
	if len(p[section]) == 0 {
		delete(p, section)
	}
}

// Keys returns "section.key" for every value, sorted.
func (p Props) Keys() []string {
	var keys []string
	for section, entries := range p {
		for key := range entries {
			keys = append(keys, section+"."+key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Env holds the settings that can be given through environment variables.
type Env struct {
	// Contrib overrides defaults.contrib.
	Contrib string `env:"AWS_VAPOR_CONTRIB"`
	// LogLevel is the default for the --log-level flag.
	LogLevel string `env:"AWS_VAPOR_LOG_LEVEL"`
}

// LoadEnv reads the AWS_VAPOR_* environment variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return e, nil
}

// Store locates the global and local configuration files.
type Store struct {
	GlobalDir string
	LocalDir  string

	// Env values take precedence over both files in Load.
	Env Env
}

// NewStore returns a store using ~/.aws-vapor and the working directory,
// with overrides from the environment.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	e, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return &Store{
		GlobalDir: filepath.Join(home, GlobalDirName),
		LocalDir:  cwd,
		Env:       e,
	}, nil
}

// Path returns the path of either the global or the local file.
func (s *Store) Path(global bool) string {
	if global {
		return filepath.Join(s.GlobalDir, FileName)
	}
	return filepath.Join(s.LocalDir, FileName)
}

// Load merges the global file, the local file and the environment, in that
// order. Missing files are skipped.
func (s *Store) Load() (Props, error) {
	props := make(Props)
	for _, global := range []bool{true, false} {
		scoped, err := s.LoadScope(global)
		if err != nil {
			return nil, err
		}
		for section, entries := range scoped {
			for key, value := range entries {
				props.Set(section, key, value)
			}
		}
	}
	if s.Env.Contrib != "" {
		props.Set("defaults", "contrib", s.Env.Contrib)
	}
	return props, nil
}

// LoadScope reads only the global or only the local file. A path that is
// missing or is not a regular file, such as a config directory in the
// working directory, reads as empty.
//
// Files written by earlier releases use INI syntax, which is not always
// valid TOML. Such files are read as INI and are rewritten as TOML by the
// next Save.
func (s *Store) LoadScope(global bool) (Props, error) {
	path := s.Path(global)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return make(Props), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		props, iniErr := loadLegacy(path)
		if iniErr != nil {
			return nil, fmt.Errorf("reading %s: not valid TOML (%v) nor INI (%v)", path, err, iniErr)
		}
		return props, nil
	}

	props := make(Props, len(raw))
	for section, entries := range raw {
		for key, value := range entries {
			props.Set(section, key, fmt.Sprint(value))
		}
	}
	return props, nil
}

func loadLegacy(path string) (Props, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	props := make(Props)
	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			props.Set(section.Name(), key.Name(), key.String())
		}
	}
	return props, nil
}

// Get returns the value of the given key from Load, or def if the key isn't
// set anywhere.
func (s *Store) Get(section, key, def string) (string, error) {
	props, err := s.Load()
	if err != nil {
		return "", err
	}
	if value, ok := props.Get(section, key); ok {
		return value, nil
	}
	return def, nil
}

// Save replaces the global or local file with the given values. The global
// directory is created if it doesn't exist yet.
func (s *Store) Save(props Props, global bool) error {
	path := s.Path(global)
	if global {
		if err := os.MkdirAll(s.GlobalDir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(map[string]map[string]string(props)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
