// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/komkom/toml"
	"gopkg.in/yaml.v3"
)

// FileLoader decodes a configuration file format.
type FileLoader interface {
	Load(r io.Reader, dst interface{}) error
	Extensions() []string
}

// Loader loads configuration from a file and the environment.
type Loader struct {
	loaders map[string]FileLoader

	// Getenv is used to read environment variables.
	// If nil, os.Getenv is used.
	Getenv func(string) string

	// Credentials, if not empty, is used in place of the
	// configured Neo4j credentials file path.
	Credentials string
}

// NewLoader returns a Loader that handles YAML, JSON and TOML files.
func NewLoader() *Loader {
	l := &Loader{loaders: make(map[string]FileLoader)}
	l.Register(YAMLLoader{})
	l.Register(JSONLoader{})
	l.Register(TOMLLoader{})
	return l
}

// Register adds a file loader for its extensions.
func (l *Loader) Register(f FileLoader) {
	for _, ext := range f.Extensions() {
		l.loaders[ext] = f
	}
}

// Load returns the default configuration overlaid with the contents
// of the file at path, if path is not empty, and then with environment
// variables. If a Neo4j credentials file is named, its values are then
// read into the Neo4j section. The result is validated, except for the
// configuration sections named in except.
//
// The environment variables are SPOKE_URI, SPOKE_USER, SPOKE_PASSWORD,
// SPOKE_DATABASE, SPOKE_CREDENTIALS, BIOPORTAL_API_KEY and LOG_LEVEL.
func (l *Loader) Load(path string, except ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		err := l.loadFile(path, cfg)
		if err != nil {
			return nil, err
		}
	}
	l.overlayEnv(cfg)
	if l.Credentials != "" {
		cfg.Neo4j.Credentials = l.Credentials
	}
	if cfg.Neo4j.Credentials != "" {
		creds, err := LoadCredentials(cfg.Neo4j.Credentials)
		if err != nil {
			return nil, err
		}
		cfg.Neo4j.URI = creds.URI
		cfg.Neo4j.User = creds.User
		cfg.Neo4j.Password = creds.Password
	}
	err := cfg.Validate(except...)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	dec, ok := l.loaders[ext]
	if !ok {
		return fmt.Errorf("config: unsupported file type: %q", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	err = dec.Load(bufio.NewReader(f), cfg)
	if err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return nil
}

func (l *Loader) overlayEnv(cfg *Config) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"SPOKE_URI", &cfg.Neo4j.URI},
		{"SPOKE_USER", &cfg.Neo4j.User},
		{"SPOKE_PASSWORD", &cfg.Neo4j.Password},
		{"SPOKE_DATABASE", &cfg.Neo4j.Database},
		{"SPOKE_CREDENTIALS", &cfg.Neo4j.Credentials},
		{"BIOPORTAL_API_KEY", &cfg.BioPortal.APIKey},
		{"LOG_LEVEL", &cfg.Log.Level},
	} {
		if val := getenv(v.name); val != "" {
			*v.dst = val
		}
	}
}

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (YAMLLoader) Load(r io.Reader, dst interface{}) error {
	err := yaml.NewDecoder(r).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

func (YAMLLoader) Extensions() []string { return []string{"yaml", "yml"} }

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (JSONLoader) Load(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (JSONLoader) Extensions() []string { return []string{"json"} }

// TOMLLoader loads configuration from TOML files. The TOML is
// translated to JSON and decoded using the JSON field names.
type TOMLLoader struct{}

func (TOMLLoader) Load(r io.Reader, dst interface{}) error {
	return JSONLoader{}.Load(toml.New(r), dst)
}

func (TOMLLoader) Extensions() []string { return []string{"toml"} }
