// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides configuration loading for the SPOKE tools.
//
// Configuration is read from a YAML, JSON or TOML file, overlaid with
// environment variables and then validated. No configuration is read at
// package initialization; callers pass the loaded values to the clients
// they construct.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete configuration.
type Config struct {
	Neo4j     Neo4j     `yaml:"neo4j" json:"neo4j"`
	BioPortal BioPortal `yaml:"bioportal" json:"bioportal"`
	Orthologs Orthologs `yaml:"orthologs" json:"orthologs"`
	Log       Log       `yaml:"log" json:"log"`
}

// Neo4j holds graph database connection parameters.
type Neo4j struct {
	URI      string `yaml:"uri" json:"uri" validate:"required,uri"`
	User     string `yaml:"user" json:"user" validate:"required"`
	Password string `yaml:"password" json:"password"`

	// Database is the database sessions are opened on. If empty,
	// the server default is used.
	Database string `yaml:"database" json:"database"`

	// Credentials is the path of a credentials file holding the
	// URI, user name and password on its first three lines. When
	// set, the file's values replace URI, User and Password.
	Credentials string `yaml:"credentials" json:"credentials"`
}

// BioPortal holds the ontology recommender parameters.
type BioPortal struct {
	URL    string `yaml:"url" json:"url" validate:"required,url"`
	APIKey string `yaml:"api_key" json:"api_key"`

	// Timeout is the HTTP client timeout. Zero is no timeout.
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// Orthologs holds the ortholog table sources.
type Orthologs struct {
	JAX  string `yaml:"jax" json:"jax" validate:"required,url"`
	HCOP string `yaml:"hcop" json:"hcop" validate:"required,url"`

	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// Log holds logging parameters.
type Log struct {
	Level       string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development" json:"development"`
}

// Duration is a time.Duration that is configured as a duration string.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default source locations.
const (
	BioPortalURL = "https://data.bioontology.org/recommender"
	JAXURL       = "https://www.informatics.jax.org/downloads/reports/HOM_AllOrganism.rpt"
	HCOPURL      = "https://ftp.ebi.ac.uk/pub/databases/genenames/hcop/human_all_hcop_sixteen_column.txt.gz"
)

// Default returns the default configuration. The Neo4j connection
// parameters must be provided.
func Default() *Config {
	return &Config{
		BioPortal: BioPortal{
			URL:     BioPortalURL,
			Timeout: Duration(time.Minute),
		},
		Orthologs: Orthologs{
			JAX:     JAXURL,
			HCOP:    HCOPURL,
			Timeout: Duration(10 * time.Minute),
		},
		Log: Log{Level: "info"},
	}
}

var validate = validator.New()

// Validate checks the configuration. Sections named in except, for
// example "Neo4j", are not checked.
func (c *Config) Validate(except ...string) error {
	var err error
	if len(except) == 0 {
		err = validate.Struct(c)
	} else {
		err = validate.StructExcept(c, except...)
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = fieldError(e)
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func fieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url", "uri":
		return fmt.Sprintf("%s must be a valid %s", field, strings.ToUpper(e.Tag()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
