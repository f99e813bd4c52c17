// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2026 The Falco Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


// Package config loads the configuration of the heap a module allocates
// from. Configurations are JSON documents, such as the init config string
// a host passes to a plugin, validated against a JSON schema and
// overridden by MODBOUND_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/xeipuuv/gojsonschema"

	"github.com/falcosecurity/modbound-go/pkg/log"
	"github.com/falcosecurity/modbound-go/pkg/raw"
)

// EnvPrefix is the prefix of the environment variables overriding the
// loaded configuration, e.g. MODBOUND_HEAP or MODBOUND_TRACK.
const EnvPrefix = "MODBOUND"

// Heap names accepted in the heap field.
const (
	HeapDefault = "default"
	HeapGo      = "go"
	HeapC       = "c"
	HeapMmap    = "mmap"
)

// Schema is the JSON schema configurations are validated against.
const Schema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"heap": {
			"type": "string",
			"enum": ["default", "go", "c", "mmap"],
			"description": "The heap the module allocates from"
		},
		"name": {
			"type": "string",
			"maxLength": 64,
			"description": "The name given to the heap in logs"
		},
		"track": {
			"type": "boolean",
			"description": "Record live blocks and report leaks on restore"
		},
		"log_level": {
			"type": "string",
			"enum": ["error", "warn", "info", "debug"]
		},
		"log_format": {
			"type": "string",
			"enum": ["text", "json"]
		}
	}
}`

// ErrInvalidConfig is returned when a configuration does not validate
// against Schema.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the heap configuration of a module.
type Config struct {
	Heap      string `json:"heap"`
	Name      string `json:"name,omitempty"`
	Track     bool   `json:"track"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Heap:      HeapDefault,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the configuration from the JSON file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// FromJSON parses an inline JSON configuration. An empty string is the
// empty document.
func FromJSON(document string) (*Config, error) {
	if len(document) == 0 {
		document = "{}"
	}
	return parse([]byte(document))
}

func parse(document []byte) (*Config, error) {
	if err := validate(document); err != nil {
		return nil, err
	}
	c := Default()
	if err := json.Unmarshal(document, &c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("reading %s environment: %w", EnvPrefix, err)
	}
	// environment values are checked like the document ones
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks c against Schema.
func (c *Config) Validate() error {
	document, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return validate(document)
}

func validate(document []byte) error {
	schema := gojsonschema.NewStringLoader(Schema)
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}
	var errs *multierror.Error
	for _, e := range result.Errors() {
		errs = multierror.Append(errs, errors.New(e.String()))
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errs.ErrorOrNil())
}

// NewHeap builds the configured heap. Stats are returned only if Track
// is set.
func (c *Config) NewHeap() (*raw.Heap, *raw.Stats, error) {
	var h *raw.Heap
	var err error
	switch c.Heap {
	case HeapDefault, "":
		h, err = raw.CHeap()
		if errors.Is(err, raw.ErrUnsupported) {
			h, err = raw.GoHeap(), nil
		}
	case HeapGo:
		h = raw.GoHeap()
	case HeapC:
		h, err = raw.CHeap()
	case HeapMmap:
		h, err = raw.MmapHeap()
	default:
		err = fmt.Errorf("%w: unknown heap %q", ErrInvalidConfig, c.Heap)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(c.Name) > 0 {
		h = raw.NewHeap(c.Name, h.Operators(false), h.Operators(true))
	}
	if !c.Track {
		return h, nil, nil
	}
	h, stats := raw.Track(h)
	return h, stats, nil
}

// Apply configures the module logger, then builds the configured heap and
// installs it. The returned function restores the previous heap, after
// reporting the blocks still live if the heap is tracked.
func (c *Config) Apply() (restore func(), err error) {
	h, stats, err := c.NewHeap()
	if err != nil {
		return nil, err
	}
	log.SetLevel(c.LogLevel)
	log.SetFormat(c.LogFormat)
	undo := raw.Install(h)
	log.WithPrefix("config").
		WithField("heap", h.Name()).
		WithField("track", c.Track).
		Info("heap configured")
	return func() {
		if stats != nil {
			stats.Report()
		}
		undo()
	}, nil
}
