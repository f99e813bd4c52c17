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

// Package log holds the logger shared by all the packages of this module.
// The level is read from the MODBOUND_LOGLEVEL environment variable and
// can be changed later through SetLevel, for example from a loaded config.
package log

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// EnvLevel is the environment variable read to set the initial log level.
const EnvLevel = "MODBOUND_LOGLEVEL"

var log = logrus.New()

func init() {
	log.Formatter = NewFormatter("")
	log.Level = ParseLevel(os.Getenv(EnvLevel))
}

// Get returns the module logger.
func Get() *logrus.Logger {
	return log
}

// WithPrefix returns an entry tagged with the component name, which is
// how every package of this module logs.
func WithPrefix(prefix string) *logrus.Entry {
	return log.WithField("prefix", prefix)
}

// ParseLevel maps a level name to a logrus level. Unknown or empty
// names fall back to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// SetLevel changes the level of the module logger.
func SetLevel(level string) {
	log.SetLevel(ParseLevel(level))
}

// NewFormatter returns a JSON formatter for "json" and a text formatter
// for anything else.
func NewFormatter(format string) logrus.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{}
	default:
		return &logrus.TextFormatter{
			FullTimestamp: true,
		}
	}
}

// SetFormat changes the formatter of the module logger.
func SetFormat(format string) {
	log.Formatter = NewFormatter(format)
}
