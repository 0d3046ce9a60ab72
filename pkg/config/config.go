// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates copyfd batch manifests. A manifest
// lists file transfers to perform and may be written in YAML, JSON, or
// HCL; the format is chosen by file extension.
package config

import (
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 🚚 Mode selects the operation applied to a transfer.
type Mode string

const (
	// ModeCopy leaves the source in place.
	ModeCopy Mode = "copy"
	// ModeMove removes the source after a successful transfer.
	ModeMove Mode = "move"
)

// 📦 Transfer is one entry of a manifest: one or more sources and a
// destination. Sources may be literal paths or doublestar glob
// patterns; a transfer with more than one matched source treats the
// destination as a directory.
type Transfer struct {
	Sources     []string `json:"sources" yaml:"sources" hcl:"sources"`
	Destination string   `json:"destination" yaml:"destination" hcl:"destination"`
	Mode        Mode     `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
}

// 📚 Manifest is the complete batch configuration.
type Manifest struct {
	Transfers []Transfer `json:"transfer" yaml:"transfer" hcl:"transfer,block"`
	// Parallel bounds how many transfers run at once. Zero means one.
	Parallel int `json:"parallel,omitempty" yaml:"parallel,omitempty" hcl:"parallel,optional"`
	// Progress enables per-file progress reporting.
	Progress bool `json:"progress,omitempty" yaml:"progress,omitempty" hcl:"progress,optional"`

	location string
}

// Location returns the path the manifest was loaded from.
func (m *Manifest) Location() string {
	return m.location
}

// 🔍 Validate checks the manifest and normalizes defaults in place.
func (m *Manifest) Validate() error {
	if len(m.Transfers) == 0 {
		return errors.Errorf("manifest has no transfers")
	}
	if m.Parallel < 0 {
		return errors.Errorf("parallel must not be negative, got %d", m.Parallel)
	}
	if m.Parallel == 0 {
		m.Parallel = 1
	}

	for i := range m.Transfers {
		tr := &m.Transfers[i]
		if len(tr.Sources) == 0 {
			return errors.Errorf("transfer %d: at least one source is required", i)
		}
		for _, src := range tr.Sources {
			if src == "" {
				return errors.Errorf("transfer %d: empty source path", i)
			}
		}
		if tr.Destination == "" {
			return errors.Errorf("transfer %d: destination is required", i)
		}
		tr.Destination = filepath.Clean(tr.Destination)

		switch tr.Mode {
		case ModeCopy, ModeMove:
		case "":
			tr.Mode = ModeCopy
		default:
			return errors.Errorf("transfer %d: unknown mode %q", i, tr.Mode)
		}
	}

	return nil
}
