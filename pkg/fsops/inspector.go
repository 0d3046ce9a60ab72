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

package fsops

import (
	"io/fs"
	"os"

	"gitlab.com/tozd/go/errors"
)

// 📏 Metadata is a read-only snapshot of an open file, captured once at
// open time and never refreshed.
type Metadata struct {
	// Size is the file length in bytes at open time.
	Size int64
	// Mode holds the file's permission bits.
	Mode fs.FileMode
	// Device identifies the volume the file lives on. Two files with
	// equal Device values can be renamed into each other atomically.
	Device uint64
}

// openSource opens the file to read.
func openSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("%w: opening source %q: %w", ErrOpenFailed, path, err)
	}
	return f, nil
}

// openDestination creates or truncates the destination with the given
// mode bits, matching the source's permissions at creation time.
func openDestination(path string, mode fs.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return nil, errors.Errorf("%w: opening destination %q: %w", ErrOpenFailed, path, err)
	}
	return f, nil
}

// inspect captures a Metadata snapshot from an open handle. The device
// identifier comes from a per-platform adapter so the rest of the engine
// stays platform-agnostic.
func inspect(f *os.File) (Metadata, error) {
	fi, err := f.Stat()
	if err != nil {
		return Metadata{}, errors.Errorf("%w: stat %q: %w", ErrStatFailed, f.Name(), err)
	}
	dev, err := deviceID(f, fi)
	if err != nil {
		return Metadata{}, errors.Errorf("%w: device id of %q: %w", ErrStatFailed, f.Name(), err)
	}
	return Metadata{
		Size:   fi.Size(),
		Mode:   fi.Mode(),
		Device: dev,
	}, nil
}
