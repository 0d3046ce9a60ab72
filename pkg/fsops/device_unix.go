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

//go:build !windows

package fsops

import (
	"os"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

// deviceID extracts the st_dev of an open file from its stat result.
func deviceID(f *os.File, fi os.FileInfo) (uint64, error) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, errors.Errorf("no stat_t available for %q", f.Name())
	}
	return uint64(st.Dev), nil
}

// pathDeviceID returns the st_dev of the filesystem object at path
// without opening it. A non-existent path reports os.IsNotExist.
func pathDeviceID(path string) (uint64, error) {
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return 0, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return uint64(st.Dev), nil
}

// renameReplace renames source onto destination. POSIX rename replaces
// an existing destination atomically, so the old destination is never
// left missing if the rename fails.
func renameReplace(source, destination string) error {
	return os.Rename(source, destination)
}
