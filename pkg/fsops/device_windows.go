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

//go:build windows

package fsops

import (
	"os"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/windows"
)

// deviceID maps a handle to its volume serial number, the Windows
// analogue of st_dev.
func deviceID(f *os.File, _ os.FileInfo) (uint64, error) {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(f.Fd()), &info); err != nil {
		return 0, errors.Errorf("file information for %q: %w", f.Name(), err)
	}
	return uint64(info.VolumeSerialNumber), nil
}

// pathDeviceID resolves the volume serial number for path without a
// writable handle. FILE_FLAG_BACKUP_SEMANTICS lets the probe work for
// directories too, which is how a not-yet-existing destination is
// attributed to its parent.
func pathDeviceID(path string) (uint64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, errors.Errorf("encoding path: %w", err)
	}
	h, err := windows.CreateFile(
		p,
		windows.FILE_READ_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return 0, &os.PathError{Op: "open", Path: path, Err: err}
	}
	defer windows.CloseHandle(h)

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return 0, errors.Errorf("file information for %q: %w", path, err)
	}
	return uint64(info.VolumeSerialNumber), nil
}

// renameReplace renames source onto destination, replacing an existing
// destination in one step. Plain os.Rename refuses to overwrite on
// Windows, which would force a delete-then-rename window where the
// destination does not exist.
func renameReplace(source, destination string) error {
	src, err := windows.UTF16PtrFromString(source)
	if err != nil {
		return errors.Errorf("encoding source path: %w", err)
	}
	dst, err := windows.UTF16PtrFromString(destination)
	if err != nil {
		return errors.Errorf("encoding destination path: %w", err)
	}
	return windows.MoveFileEx(src, dst, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH)
}
