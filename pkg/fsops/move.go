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
	"context"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// move orchestrates a move. The destination's device is probed by path
// before any write handle exists, so the same-device branch never
// opens, truncates, or deletes the old destination: until the rename
// succeeds, whatever lived at the destination path is intact. Only the
// cross-device branch creates a write handle, and from that point on
// failure cleanup removes the partial destination as usual.
func (o *operation) move(ctx context.Context) {
	src, err := openSource(o.req.Source)
	if err != nil {
		o.complete(err)
		return
	}

	srcMeta, err := inspect(src)
	if err != nil {
		o.closeQuietly(src)
		o.complete(err)
		return
	}

	dstDev, err := destinationDeviceID(o.req.Destination)
	if err != nil {
		o.closeQuietly(src)
		o.complete(err)
		return
	}

	if srcMeta.Device == dstDev {
		o.closeQuietly(src)
		o.renameInPlace(srcMeta.Size)
		return
	}

	dst, err := openDestination(o.req.Destination, srcMeta.Mode)
	if err != nil {
		o.closeQuietly(src)
		o.failPath(err)
		return
	}

	o.stream(ctx, src, dst, srcMeta.Size, true)
}

// destinationDeviceID resolves the device the destination will live
// on. A destination that does not exist yet is attributed to its
// parent directory's device, which is where the new file would land.
func destinationDeviceID(path string) (uint64, error) {
	dev, err := pathDeviceID(path)
	if err == nil {
		return dev, nil
	}
	if !os.IsNotExist(err) {
		return 0, errors.Errorf("%w: device id of %q: %w", ErrStatFailed, path, err)
	}

	parent := filepath.Dir(path)
	dev, err = pathDeviceID(parent)
	if err != nil {
		return 0, errors.Errorf("%w: device id of %q: %w", ErrStatFailed, parent, err)
	}
	return dev, nil
}

// renameInPlace performs the same-device fast path: O(1) regardless of
// file size, and any extended attributes ride along implicitly. The
// rename replaces the destination in one step; if it fails, the
// previous destination is left exactly as it was — there is no
// fallback to copy+delete.
func (o *operation) renameInPlace(size int64) {
	o.logger.Debug().
		Str("source", o.req.Source).
		Str("destination", o.req.Destination).
		Msg("same device, renaming")

	if err := o.rename(o.req.Source, o.req.Destination); err != nil {
		o.complete(errors.Errorf("%w: renaming %q to %q: %w", ErrRenameFailed, o.req.Source, o.req.Destination, err))
		return
	}

	o.req.progress(size, size)
	o.complete(nil)
}
