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
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// ChunkSize is the transfer buffer size in bytes.
const ChunkSize = 16384

// maxZeroWrites bounds consecutive zero-byte writes before the transfer
// is declared stuck. A conforming writer never returns (0, nil) for a
// non-empty buffer, but a pathological one must not hang the loop.
const maxZeroWrites = 8

// writeFull writes all of buf, reissuing the remainder after every
// partial write. A single write call is not guaranteed to transfer the
// whole buffer, particularly for large buffers or interrupted calls;
// a short write is expected behavior here, not an error.
func writeFull(w io.Writer, buf []byte) error {
	written := 0
	zeroWrites := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		if err != nil {
			return errors.Errorf("%w: %w", ErrWriteFailed, err)
		}
		if n == 0 {
			zeroWrites++
			if zeroWrites >= maxZeroWrites {
				return errors.Errorf("%w: writer made no progress after %d attempts", ErrWriteFailed, zeroWrites)
			}
			continue
		}
		zeroWrites = 0
		written += n
	}
	return nil
}

// copyChunks transfers total bytes from src to dst in ChunkSize pieces,
// emitting a throttled progress update roughly once per percent of the
// total. The final update on a clean end of input always reports
// (total, total) so the consumer observes 100% completion.
func copyChunks(src io.Reader, dst io.Writer, total int64, progress ProgressFunc) error {
	buf := make([]byte, ChunkSize)

	// One update per percent of input. A zero-length input makes the
	// threshold zero, so every read would report.
	updateThreshold := total / 100

	var copied int64
	var sinceLastUpdate int64

	for {
		n, err := src.Read(buf)
		if n > 0 {
			if werr := writeFull(dst, buf[:n]); werr != nil {
				return werr
			}
			copied += int64(n)
			sinceLastUpdate += int64(n)
			if sinceLastUpdate > updateThreshold {
				if progress != nil {
					progress(copied, total)
				}
				sinceLastUpdate = 0
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Errorf("%w: %w", ErrReadFailed, err)
		}
	}

	if progress != nil {
		progress(total, total)
	}
	return nil
}

// stream runs the buffered copy between two open handles and owns both
// of them from here on: whatever happens, each handle is closed exactly
// once before the operation completes. On failure the partially written
// destination is removed so a failed transfer never leaves a truncated
// file behind. With removeSource set, a successful transfer deletes the
// source path (move semantics).
func (o *operation) stream(ctx context.Context, src, dst *os.File, total int64, removeSource bool) {
	o.logger.Debug().
		Str("source", o.req.Source).
		Str("destination", o.req.Destination).
		Int64("size", total).
		Bool("remove_source", removeSource).
		Msg("streaming copy")

	if err := copyChunks(src, dst, total, o.req.progress); err != nil {
		o.closeQuietly(src)
		o.closeQuietly(dst)
		o.removeDestination()
		o.complete(err)
		return
	}

	o.closeQuietly(src)

	// Flush to stable storage before reporting success. The original
	// descriptor-level engine did not surface flush errors either.
	if err := dst.Sync(); err != nil {
		o.logger.Warn().Err(err).Str("destination", o.req.Destination).Msg("flushing destination")
	}
	o.closeQuietly(dst)

	if removeSource {
		if err := os.Remove(o.req.Source); err != nil {
			o.logger.Warn().Err(err).Str("source", o.req.Source).Msg("removing moved source")
		}
	}

	o.complete(nil)
}

// closeQuietly closes a handle, logging rather than propagating the
// error: by the time a handle is closed the operation's outcome is
// already decided.
func (o *operation) closeQuietly(f *os.File) {
	if err := f.Close(); err != nil {
		o.logger.Warn().Err(err).Str("file", f.Name()).Msg("closing handle")
	}
}

// removeDestination deletes whatever was created at the destination
// path. Called on every failure path; a missing file is fine.
func (o *operation) removeDestination() {
	if err := os.Remove(o.req.Destination); err != nil && !os.IsNotExist(err) {
		o.logger.Warn().Err(err).Str("destination", o.req.Destination).Msg("removing failed destination")
	}
}
