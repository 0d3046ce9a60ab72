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

package fsops_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/copyfd/pkg/fsops"
)

// 🧪 testContext returns a context carrying a test logger.
func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// 🧪 sink records every sink invocation for later assertions.
type sink struct {
	mu          sync.Mutex
	completions []error
	progress    [][2]int64
}

func (s *sink) request(source, destination string, wantProgress bool) fsops.Request {
	req := fsops.Request{
		Source:      source,
		Destination: destination,
		OnComplete: func(err error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.completions = append(s.completions, err)
		},
	}
	if wantProgress {
		req.OnProgress = func(completed, total int64) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.progress = append(s.progress, [2]int64{completed, total})
		}
	}
	return req
}

func (s *sink) completedOnce(t *testing.T) error {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.completions, 1, "completion sink must fire exactly once")
	return s.completions[0]
}

func writeTestFile(t *testing.T, path string, data []byte, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, mode))
	// WriteFile is subject to umask; pin the mode explicitly.
	require.NoError(t, os.Chmod(path, mode))
}

func TestCopy(t *testing.T) {
	t.Run("content_and_mode_are_preserved", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "source.bin")
		destination := filepath.Join(tmpDir, "destination.bin")

		data := bytes.Repeat([]byte("copyfd!"), 50_000)
		writeTestFile(t, source, data, 0o640)

		s := &sink{}
		require.NoError(t, fsops.Copy(testContext(t), s.request(source, destination, true)))
		require.NoError(t, s.completedOnce(t))

		got, err := os.ReadFile(destination)
		require.NoError(t, err)
		assert.Equal(t, data, got)

		fi, err := os.Stat(destination)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())

		// Source is untouched by a copy.
		orig, err := os.ReadFile(source)
		require.NoError(t, err)
		assert.Equal(t, data, orig)
	})

	t.Run("progress_ends_at_total", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "source.bin")
		destination := filepath.Join(tmpDir, "destination.bin")

		data := bytes.Repeat([]byte{0x33}, 300_000)
		writeTestFile(t, source, data, 0o644)

		s := &sink{}
		require.NoError(t, fsops.Copy(testContext(t), s.request(source, destination, true)))
		require.NoError(t, s.completedOnce(t))

		require.NotEmpty(t, s.progress)
		assert.LessOrEqual(t, len(s.progress), 101)
		last := s.progress[len(s.progress)-1]
		assert.Equal(t, int64(len(data)), last[0])
		assert.Equal(t, int64(len(data)), last[1])
		for i := 1; i < len(s.progress); i++ {
			assert.GreaterOrEqual(t, s.progress[i][0], s.progress[i-1][0])
		}
	})

	t.Run("empty_file_copies", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "empty")
		destination := filepath.Join(tmpDir, "empty-copy")
		writeTestFile(t, source, nil, 0o644)

		s := &sink{}
		require.NoError(t, fsops.Copy(testContext(t), s.request(source, destination, true)))
		require.NoError(t, s.completedOnce(t))

		fi, err := os.Stat(destination)
		require.NoError(t, err)
		assert.Zero(t, fi.Size())
		assert.Equal(t, [2]int64{0, 0}, s.progress[len(s.progress)-1])
	})

	t.Run("round_trip_is_identical", func(t *testing.T) {
		tmpDir := t.TempDir()
		a := filepath.Join(tmpDir, "a")
		b := filepath.Join(tmpDir, "b")
		c := filepath.Join(tmpDir, "c")

		data := bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 20_000)
		writeTestFile(t, a, data, 0o644)

		s1 := &sink{}
		require.NoError(t, fsops.Copy(testContext(t), s1.request(a, b, false)))
		require.NoError(t, s1.completedOnce(t))

		s2 := &sink{}
		require.NoError(t, fsops.Copy(testContext(t), s2.request(b, c, false)))
		require.NoError(t, s2.completedOnce(t))

		got, err := os.ReadFile(c)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("missing_source_leaves_no_destination", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "does-not-exist")
		destination := filepath.Join(tmpDir, "destination")

		// Twice in a row: failure cleanup must be idempotent.
		for range 2 {
			s := &sink{}
			require.NoError(t, fsops.Copy(testContext(t), s.request(source, destination, false)))

			err := s.completedOnce(t)
			require.Error(t, err)
			assert.ErrorIs(t, err, fsops.ErrOpenFailed)

			_, statErr := os.Stat(destination)
			assert.True(t, os.IsNotExist(statErr))
		}
	})

	t.Run("unwritable_destination_reports_open_failure", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "source")
		writeTestFile(t, source, []byte("data"), 0o644)

		s := &sink{}
		destination := filepath.Join(tmpDir, "missing-dir", "destination")
		require.NoError(t, fsops.Copy(testContext(t), s.request(source, destination, false)))

		err := s.completedOnce(t)
		require.Error(t, err)
		assert.ErrorIs(t, err, fsops.ErrOpenFailed)
	})
}

func TestRequestValidation(t *testing.T) {
	ctx := context.Background()
	noop := func(error) {}

	tests := []struct {
		name string
		req  fsops.Request
	}{
		{
			name: "empty_source",
			req:  fsops.Request{Destination: "d", OnComplete: noop},
		},
		{
			name: "empty_destination",
			req:  fsops.Request{Source: "s", OnComplete: noop},
		},
		{
			name: "missing_completion_callback",
			req:  fsops.Request{Source: "s", Destination: "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fsops.Copy(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, fsops.ErrInvalidRequest)

			err = fsops.Move(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, fsops.ErrInvalidRequest)
		})
	}
}

func TestMove(t *testing.T) {
	t.Run("same_device_renames_without_copying", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "source.bin")
		destination := filepath.Join(tmpDir, "destination.bin")

		data := bytes.Repeat([]byte("renamed "), 10_000)
		writeTestFile(t, source, data, 0o644)

		// Snapshot the source's identity so the rename can be proven.
		before, err := os.Stat(source)
		require.NoError(t, err)

		s := &sink{}
		require.NoError(t, fsops.Move(testContext(t), s.request(source, destination, true)))
		require.NoError(t, s.completedOnce(t))

		got, err := os.ReadFile(destination)
		require.NoError(t, err)
		assert.Equal(t, data, got)

		_, err = os.Stat(source)
		assert.True(t, os.IsNotExist(err), "source must no longer exist")

		// Same inode at the destination means no bytes were copied.
		after, err := os.Stat(destination)
		require.NoError(t, err)
		assert.True(t, os.SameFile(before, after), "same-device move must rename, not copy")

		// The single progress update reports full completion.
		require.Len(t, s.progress, 1)
		assert.Equal(t, [2]int64{int64(len(data)), int64(len(data))}, s.progress[0])
	})

	t.Run("existing_destination_is_replaced", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "source.bin")
		destination := filepath.Join(tmpDir, "destination.bin")

		writeTestFile(t, source, []byte("new content"), 0o644)
		writeTestFile(t, destination, []byte("old content"), 0o644)

		s := &sink{}
		require.NoError(t, fsops.Move(testContext(t), s.request(source, destination, false)))
		require.NoError(t, s.completedOnce(t))

		got, err := os.ReadFile(destination)
		require.NoError(t, err)
		assert.Equal(t, []byte("new content"), got)
	})

	t.Run("missing_source_leaves_no_destination", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "does-not-exist")
		destination := filepath.Join(tmpDir, "destination")

		s := &sink{}
		require.NoError(t, fsops.Move(testContext(t), s.request(source, destination, false)))

		err := s.completedOnce(t)
		require.Error(t, err)
		assert.ErrorIs(t, err, fsops.ErrOpenFailed)

		_, statErr := os.Stat(destination)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("failed_move_keeps_existing_destination", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "does-not-exist")
		destination := filepath.Join(tmpDir, "destination")
		writeTestFile(t, destination, []byte("still here"), 0o644)

		s := &sink{}
		require.NoError(t, fsops.Move(testContext(t), s.request(source, destination, false)))

		err := s.completedOnce(t)
		require.Error(t, err)
		assert.ErrorIs(t, err, fsops.ErrOpenFailed)

		// The destination is only touched once the move is committed to
		// writing; a failure before that leaves it as it was.
		got, readErr := os.ReadFile(destination)
		require.NoError(t, readErr)
		assert.Equal(t, []byte("still here"), got)
	})
}

func TestRunner(t *testing.T) {
	t.Run("async_operations_deliver_through_sink", func(t *testing.T) {
		tmpDir := t.TempDir()
		ctx := testContext(t)
		runner := fsops.NewRunner(true)

		const count = 8
		sinks := make([]*sink, count)
		for i := range count {
			source := filepath.Join(tmpDir, "src"+string(rune('a'+i)))
			destination := filepath.Join(tmpDir, "dst"+string(rune('a'+i)))
			writeTestFile(t, source, bytes.Repeat([]byte{byte(i)}, 10_000), 0o644)

			sinks[i] = &sink{}
			require.NoError(t, runner.Copy(ctx, sinks[i].request(source, destination, false)))
		}

		runner.Wait()

		for i := range count {
			require.NoError(t, sinks[i].completedOnce(t))
		}
	})

	t.Run("sync_runner_completes_inline", func(t *testing.T) {
		tmpDir := t.TempDir()
		source := filepath.Join(tmpDir, "source")
		destination := filepath.Join(tmpDir, "destination")
		writeTestFile(t, source, []byte("inline"), 0o644)

		runner := fsops.NewRunner(false)
		s := &sink{}
		require.NoError(t, runner.Move(testContext(t), s.request(source, destination, false)))

		// No Wait needed: completion already happened.
		require.NoError(t, s.completedOnce(t))
	})

	t.Run("invalid_request_is_rejected_before_dispatch", func(t *testing.T) {
		runner := fsops.NewRunner(true)
		err := runner.Copy(context.Background(), fsops.Request{})
		require.Error(t, err)
		assert.ErrorIs(t, err, fsops.ErrInvalidRequest)
	})
}
