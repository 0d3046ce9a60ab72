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

// Package fsops implements asynchronous, progress-reporting file copy and
// move operations on top of plain file descriptors.
//
// The two entry points, Copy and Move, share one buffered streaming
// primitive. Moves between paths on the same device are performed as an
// atomic rename without touching file content; everything else is a
// chunked copy with partial-write retry and throttled progress updates.
//
// Outcomes are delivered through a notification sink: the completion
// callback fires exactly once per operation, the progress callback fires
// zero or more times with monotonically non-decreasing counts and always
// ends at (total, total) on success.
package fsops

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📢 ProgressFunc receives throttled byte-count updates during a transfer.
// completed never decreases and the final call always reports completed == total.
type ProgressFunc func(completed, total int64)

// 🏁 CompleteFunc receives the terminal outcome of an operation. A nil
// error means success. It is invoked exactly once per operation.
type CompleteFunc func(err error)

// 📋 Request describes a single copy or move operation. It is immutable
// once handed to the engine and owned by that invocation for its duration.
type Request struct {
	// Source is the path of the file to read.
	Source string
	// Destination is the path to create or replace.
	Destination string
	// OnComplete is required and is called exactly once with the outcome.
	OnComplete CompleteFunc
	// OnProgress is optional; when nil no progress updates are emitted.
	OnProgress ProgressFunc
}

// validate checks the boundary contract before any I/O happens.
func (r Request) validate() error {
	if r.Source == "" {
		return errors.Errorf("%w: source path is empty", ErrInvalidRequest)
	}
	if r.Destination == "" {
		return errors.Errorf("%w: destination path is empty", ErrInvalidRequest)
	}
	if r.OnComplete == nil {
		return errors.Errorf("%w: completion callback is required", ErrInvalidRequest)
	}
	return nil
}

// progress forwards an update to the sink when one was requested.
func (r Request) progress(completed, total int64) {
	if r.OnProgress != nil {
		r.OnProgress(completed, total)
	}
}

// 📄 Copy copies Source to Destination, creating or truncating the
// destination with the source's mode bits.
//
// A malformed request is rejected synchronously with an error wrapping
// ErrInvalidRequest and the sink is never touched. Once the request is
// accepted Copy always returns nil: every I/O outcome, success or
// failure, is reported through OnComplete exactly once. A failed copy
// never leaves a partial file at the destination path.
func Copy(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	op := newOperation(ctx, req)
	op.copy(ctx)
	return nil
}

// 🚚 Move moves Source to Destination. When both paths live on the same
// device this is an atomic rename; otherwise the file is copied and the
// source removed on success.
//
// The device comparison stats the destination path without opening it,
// so a move that fails before the cross-device copy starts writing —
// including a failed rename — leaves an existing destination untouched.
//
// Request validation and sink semantics are identical to Copy.
func Move(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	op := newOperation(ctx, req)
	op.move(ctx)
	return nil
}

// 🎮 operation carries the per-invocation state shared by the copy and
// move paths. Each invocation owns exactly the handles it opens; nothing
// is shared across operations.
type operation struct {
	req    Request
	logger *zerolog.Logger
	// rename performs the same-device replace. It is a field so tests
	// can force the rename to fail on a single filesystem.
	rename func(source, destination string) error
}

func newOperation(ctx context.Context, req Request) *operation {
	return &operation{
		req:    req,
		logger: zerolog.Ctx(ctx),
		rename: renameReplace,
	}
}

// complete delivers the terminal outcome. Every exit path of an
// operation funnels through here exactly once.
func (o *operation) complete(err error) {
	if err != nil {
		o.logger.Debug().
			Str("source", o.req.Source).
			Str("destination", o.req.Destination).
			Err(err).
			Msg("operation failed")
	} else {
		o.logger.Debug().
			Str("source", o.req.Source).
			Str("destination", o.req.Destination).
			Msg("operation complete")
	}
	o.req.OnComplete(err)
}
