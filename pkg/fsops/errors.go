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
	"gitlab.com/tozd/go/errors"
)

// 🚨 Failure kinds. Every error delivered to a completion sink wraps
// exactly one of these, with the underlying OS error text preserved in
// the chain so callers can surface it directly.
var (
	// ErrInvalidRequest marks a malformed request rejected at the
	// boundary, before any I/O.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrOpenFailed marks a source or destination that could not be opened.
	ErrOpenFailed = errors.New("open failed")

	// ErrStatFailed marks a metadata retrieval failure after a successful open.
	ErrStatFailed = errors.New("stat failed")

	// ErrReadFailed marks a mid-transfer read error.
	ErrReadFailed = errors.New("read failed")

	// ErrWriteFailed marks a mid-transfer write error, including a write
	// primitive that stops making progress.
	ErrWriteFailed = errors.New("write failed")

	// ErrRenameFailed marks a failed same-device rename. There is no
	// automatic fallback to copy+delete.
	ErrRenameFailed = errors.New("rename failed")
)
