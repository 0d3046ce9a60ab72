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
)

// copy orchestrates a plain copy: open source, snapshot its metadata,
// create the destination with the source's mode bits, then stream.
func (o *operation) copy(ctx context.Context) {
	src, err := openSource(o.req.Source)
	if err != nil {
		o.failPath(err)
		return
	}

	meta, err := inspect(src)
	if err != nil {
		o.closeQuietly(src)
		o.failPath(err)
		return
	}

	dst, err := openDestination(o.req.Destination, meta.Mode)
	if err != nil {
		o.closeQuietly(src)
		o.failPath(err)
		return
	}

	o.stream(ctx, src, dst, meta.Size, false)
}

// failPath reports a failure that happened before both handles were
// open and stat'd. Any partially created destination is removed first,
// so a failed operation never leaves a file at the destination path.
func (o *operation) failPath(err error) {
	o.removeDestination()
	o.complete(err)
}
