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
	"sync"
)

// 🏃 Runner executes copy and move operations, optionally offloading
// each one to its own goroutine. The copy loop itself is synchronous
// once started; asynchrony lives entirely at this boundary, with
// results delivered back through the request's notification sink.
// Separate operations share no mutable state, so a Runner may dispatch
// any number of them concurrently.
type Runner struct {
	async bool
	wg    sync.WaitGroup
}

// 🏗️ NewRunner creates a new runner. With async set, Copy and Move
// return as soon as the request is validated and the outcome arrives
// later through the sink.
func NewRunner(async bool) *Runner {
	return &Runner{async: async}
}

// Copy runs a copy operation. The returned error covers request
// validation only; transfer outcomes go through the completion sink.
func (r *Runner) Copy(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	r.dispatch(func() { newOperation(ctx, req).copy(ctx) })
	return nil
}

// Move runs a move operation with the same contract as Copy.
func (r *Runner) Move(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	r.dispatch(func() { newOperation(ctx, req).move(ctx) })
	return nil
}

func (r *Runner) dispatch(run func()) {
	if !r.async {
		run()
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		run()
	}()
}

// Wait blocks until every dispatched operation has delivered its
// completion. Each operation completes or fails on its own; Wait adds
// no cancellation, it only observes.
func (r *Runner) Wait() {
	r.wg.Wait()
}
