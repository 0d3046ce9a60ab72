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

// Package batch executes a copyfd manifest: it expands glob sources,
// resolves per-file destinations, and runs the resulting transfers
// through the fsops engine with bounded parallelism.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/copyfd/pkg/config"
	"github.com/walteh/copyfd/pkg/fsops"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📈 Reporter receives per-file events while a manifest runs. All
// methods may be called from multiple goroutines.
type Reporter interface {
	StartTransfer(source, destination string, mode config.Mode)
	Progress(source string, completed, total int64)
	FinishTransfer(source string, err error)
}

// 🔧 Options configures an Executor.
type Options struct {
	// Manifest is the validated batch manifest to run.
	Manifest *config.Manifest
	// Reporter receives per-file events; may be nil.
	Reporter Reporter
}

// 🏭 New creates an executor for the given manifest. The parallel
// limit is clamped to at least 1 here so a manifest that skipped
// Validate cannot hand errgroup a zero limit, which would block the
// first dispatch forever.
func New(opts Options) (*Executor, error) {
	if opts.Manifest == nil {
		return nil, errors.Errorf("manifest is required")
	}
	parallel := opts.Manifest.Parallel
	if parallel < 1 {
		parallel = 1
	}
	return &Executor{
		manifest: opts.Manifest,
		parallel: parallel,
		reporter: opts.Reporter,
	}, nil
}

// 🎮 Executor runs the transfers of one manifest.
type Executor struct {
	manifest *config.Manifest
	parallel int
	reporter Reporter
}

// 📄 job is one fully resolved file transfer.
type job struct {
	source      string
	destination string
	mode        config.Mode
}

// Execute expands and runs every transfer of the manifest. Transfers
// run concurrently up to the manifest's parallel limit; each one owns
// its own handles, so no extra synchronization is needed between them.
// Every transfer runs to completion; the first failure is returned.
func (e *Executor) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	jobs, err := e.resolveJobs(ctx)
	if err != nil {
		return errors.Errorf("resolving transfers: %w", err)
	}
	if len(jobs) == 0 {
		logger.Warn().Msg("manifest matched no files")
		return nil
	}

	logger.Debug().
		Int("jobs", len(jobs)).
		Int("parallel", e.parallel).
		Msg("executing manifest")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)

	for _, j := range jobs {
		g.Go(func() error {
			return e.runJob(ctx, j)
		})
	}

	return g.Wait()
}

// runJob executes a single transfer synchronously and adapts the
// engine's notification sink to the reporter.
func (e *Executor) runJob(ctx context.Context, j job) error {
	e.startTransfer(j)

	var outcome error
	req := fsops.Request{
		Source:      j.source,
		Destination: j.destination,
		OnComplete:  func(err error) { outcome = err },
	}
	if e.manifest.Progress && e.reporter != nil {
		req.OnProgress = func(completed, total int64) {
			e.reporter.Progress(j.source, completed, total)
		}
	}

	var err error
	switch j.mode {
	case config.ModeMove:
		err = fsops.Move(ctx, req)
	default:
		err = fsops.Copy(ctx, req)
	}
	if err != nil {
		// Request construction is under our control, so this only
		// fires on programming errors.
		return errors.Errorf("dispatching %s: %w", j.source, err)
	}

	e.finishTransfer(j, outcome)
	if outcome != nil {
		return errors.Errorf("transferring %s: %w", j.source, outcome)
	}
	return nil
}

// resolveJobs expands every transfer's sources and destinations into
// concrete per-file jobs.
func (e *Executor) resolveJobs(ctx context.Context) ([]job, error) {
	logger := zerolog.Ctx(ctx)

	var jobs []job
	for i, tr := range e.manifest.Transfers {
		sources, err := expandSources(ctx, tr.Sources)
		if err != nil {
			return nil, errors.Errorf("transfer %d: %w", i, err)
		}
		if len(sources) == 0 {
			logger.Warn().Int("transfer", i).Msg("no files matched")
			continue
		}

		intoDir := len(sources) > 1 || isDirectory(tr.Destination)
		if intoDir {
			if err := os.MkdirAll(tr.Destination, 0o755); err != nil {
				return nil, errors.Errorf("transfer %d: creating destination directory: %w", i, err)
			}
		}

		for _, src := range sources {
			dest := tr.Destination
			if intoDir {
				dest = filepath.Join(tr.Destination, filepath.Base(src))
			}
			jobs = append(jobs, job{source: src, destination: dest, mode: tr.Mode})
		}
	}

	return jobs, nil
}

// expandSources resolves glob patterns against the filesystem and
// passes literal paths through untouched.
func expandSources(ctx context.Context, sources []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var out []string
	for _, src := range sources {
		if !isPattern(src) {
			out = append(out, src)
			continue
		}

		matches, err := doublestar.FilepathGlob(src, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("bad glob pattern %q: %w", src, err)
		}
		if len(matches) == 0 {
			logger.Debug().Str("pattern", src).Msg("pattern matched nothing")
		}
		out = append(out, matches...)
	}
	return out, nil
}

// isPattern reports whether a source contains glob metacharacters.
func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// isDirectory reports whether path exists and is a directory.
func isDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func (e *Executor) startTransfer(j job) {
	if e.reporter != nil {
		e.reporter.StartTransfer(j.source, j.destination, j.mode)
	}
}

func (e *Executor) finishTransfer(j job, err error) {
	if e.reporter != nil {
		e.reporter.FinishTransfer(j.source, err)
	}
}
