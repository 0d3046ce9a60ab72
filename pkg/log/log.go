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

// Package log renders user-facing transfer output for the copyfd CLI
// and mirrors everything into zerolog for debugging. It implements the
// batch.Reporter interface.
package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/copyfd/pkg/config"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent per-file entries
	nameWidth  = 40 // base width for the source path
	modeWidth  = 6  // width for the operation mode
)

// 🎯 Logger handles per-transfer console output with a zerolog mirror.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer

	mu       sync.Mutex
	inflight map[string]int // source -> last whole percent printed
}

// 🏭 New creates a new logger writing user output to console.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:     zlog,
		console:  console,
		inflight: map[string]int{},
	}
}

// 📝 StartTransfer announces a transfer before any bytes move.
func (l *Logger) StartTransfer(source, destination string, mode config.Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inflight[source] = -1

	fmt.Fprintf(l.console, "%s%s %s %s %s\n",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(color.FgCyan).Sprint("→"),
		fmt.Sprintf("%-*s", nameWidth, source),
		color.New(color.FgYellow).Sprint(fmt.Sprintf("%-*s", modeWidth, string(mode))),
		color.New(color.Faint).Sprint(destination))

	l.zlog.Info().
		Str("source", source).
		Str("destination", destination).
		Str("mode", string(mode)).
		Msg("transfer started")
}

// 📈 Progress prints a percentage line whenever the whole percent
// changes. The engine already throttles updates to roughly one per
// percent, so this stays quiet on large files.
func (l *Logger) Progress(source string, completed, total int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	percent := 100
	if total > 0 {
		percent = int(completed * 100 / total)
	}
	if percent == l.inflight[source] {
		return
	}
	l.inflight[source] = percent

	fmt.Fprintf(l.console, "%s%s %s %s\n",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(color.Faint).Sprint("…"),
		fmt.Sprintf("%-*s", nameWidth, source),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%3d%%", percent)))

	l.zlog.Debug().
		Str("source", source).
		Int64("completed", completed).
		Int64("total", total).
		Msg("transfer progress")
}

// 🏁 FinishTransfer reports the outcome of a transfer.
func (l *Logger) FinishTransfer(source string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.inflight, source)

	if err != nil {
		fmt.Fprintf(l.console, "%s%s %s %s\n",
			fmt.Sprintf("%*s", fileIndent, ""),
			color.New(color.FgRed).Sprint("✗"),
			fmt.Sprintf("%-*s", nameWidth, source),
			color.New(color.FgRed).Sprint(err.Error()))
		l.zlog.Error().Err(err).Str("source", source).Msg("transfer failed")
		return
	}

	fmt.Fprintf(l.console, "%s%s %s\n",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(color.FgGreen).Sprint("✓"),
		fmt.Sprintf("%-*s", nameWidth, source))
	l.zlog.Info().Str("source", source).Msg("transfer complete")
}

// 📝 Header prints the run header.
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("copyfd")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// ✅ Success prints a closing summary line.
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pterm.Success.WithWriter(l.console).Println(msg)
	l.zlog.Info().Msg(msg)
}

// ❌ Error prints a closing failure line.
func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pterm.Error.WithWriter(l.console).Println(msg)
	if err != nil {
		pterm.Error.WithWriter(l.console).Println(err)
	}
	l.zlog.Error().Err(err).Msg(msg)
}
