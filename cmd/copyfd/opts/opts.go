package opts

import (
	"github.com/walteh/copyfd/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	UserLogger *log.Logger
	// Async dispatches each transfer on its own goroutine instead of
	// running it inline on the calling goroutine.
	Async bool
}
