// Package proverlog wraps zerolog with the fields the prover's components
// attach consistently (stage name, curve, sizes), mirroring the teacher's
// habit of a single package-level structured logger rather than passing
// *log.Logger through every call (teacher go.mod declares rs/zerolog as a
// direct dependency).
package proverlog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// SetOutput redirects all further logging, e.g. to a test buffer or to
// structured JSON instead of the default console writer.
func SetOutput(w zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = w
}

// Logger returns the shared structured logger, with "component": "prover".
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With().Str("component", "prover").Logger()
}

// Stage returns a logger tagged with the given driver stage name (spec
// §4.8's 9 numbered steps), for per-stage timing/diagnostic lines.
func Stage(name string) zerolog.Logger {
	return Logger().With().Str("stage", name).Logger()
}
