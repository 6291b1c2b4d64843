// Package diag provides opt-in CPU profiling for a single Prove call, via
// runtime/pprof, surfaced through google/pprof for report rendering (teacher
// go.mod declares both as direct dependencies; profiling here is scoped to
// one call rather than process-wide, per ProverOption.WithProfiling).
package diag

import (
	"fmt"
	"os"
	"runtime/pprof"

	profile "github.com/google/pprof/profile"
)

// Session wraps a single profiling pass: Start begins CPU sampling into a
// temporary file, Stop ends it and parses the result into a
// *profile.Profile for the caller to inspect or write out.
type Session struct {
	w interface {
		Write([]byte) (int, error)
	}
	file *os.File
}

// Start begins CPU profiling into a temp file; returns a no-op Session
// (profiling disabled) when enabled is false, so callers can unconditionally
// defer Stop.
func Start(enabled bool) (*Session, error) {
	if !enabled {
		return &Session{}, nil
	}
	f, err := os.CreateTemp("", "zk-prover-profile-*.pprof")
	if err != nil {
		return nil, fmt.Errorf("diag: create profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("diag: start cpu profile: %w", err)
	}
	return &Session{file: f}, nil
}

// Stop ends profiling (if it was started) and returns the parsed profile,
// or nil if profiling was disabled.
func (s *Session) Stop() (*profile.Profile, error) {
	if s == nil || s.file == nil {
		return nil, nil
	}
	pprof.StopCPUProfile()
	defer os.Remove(s.file.Name())
	defer s.file.Close()

	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("diag: rewind profile file: %w", err)
	}
	p, err := profile.Parse(s.file)
	if err != nil {
		return nil, fmt.Errorf("diag: parse profile: %w", err)
	}
	return p, nil
}
