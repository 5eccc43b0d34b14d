// Package faults defines the error kinds shared across bootkeeper. Every
// error that crosses a package boundary wraps exactly one kind so callers
// can branch with errors.Is instead of inspecting messages.
package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks a manifest or file download failure.
	ErrNetwork = errors.New("network error")
	// ErrParse marks a malformed manifest, cache or persisted selection.
	ErrParse = errors.New("parse error")
	// ErrStorage marks a local read or write failure.
	ErrStorage = errors.New("storage error")
	// ErrLaunch marks an abnormal termination of the launched program.
	ErrLaunch = errors.New("launch error")
	// ErrFault marks an unexpected failure in the supervisor's own logic.
	ErrFault = errors.New("supervisor fault")
)

// Wrap annotates err with a kind and an operation description.
// It returns nil when err is nil.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

// Kind returns the kind wrapped by err, or nil if err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrNetwork, ErrParse, ErrStorage, ErrLaunch, ErrFault} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
