package testutil

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/console"
)

// ScriptedInput is a console.Input that replays fixed lines, then reports
// closed input. A nil entry in Lines simulates a wait that times out.
type ScriptedInput struct {
	Lines    []*string
	Operator bool

	mu    sync.Mutex
	waits []time.Duration
}

// Line is a helper for building ScriptedInput.Lines.
func Line(s string) *string {
	return &s
}

// Interactive implements console.Input.
func (s *ScriptedInput) Interactive() bool {
	return s.Operator
}

// WaitForInput implements console.Input.
func (s *ScriptedInput) WaitForInput(ctx context.Context, d time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.Lines) == 0 {
		return "", io.EOF
	}
	next := s.Lines[0]
	s.Lines = s.Lines[1:]
	if next == nil {
		return "", console.ErrTimedOut
	}
	return *next, nil
}

// Waits returns the durations passed to WaitForInput, in order.
func (s *ScriptedInput) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}
