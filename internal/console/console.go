package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ErrTimedOut is returned when no line arrived within the wait duration.
var ErrTimedOut = errors.New("timed out waiting for input")

// Input waits for operator input.
type Input interface {
	// WaitForInput returns the next line, without its line ending, or
	// ErrTimedOut once d has elapsed. io.EOF means the input is closed.
	WaitForInput(ctx context.Context, d time.Duration) (string, error)
	// Interactive reports whether an operator can type at all.
	Interactive() bool
}

// Console reads lines from an io.Reader.
type Console struct {
	r           io.Reader
	interactive bool

	once  sync.Once
	lines chan string
	err   error // set before lines is closed
}

// New returns a Console reading from r. interactive reports whether an
// operator is attached to r.
func New(r io.Reader, interactive bool) *Console {
	return &Console{
		r:           r,
		interactive: interactive,
		lines:       make(chan string, 16),
	}
}

// Stdin returns a Console on os.Stdin, interactive when stdin is a terminal.
func Stdin() *Console {
	return New(os.Stdin, Attached(os.Stdin))
}

// Attached reports whether f is a terminal.
func Attached(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Interactive implements Input.
func (c *Console) Interactive() bool {
	return c.interactive
}

func (c *Console) start() {
	c.once.Do(func() {
		go c.readLoop()
	})
}

func (c *Console) readLoop() {
	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		c.lines <- strings.TrimRight(scanner.Text(), "\r")
	}
	c.err = scanner.Err()
	if c.err == nil {
		c.err = io.EOF
	}
	close(c.lines)
}

// WaitForInput implements Input. A non-positive d only returns a line that
// is already pending.
func (c *Console) WaitForInput(ctx context.Context, d time.Duration) (string, error) {
	c.start()

	select {
	case line, ok := <-c.lines:
		return c.received(line, ok)
	default:
	}
	if d <= 0 {
		return "", ErrTimedOut
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case line, ok := <-c.lines:
		return c.received(line, ok)
	case <-timer.C:
		return "", ErrTimedOut
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Console) received(line string, ok bool) (string, error) {
	if !ok {
		return "", c.err
	}
	return line, nil
}
