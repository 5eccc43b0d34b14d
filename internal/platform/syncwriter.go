package platform

import (
	"io"
	"sync"
)

// SyncWriters returns views of ws whose writes are serialized under one
// lock. os/exec copies a child's stdout and stderr from separate goroutines
// when they are not files, so both views may share an underlying writer.
func SyncWriters(ws ...io.Writer) []io.Writer {
	mu := &sync.Mutex{}
	out := make([]io.Writer, len(ws))
	for i, w := range ws {
		out[i] = &lockedWriter{mu: mu, w: w}
	}
	return out
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
