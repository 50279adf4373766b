package console

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Console serializes line-oriented status output across goroutines.
//
// Design decision: We pass an explicit Console handle to each worker
// rather than sharing a lock through struct fields because:
//  1. The coordination point is visible in every constructor signature
//  2. Tests can substitute a buffer and assert on complete lines
//  3. No worker can print without going through the lock
type Console struct {
	// mu guards every write to w.
	mu sync.Mutex

	// w is the destination stream, typically os.Stdout.
	w io.Writer
}

// New creates a Console writing to w. A nil w defaults to os.Stdout.
func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Printf formats and writes a message under the console lock.
// Multi-call messages should be assembled first and printed with a
// single Printf so they stay contiguous.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

// Println writes the arguments followed by a newline under the console lock.
func (c *Console) Println(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, args...)
}
