package uart

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Retry policy for frame writes. A flaky TTL cable should not kill telemetry,
// but the control loop must never stall behind it either.
const (
	defaultWriteAttempts = 3
	defaultWriteBackoff  = 100 * time.Millisecond
)

// Writer serializes line writes to the port and retries transient failures.
type Writer struct {
	mu       sync.Mutex
	w        io.Writer
	attempts int
	backoff  time.Duration
}

// NewWriter wraps w with the default retry policy.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, attempts: defaultWriteAttempts, backoff: defaultWriteBackoff}
}

// WriteLine writes s plus a newline, retrying transient failures.
// Returns the last error once attempts are exhausted.
func (w *Writer) WriteLine(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	payload := []byte(s + "\n")
	var lastErr error
	for i := 0; i < w.attempts; i++ {
		if i > 0 {
			time.Sleep(w.backoff)
		}
		n, err := w.w.Write(payload)
		if err == nil && n == len(payload) {
			return nil
		}
		if err == nil {
			err = io.ErrShortWrite
		}
		lastErr = err
	}
	return fmt.Errorf("uart write failed after %d attempts: %w", w.attempts, lastErr)
}
