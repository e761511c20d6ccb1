package link

import (
	"strings"
	"sync/atomic"
)

// LineAssembler splits a byte stream into lines.
// The in-progress line is kept in a fixed buffer across calls.
type LineAssembler struct {
	overflows uint64

	buf []byte
	len int
}

// NewLineAssembler creates a LineAssembler with the given line capacity.
func NewLineAssembler(capacity int) *LineAssembler {
	if capacity <= 0 {
		capacity = DefaultLineCapacity
	}
	return &LineAssembler{buf: make([]byte, capacity)}
}

// Parse consumes one byte and returns a line when it completes one.
// The returned line is not trimmed.
func (a *LineAssembler) Parse(b byte) (line string, ok bool) {
	if a.buf == nil {
		a.buf = make([]byte, DefaultLineCapacity)
	}
	switch b {
	case '\r':
		return
	case '\n':
		if a.len == 0 {
			return
		}
		line, ok = string(a.buf[:a.len]), true
		a.len = 0
		return
	}
	if a.len >= len(a.buf) {
		// the buffered fragment and this byte are discarded,
		// assembling continues with the next byte.
		a.len = 0
		atomic.AddUint64(&a.overflows, 1)
		return
	}
	a.buf[a.len] = b
	a.len++
	return
}

// Feed consumes a chunk and calls emit for each completed, trimmed and
// non-empty line in order.
func (a *LineAssembler) Feed(chunk []byte, emit func(string)) {
	for _, b := range chunk {
		if line, ok := a.Parse(b); ok {
			if line = TrimLine(line); line != "" {
				emit(line)
			}
		}
	}
}

// Pending returns the length of the in-progress line.
func (a *LineAssembler) Pending() int {
	return a.len
}

// Overflows returns the number of times the buffer was discarded for
// exceeding the capacity.
// It's safe to call concurrently with Parse.
func (a *LineAssembler) Overflows() uint64 {
	return atomic.LoadUint64(&a.overflows)
}

// Reset discards the in-progress line.
func (a *LineAssembler) Reset() {
	a.len = 0
}

const asciiSpace = " \t\r\n\v\f"

// TrimLine removes leading and trailing ASCII whitespace.
func TrimLine(s string) string {
	return strings.Trim(s, asciiSpace)
}
