package status

// Text is a string bounded to a fixed capacity in bytes.
// Writes longer than the capacity are truncated.
type Text struct {
	s   string
	max int
}

// NewText creates an empty Text with capacity max.
func NewText(max int) Text {
	return Text{max: max}
}

// Set replaces the content and reports whether it was truncated.
func (t *Text) Set(s string) (truncated bool) {
	if len(s) > t.max {
		s, truncated = s[:t.max], true
	}
	t.s = s
	return
}

// Append appends s and reports whether it was truncated.
func (t *Text) Append(s string) (truncated bool) {
	room := t.max - len(t.s)
	if len(s) > room {
		s, truncated = s[:room], true
	}
	t.s += s
	return
}

// String implements fmt.Stringer.
func (t Text) String() string { return t.s }

// Len returns the current length in bytes.
func (t Text) Len() int { return len(t.s) }

// Cap returns the capacity in bytes.
func (t Text) Cap() int { return t.max }

// Window capacities.
const (
	// WindowCapacity is the size of the backing store of the decoded text.
	WindowCapacity = 255
	// WindowSize is the number of most recent bytes kept.
	WindowSize = 200
)

// Window is a sliding window over streamed decoded text.
type Window struct {
	buf Text
}

// NewWindow creates an empty Window.
func NewWindow() Window {
	return Window{buf: NewText(WindowCapacity)}
}

// Append concatenates fragment and keeps only the last WindowSize bytes.
// A fragment larger than the remaining backing capacity is truncated first.
func (w *Window) Append(fragment string) (truncated bool) {
	if w.buf.max == 0 {
		w.buf.max = WindowCapacity
	}
	truncated = w.buf.Append(fragment)
	if n := len(w.buf.s); n > WindowSize {
		w.buf.s = w.buf.s[n-WindowSize:]
	}
	return
}

// String implements fmt.Stringer.
func (w Window) String() string { return w.buf.s }

// Len returns the current length in bytes.
func (w Window) Len() int { return len(w.buf.s) }
