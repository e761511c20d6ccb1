package status

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextSet(t *testing.T) {
	txt := NewText(4)
	require.False(t, txt.Set("abcd"))
	require.Equal(t, "abcd", txt.String())
	require.True(t, txt.Set("abcdef"))
	require.Equal(t, "abcd", txt.String())
	require.Equal(t, 4, txt.Len())
	require.Equal(t, 4, txt.Cap())
}

func TestTextAppend(t *testing.T) {
	txt := NewText(5)
	require.False(t, txt.Append("ab"))
	require.True(t, txt.Append("cdef"))
	require.Equal(t, "abcde", txt.String())
	require.True(t, txt.Append("x"))
	require.Equal(t, "abcde", txt.String())
}

func TestWindowKeepsLatest(t *testing.T) {
	var all strings.Builder
	w := NewWindow()
	for i := 0; i < 5; i++ {
		frag := strings.Repeat(string(rune('a'+i)), 50)
		all.WriteString(frag)
		require.False(t, w.Append(frag))
	}
	require.Equal(t, 250, all.Len())
	require.Equal(t, WindowSize, w.Len())
	require.Equal(t, all.String()[50:], w.String())
}

func TestWindowTruncatesLargeFragment(t *testing.T) {
	w := NewWindow()
	w.Append(strings.Repeat("a", WindowSize))
	// only WindowCapacity-WindowSize bytes of the fragment fit.
	require.True(t, w.Append(strings.Repeat("b", 100)))
	expected := strings.Repeat("a", WindowSize-(WindowCapacity-WindowSize)) +
		strings.Repeat("b", WindowCapacity-WindowSize)
	require.Equal(t, expected, w.String())
}

func TestWindowZeroValue(t *testing.T) {
	var w Window
	w.Append("hello")
	require.Equal(t, "hello", w.String())
}
