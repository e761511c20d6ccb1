package link

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cwbridge/pkg/status"
)

type kv struct{ key, val string }

func splitAll(fragment string) []kv {
	var pairs []kv
	SplitFields(fragment, func(key, val string) {
		pairs = append(pairs, kv{key, val})
	})
	return pairs
}

func TestSplitFields(t *testing.T) {
	testCases := []struct {
		in     string
		expect []kv
	}{
		{"", nil},
		{"LESSON=5", []kv{{"LESSON", "5"}}},
		{"LESSON=5,FREQ=650", []kv{{"LESSON", "5"}, {"FREQ", "650"}}},
		{"A=1,", []kv{{"A", "1"}}},
		{"A=1,B,C=3", []kv{{"A", "1"}, {"B,C", "3"}}},
		{"A=1,garbage", []kv{{"A", "1"}}},
		{"noequals", nil},
		{"A=,B=2", []kv{{"A", ""}, {"B", "2"}}},
		{"=7", []kv{{"", "7"}}},
		{"A=x=y", []kv{{"A", "x=y"}}},
		{strings.Repeat("K", 20) + "=" + strings.Repeat("v", 40),
			[]kv{{strings.Repeat("K", MaxKeyLen), strings.Repeat("v", MaxValueLen)}}},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, splitAll(tc.in), "input %q", tc.in)
	}
}

func TestAtoi(t *testing.T) {
	testCases := []struct {
		in     string
		expect int
	}{
		{"0", 0}, {"42", 42}, {"-7", -7}, {"+3", 3}, {"  12", 12},
		{"12abc", 12}, {"abc", 0}, {"", 0}, {"-", 0}, {"1.9", 1},
		{"99999999999", 2147483647},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, Atoi(tc.in), "input %q", tc.in)
	}
}

func TestAtof(t *testing.T) {
	testCases := []struct {
		in     string
		expect float32
	}{
		{"0", 0}, {"87.5", 87.5}, {"-2.25", -2.25}, {" 3", 3}, {"5.", 5},
		{".5", 0.5}, {"1e2", 100}, {"1e", 1}, {"2.5x", 2.5}, {"abc", 0},
		{"", 0}, {".", 0}, {"-.", 0},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, Atof(tc.in), "input %q", tc.in)
	}
}

func TestStatusFields(t *testing.T) {
	r := status.Defaults()
	n := StatusFields.Apply(&r, "LESSON=5,FREQ=650,DEC=1")
	require.Equal(t, 3, n)

	expected := status.Defaults()
	expected.Lesson, expected.Frequency, expected.DecoderEnabled = 5, 650, true
	require.Equal(t, expected, r)
}

func TestStatusFieldsAll(t *testing.T) {
	r := status.Defaults()
	StatusFields.Apply(&r, "LESSON=12,FREQ=700,SPEED=25,EFFSPEED=18,ACC=93.5,DEC=1,KOCH=1,"+
		"WAVE=Square,OUT=SpeakerAndHeadphones,SEND=1,LISTEN=0,UNKNOWN=1")
	require.Equal(t, 12, r.Lesson)
	require.Equal(t, 700, r.Frequency)
	require.Equal(t, 25, r.Speed)
	require.Equal(t, 18, r.EffectiveSpeed)
	require.Equal(t, float32(93.5), r.Accuracy)
	require.True(t, r.DecoderEnabled)
	require.True(t, r.KochMode)
	require.Equal(t, "Square", r.Waveform.String())
	require.Equal(t, "SpeakerAndHeadp", r.Output.String())
	require.True(t, r.Sending)
	require.False(t, r.Listening)
}

func TestStatusFieldsPermissive(t *testing.T) {
	r := status.Defaults()
	StatusFields.Apply(&r, "SPEED=abc,DEC=yes")
	require.Equal(t, 0, r.Speed)
	require.False(t, r.DecoderEnabled)
}

func TestStatsFields(t *testing.T) {
	r := status.Defaults()
	require.Equal(t, 3, StatsFields.Apply(&r, "SESSIONS=4,CHARS=1234,BESTWPM=22.5,LESSON=9"))
	require.Equal(t, status.Stats{Sessions: 4, Characters: 1234, BestWPM: 22.5}, r.Stats())
	require.Zero(t, r.Lesson)

	StatsFields.Apply(&r, "CHARS=-1")
	require.Equal(t, uint32(0xffffffff), r.Characters)
}
