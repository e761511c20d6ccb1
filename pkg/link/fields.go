package link

import (
	"strconv"
	"strings"

	"github.com/robotalks/cwbridge/pkg/status"
)

// FieldSetter applies the value of a field to the record.
type FieldSetter func(rec *status.Record, val string)

// FieldTable maps field keys to setters.
type FieldTable map[string]FieldSetter

// StatusFields are the keys recognized in STATUS messages.
var StatusFields = FieldTable{
	"LESSON":   IntField(func(r *status.Record) *int { return &r.Lesson }),
	"FREQ":     IntField(func(r *status.Record) *int { return &r.Frequency }),
	"SPEED":    IntField(func(r *status.Record) *int { return &r.Speed }),
	"EFFSPEED": IntField(func(r *status.Record) *int { return &r.EffectiveSpeed }),
	"ACC":      FloatField(func(r *status.Record) *float32 { return &r.Accuracy }),
	"DEC":      BoolField(func(r *status.Record) *bool { return &r.DecoderEnabled }),
	"KOCH":     BoolField(func(r *status.Record) *bool { return &r.KochMode }),
	"WAVE":     TextField(func(r *status.Record) *status.Text { return &r.Waveform }),
	"OUT":      TextField(func(r *status.Record) *status.Text { return &r.Output }),
	"SEND":     BoolField(func(r *status.Record) *bool { return &r.Sending }),
	"LISTEN":   BoolField(func(r *status.Record) *bool { return &r.Listening }),
}

// StatsFields are the keys recognized in STATS messages.
var StatsFields = FieldTable{
	"SESSIONS": UintField(func(r *status.Record) *uint32 { return &r.Sessions }),
	"CHARS":    UintField(func(r *status.Record) *uint32 { return &r.Characters }),
	"BESTWPM":  FloatField(func(r *status.Record) *float32 { return &r.BestWPM }),
}

// IntField creates a setter for an int field.
func IntField(field func(*status.Record) *int) FieldSetter {
	return func(r *status.Record, val string) { *field(r) = Atoi(val) }
}

// UintField creates a setter for a counter. Negative values wrap around
// like the firmware does.
func UintField(field func(*status.Record) *uint32) FieldSetter {
	return func(r *status.Record, val string) { *field(r) = uint32(int32(Atoi(val))) }
}

// FloatField creates a setter for a real field.
func FloatField(field func(*status.Record) *float32) FieldSetter {
	return func(r *status.Record, val string) { *field(r) = Atof(val) }
}

// BoolField creates a setter for a flag, which is true only for "1".
func BoolField(field func(*status.Record) *bool) FieldSetter {
	return func(r *status.Record, val string) { *field(r) = val == "1" }
}

// TextField creates a setter for a bounded text field.
func TextField(field func(*status.Record) *status.Text) FieldSetter {
	return func(r *status.Record, val string) { field(r).Set(val) }
}

// Apply parses fragment and applies recognized fields to rec.
// It returns the number of fields applied.
func (t FieldTable) Apply(rec *status.Record, fragment string) (applied int) {
	SplitFields(fragment, func(key, val string) {
		if set, ok := t[key]; ok {
			set(rec, val)
			applied++
		}
	})
	return
}

// SplitFields splits KEY1=VAL1,KEY2=VAL2,... and calls fn for each pair.
// Parsing stops at the first segment without '='. Keys and values are
// truncated to MaxKeyLen and MaxValueLen.
func SplitFields(fragment string, fn func(key, val string)) {
	for p := fragment; p != ""; {
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			return
		}
		key, rest := p[:eq], p[eq+1:]
		val, next, more := rest, "", false
		if comma := strings.IndexByte(rest, ','); comma >= 0 {
			val, next, more = rest[:comma], rest[comma+1:], true
		}
		if len(key) > MaxKeyLen {
			key = key[:MaxKeyLen]
		}
		if len(val) > MaxValueLen {
			val = val[:MaxValueLen]
		}
		fn(key, val)
		if !more {
			return
		}
		p = next
	}
}

// Atoi converts the longest leading integer of s, ignoring leading
// whitespace. Text without a number gives 0. Out of range values saturate.
func Atoi(s string) int {
	s = strings.TrimLeft(s, asciiSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := scanDigits(s[end:])
	if digits == 0 {
		return 0
	}
	n, _ := strconv.ParseInt(s[:end+digits], 10, 32)
	return int(n)
}

// Atof converts the longest leading decimal number of s, ignoring leading
// whitespace. Text without a number gives 0.
func Atof(s string) float32 {
	s = strings.TrimLeft(s, asciiSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	intDigits := scanDigits(s[end:])
	end += intDigits
	fracDigits := 0
	if end < len(s) && s[end] == '.' {
		fracDigits = scanDigits(s[end+1:])
		if intDigits > 0 || fracDigits > 0 {
			end += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if n := scanDigits(s[exp:]); n > 0 {
			end = exp + n
		}
	}
	f, _ := strconv.ParseFloat(s[:end], 32)
	return float32(f)
}

func scanDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
