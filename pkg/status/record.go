// Package status holds the canonical trainer state shared between the
// serial link and network-facing readers.
package status

// Text field capacities in bytes.
const (
	CurrentTextCap = 127
	WaveformCap    = 15
	OutputCap      = 15
)

// Default values restored by Reset.
const (
	DefaultFrequency      = 600
	DefaultSpeed          = 20
	DefaultEffectiveSpeed = 13
	DefaultWaveform       = "Sine"
	DefaultOutput         = "Headphones"
)

// Record is the trainer session state.
type Record struct {
	Lesson         int
	Frequency      int
	Speed          int
	EffectiveSpeed int
	Accuracy       float32

	DecoderEnabled bool
	KochMode       bool
	Sending        bool
	Listening      bool

	CurrentText Text
	Decoded     Window
	Waveform    Text
	Output      Text

	Sessions   uint32
	Characters uint32
	BestWPM    float32

	// NetworkUp is true while the network API is serving.
	NetworkUp bool
	// PeerReady is true once the trainer announced readiness.
	PeerReady bool

	// Version increases on every change.
	Version uint64
}

// Stats is the cumulative counters subset of a Record.
type Stats struct {
	Sessions   uint32
	Characters uint32
	BestWPM    float32
}

// Defaults returns a Record with default values.
func Defaults() Record {
	r := Record{
		Frequency:      DefaultFrequency,
		Speed:          DefaultSpeed,
		EffectiveSpeed: DefaultEffectiveSpeed,
		CurrentText:    NewText(CurrentTextCap),
		Decoded:        NewWindow(),
		Waveform:       NewText(WaveformCap),
		Output:         NewText(OutputCap),
	}
	r.Waveform.Set(DefaultWaveform)
	r.Output.Set(DefaultOutput)
	return r
}

// Stats extracts the counters.
func (r Record) Stats() Stats {
	return Stats{
		Sessions:   r.Sessions,
		Characters: r.Characters,
		BestWPM:    r.BestWPM,
	}
}
