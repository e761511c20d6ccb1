package api

import (
	"github.com/robotalks/cwbridge/pkg/link"
	"github.com/robotalks/cwbridge/pkg/status"
)

// StatusView is the JSON form of the status record.
type StatusView struct {
	Lesson         int     `json:"lesson"`
	Frequency      int     `json:"frequency"`
	Speed          int     `json:"speed"`
	EffectiveSpeed int     `json:"effectiveSpeed"`
	Accuracy       float32 `json:"accuracy"`
	DecoderEnabled bool    `json:"decoderEnabled"`
	KochMode       bool    `json:"kochMode"`
	CurrentText    string  `json:"currentText"`
	DecodedText    string  `json:"decodedText"`
	Sessions       uint32  `json:"sessions"`
	Characters     uint32  `json:"characters"`
	BestWPM        float32 `json:"bestWPM"`
	Waveform       string  `json:"waveform"`
	Output         string  `json:"output"`
	Sending        bool    `json:"sending"`
	Listening      bool    `json:"listening"`
}

// NewStatusView converts a record.
func NewStatusView(r *status.Record) *StatusView {
	return &StatusView{
		Lesson:         r.Lesson,
		Frequency:      r.Frequency,
		Speed:          r.Speed,
		EffectiveSpeed: r.EffectiveSpeed,
		Accuracy:       r.Accuracy,
		DecoderEnabled: r.DecoderEnabled,
		KochMode:       r.KochMode,
		CurrentText:    r.CurrentText.String(),
		DecodedText:    r.Decoded.String(),
		Sessions:       r.Sessions,
		Characters:     r.Characters,
		BestWPM:        r.BestWPM,
		Waveform:       r.Waveform.String(),
		Output:         r.Output.String(),
		Sending:        r.Sending,
		Listening:      r.Listening,
	}
}

// StatsView is the JSON form of the counters.
type StatsView struct {
	Sessions   uint32  `json:"sessions"`
	Characters uint32  `json:"characters"`
	BestWPM    float32 `json:"bestWPM"`
}

// NewStatsView converts counters.
func NewStatsView(s status.Stats) *StatsView {
	return &StatsView{Sessions: s.Sessions, Characters: s.Characters, BestWPM: s.BestWPM}
}

// LinkView reports the state of both links.
type LinkView struct {
	State             string `json:"state"`
	PeerReady         bool   `json:"peerReady"`
	NetworkUp         bool   `json:"networkUp"`
	Pings             uint64 `json:"pings"`
	LastLatencyMicros int64  `json:"lastLatencyMicros"`
	Overflows         uint64 `json:"overflows"`
	LastCommand       string `json:"lastCmd"`
}

// NewLinkView combines link telemetry with the record flags.
func NewLinkView(info link.Info, r *status.Record) *LinkView {
	return &LinkView{
		State:             info.State.String(),
		PeerReady:         r.PeerReady,
		NetworkUp:         r.NetworkUp,
		Pings:             info.Pings,
		LastLatencyMicros: info.LastLatency.Nanoseconds() / 1000,
		Overflows:         info.Overflows,
		LastCommand:       info.LastCommand,
	}
}

type controlRequest struct {
	Cmd string `json:"cmd"`
}

type controlView struct {
	LastCommand string `json:"lastCmd"`
}

type okView struct {
	OK bool `json:"ok"`
}
