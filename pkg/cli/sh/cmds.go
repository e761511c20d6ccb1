package sh

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"
	humanize "github.com/dustin/go-humanize"

	"github.com/robotalks/cwbridge/pkg/api"
)

var (
	// StatusCmd shows the trainer status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "show trainer status",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ctx, cancel := s.Context()
			defer cancel()
			st, err := s.Client.Status(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, st, FormatStatus(st))
		},
	}

	// StatsCmd shows the training statistics.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "show training statistics",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ctx, cancel := s.Context()
			defer cancel()
			st, err := s.Client.Stats(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, st, FormatStats(st))
		},
	}

	// LinkCmd shows the serial link telemetry.
	LinkCmd = ishell.Cmd{
		Name: "link",
		Help: "show serial link state",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ctx, cancel := s.Context()
			defer cancel()
			info, err := s.Client.Link(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, info, FormatLink(info))
		},
	}

	// SendCmd forwards a control command to the trainer.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"cmd"},
		Help:    "COMMAND",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("command expected"))
				return
			}
			s := ShellFrom(c)
			ctx, cancel := s.Context()
			defer cancel()
			if err := s.Client.SendCommand(ctx, strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]bool{"ok": true}, "OK")
		},
	}

	// LastCmd shows the last forwarded command.
	LastCmd = ishell.Cmd{
		Name: "last",
		Help: "show last forwarded command",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ctx, cancel := s.Context()
			defer cancel()
			cmd, err := s.Client.LastCommand(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]string{"lastCmd": cmd}, cmd)
		},
	}

	// ResetStatsCmd resets the status record.
	ResetStatsCmd = ishell.Cmd{
		Name: "reset-stats",
		Help: "reset statistics and status to defaults",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ctx, cancel := s.Context()
			defer cancel()
			if err := s.Client.ResetStats(ctx); err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]bool{"ok": true}, "OK")
		},
	}
)

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// FormatStatus prints the status for display.
func FormatStatus(st *api.StatusView) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "lesson %d, %d Hz, %d/%d WPM, accuracy %.1f%%\n",
		st.Lesson, st.Frequency, st.Speed, st.EffectiveSpeed, st.Accuracy)
	fmt.Fprintf(&w, "decoder %s, koch %s, sending %s, listening %s\n",
		onOff(st.DecoderEnabled), onOff(st.KochMode), onOff(st.Sending), onOff(st.Listening))
	fmt.Fprintf(&w, "waveform %s, output %s\n", st.Waveform, st.Output)
	fmt.Fprintf(&w, "current: %s\n", st.CurrentText)
	fmt.Fprintf(&w, "decoded: %s", st.DecodedText)
	return w.String()
}

// FormatStats prints the statistics for display.
func FormatStats(st *api.StatsView) string {
	return fmt.Sprintf("%s sessions, %s characters, best %.1f WPM",
		humanize.Comma(int64(st.Sessions)), humanize.Comma(int64(st.Characters)), st.BestWPM)
}

// FormatLink prints link telemetry for display.
func FormatLink(info *api.LinkView) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "link %s, peer ready %s, network %s\n",
		info.State, onOff(info.PeerReady), onOff(info.NetworkUp))
	fmt.Fprintf(&w, "%s pings, last latency %dus, %s overflows",
		humanize.Comma(int64(info.Pings)), info.LastLatencyMicros, humanize.Comma(int64(info.Overflows)))
	if info.LastCommand != "" {
		fmt.Fprintf(&w, "\nlast command: %s", info.LastCommand)
	}
	return w.String()
}
