package link

import (
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cwbridge/pkg/status"
)

// Decoder classifies inbound lines and applies them.
type Decoder struct {
	Store     status.Writer
	Writer    LineWriter
	Keepalive *Keepalive

	dropped uint64
}

// NewDecoder creates a Decoder writing replies to w.
func NewDecoder(store status.Writer, w LineWriter) *Decoder {
	return &Decoder{
		Store:     store,
		Writer:    w,
		Keepalive: NewKeepalive(w, store),
	}
}

// Decode processes one complete trimmed line. Replies are written before
// it returns. The only error is ErrRestartRequested, after which no more
// lines should be decoded.
func (d *Decoder) Decode(line string) error {
	received := time.Now()
	glog.V(1).Infof("RX: %s", line)
	switch {
	case strings.HasPrefix(line, PrefixStatus):
		d.Store.Update(func(r *status.Record) {
			StatusFields.Apply(r, line[len(PrefixStatus):])
		})
	case strings.HasPrefix(line, PrefixDecoded):
		d.Store.Update(func(r *status.Record) {
			r.Decoded.Append(line[len(PrefixDecoded):])
		})
	case strings.HasPrefix(line, PrefixCurrent):
		d.Store.Update(func(r *status.Record) {
			if r.CurrentText.Set(line[len(PrefixCurrent):]) {
				glog.V(2).Info("current text truncated")
			}
		})
	case strings.HasPrefix(line, PrefixStats):
		d.Store.Update(func(r *status.Record) {
			StatsFields.Apply(r, line[len(PrefixStats):])
		})
	case strings.HasPrefix(line, MsgPing):
		d.logWriteErr(d.Keepalive.HandlePing(received))
	case strings.HasPrefix(line, MsgResetReq):
		glog.Warning("restart requested by peer")
		glog.V(1).Infof("TX: %s", MsgResetting)
		d.logWriteErr(d.Writer.WriteLine(MsgResetting))
		return ErrRestartRequested
	case strings.HasPrefix(line, MsgReadyPeer):
		d.logWriteErr(d.Keepalive.HandleReady())
	default:
		d.dropped++
		glog.V(1).Infof("unrecognized line dropped: %q", line)
	}
	return nil
}

// Dropped returns the number of unrecognized lines.
// Only meaningful from the decoding goroutine.
func (d *Decoder) Dropped() uint64 {
	return d.dropped
}

func (d *Decoder) logWriteErr(err error) {
	if err != nil {
		glog.Warningf("write error: %v", err)
	}
}
