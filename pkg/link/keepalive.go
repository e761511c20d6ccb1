package link

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cwbridge/pkg/status"
)

// LineWriter writes one outbound line, the newline is appended.
type LineWriter interface {
	WriteLine(string) error
}

// WriteLineFunc is func form of LineWriter.
type WriteLineFunc func(string) error

// WriteLine implements LineWriter.
func (f WriteLineFunc) WriteLine(line string) error {
	return f(line)
}

// LinkState is the state of the readiness handshake.
type LinkState int32

const (
	// LinkDown means the peer hasn't announced readiness.
	LinkDown LinkState = iota
	// LinkUp means the peer announced readiness.
	LinkUp
)

// String implements fmt.Stringer.
func (s LinkState) String() string {
	if s == LinkUp {
		return "up"
	}
	return "down"
}

// Keepalive answers PING and readiness announcements.
// The handshake state is the PeerReady flag of the record: there's no
// local timeout, only a record reset brings it down.
type Keepalive struct {
	Writer LineWriter
	Store  status.Writer

	pings       uint64
	lastLatency int64
}

// NewKeepalive creates a Keepalive.
func NewKeepalive(w LineWriter, store status.Writer) *Keepalive {
	return &Keepalive{Writer: w, Store: store}
}

// State returns the handshake state.
func (k *Keepalive) State() LinkState {
	if k.peerReady() {
		return LinkUp
	}
	return LinkDown
}

func (k *Keepalive) peerReady() (ready bool) {
	k.Store.View(func(r *status.Record) { ready = r.PeerReady })
	return
}

// Pings returns the number of PINGs answered.
func (k *Keepalive) Pings() uint64 {
	return atomic.LoadUint64(&k.pings)
}

// LastLatency returns the time taken to answer the last PING.
func (k *Keepalive) LastLatency() time.Duration {
	return time.Duration(atomic.LoadInt64(&k.lastLatency))
}

// Announce tells the peer the bridge is ready.
func (k *Keepalive) Announce() error {
	glog.V(1).Infof("TX: %s", MsgReadyBridge)
	return k.Writer.WriteLine(MsgReadyBridge)
}

// HandlePing replies PONG to a PING received at the given time.
func (k *Keepalive) HandlePing(received time.Time) error {
	err := k.Writer.WriteLine(MsgPong)
	latency := time.Since(received)
	if latency < 0 {
		latency = 0
	}
	atomic.StoreInt64(&k.lastLatency, int64(latency))
	atomic.AddUint64(&k.pings, 1)
	glog.V(1).Infof("TX: PONG (latency %v)", latency)
	return err
}

// HandleReady marks the peer ready and acknowledges with PONG.
func (k *Keepalive) HandleReady() error {
	if !k.peerReady() {
		k.Store.Update(func(r *status.Record) { r.PeerReady = true })
		glog.Info("peer ready, link up")
	}
	glog.V(1).Info("TX: PONG")
	return k.Writer.WriteLine(MsgPong)
}
