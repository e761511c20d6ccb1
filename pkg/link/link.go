package link

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cwbridge/pkg/status"
)

// Info is a summary of the link for reporting.
type Info struct {
	State       LinkState
	Pings       uint64
	LastLatency time.Duration
	Overflows   uint64
	LastCommand string
}

// Link runs the protocol over a serial stream.
// Run is the only writer of the status record; SendCommand may be called
// from any goroutine.
type Link struct {
	ReadWriter  io.ReadWriter
	Decoder     *Decoder
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read

	assembler LineAssembler

	sendLock sync.Mutex
	lastCmd  status.Text
}

// New creates a Link applying decoded messages to store.
func New(rw io.ReadWriter, store status.Writer) *Link {
	l := &Link{
		ReadWriter: rw,
		lastCmd:    status.NewText(LastCommandCap),
	}
	l.assembler.buf = make([]byte, DefaultLineCapacity)
	l.Decoder = NewDecoder(store, l)
	return l
}

// WriteLine implements LineWriter.
func (l *Link) WriteLine(line string) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	return l.writeLine(line)
}

func (l *Link) writeLine(line string) error {
	_, err := io.WriteString(l.ReadWriter, line+"\n")
	return err
}

// SendCommand forwards an opaque control command to the peer.
func (l *Link) SendCommand(cmd string) error {
	if cmd == "" {
		return ErrCommandEmpty
	}
	if len(cmd) > MaxCommandLen {
		return &CommandTooLongError{Len: len(cmd)}
	}
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	glog.V(1).Infof("TX: %s", cmd)
	if err := l.writeLine(cmd); err != nil {
		return err
	}
	l.lastCmd.Set(cmd)
	return nil
}

// LastCommand returns the last command sent, truncated.
func (l *Link) LastCommand() string {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	return l.lastCmd.String()
}

// Info reports link telemetry.
func (l *Link) Info() Info {
	k := l.Decoder.Keepalive
	return Info{
		State:       k.State(),
		Pings:       k.Pings(),
		LastLatency: k.LastLatency(),
		Overflows:   l.assembler.Overflows(),
		LastCommand: l.LastCommand(),
	}
}

// Run announces readiness and processes the stream until ctx is done,
// the stream fails or the peer requests a restart.
func (l *Link) Run(ctx context.Context) error {
	if err := l.Decoder.Keepalive.Announce(); err != nil {
		return err
	}

	if l.ReadTimeout {
		buf := make([]byte, ReadChunkSize)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n, err := l.ReadWriter.Read(buf)
			if n > 0 {
				if err := l.consume(buf[:n]); err != nil {
					return err
				}
			}
			if err != nil && !isReadTimeout(err) {
				return err
			}
		}
	}

	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, chunkCh, errCh)
	for {
		select {
		case chunk := <-chunkCh:
			if err := l.consume(chunk); err != nil {
				return err
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) readLoop(ctx context.Context, chunkCh chan []byte, errCh chan error) {
	buf := make([]byte, ReadChunkSize)
	for {
		n, err := l.ReadWriter.Read(buf)
		if n > 0 {
			select {
			case chunkCh <- append([]byte(nil), buf[:n]...):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (l *Link) consume(chunk []byte) (err error) {
	glog.V(2).Infof("read %d bytes", len(chunk))
	overflows := l.assembler.Overflows()
	l.assembler.Feed(chunk, func(line string) {
		if err == nil {
			err = l.Decoder.Decode(line)
		}
	})
	if n := l.assembler.Overflows(); n != overflows {
		glog.Warningf("line exceeds %d bytes, buffer discarded", len(l.assembler.buf))
	}
	return
}

// isReadTimeout tells if a read error only means no data arrived in time.
// tarm/serial reports a read timeout as io.EOF.
func isReadTimeout(err error) bool {
	return err == io.EOF || os.IsTimeout(err)
}
