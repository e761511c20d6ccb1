package link

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cwbridge/pkg/status"
)

type testStream struct {
	readCh  chan []byte
	writeCh chan string
	timeout bool

	lock    sync.Mutex
	pending []byte
	unread  []byte
}

func newTestStream() *testStream {
	return &testStream{
		readCh:  make(chan []byte, 16),
		writeCh: make(chan string, 64),
	}
}

func (s *testStream) Read(p []byte) (int, error) {
	if len(s.unread) == 0 {
		if s.timeout {
			select {
			case chunk, ok := <-s.readCh:
				if !ok {
					return 0, io.ErrClosedPipe
				}
				s.unread = chunk
			case <-time.After(10 * time.Millisecond):
				return 0, io.EOF
			}
		} else {
			chunk, ok := <-s.readCh
			if !ok {
				return 0, io.EOF
			}
			s.unread = chunk
		}
	}
	n := copy(p, s.unread)
	s.unread = s.unread[n:]
	return n, nil
}

// Write splits written bytes into lines.
func (s *testStream) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pending = append(s.pending, p...)
	for {
		idx := strings.IndexByte(string(s.pending), '\n')
		if idx < 0 {
			break
		}
		s.writeCh <- string(s.pending[:idx])
		s.pending = s.pending[idx+1:]
	}
	return len(p), nil
}

func (s *testStream) inject(data string) {
	s.readCh <- []byte(data)
}

type linkTestCtx struct {
	t      *testing.T
	stream *testStream
	store  *status.Store
	link   *Link
	errCh  chan error
	cancel func()
}

func startLink(t *testing.T, readTimeout bool) *linkTestCtx {
	tctx := &linkTestCtx{
		t:      t,
		stream: newTestStream(),
		store:  status.NewStore(),
		errCh:  make(chan error, 1),
	}
	tctx.stream.timeout = readTimeout
	tctx.link = New(tctx.stream, tctx.store)
	tctx.link.ReadTimeout = readTimeout
	var ctx context.Context
	ctx, tctx.cancel = context.WithCancel(context.Background())
	go func() {
		tctx.errCh <- tctx.link.Run(ctx)
	}()
	return tctx.expectWrite(MsgReadyBridge)
}

func (c *linkTestCtx) expectWrite(lines ...string) *linkTestCtx {
	for n, expected := range lines {
		select {
		case line := <-c.stream.writeCh:
			require.Equalf(c.t, expected, line, "write[%d] mismatch", n)
		case <-time.After(500 * time.Millisecond):
			c.t.Fatalf("write[%d] %q timeout", n, expected)
		}
	}
	return c
}

func (c *linkTestCtx) expectNoWrite() *linkTestCtx {
	select {
	case line := <-c.stream.writeCh:
		c.t.Fatalf("unexpected write %q", line)
	case <-time.After(20 * time.Millisecond):
	}
	return c
}

func (c *linkTestCtx) waitVersion(version uint64) status.Record {
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if c.store.Version() >= version {
			return c.store.Snapshot()
		}
		time.Sleep(time.Millisecond)
	}
	c.t.Fatalf("version %d not reached", version)
	return status.Record{}
}

func (c *linkTestCtx) stop() error {
	c.cancel()
	select {
	case err := <-c.errCh:
		return err
	case <-time.After(500 * time.Millisecond):
		c.t.Fatal("link not stopped")
	}
	return nil
}

func TestLinkRun(t *testing.T) {
	for _, readTimeout := range []bool{false, true} {
		name := "blocking"
		if readTimeout {
			name = "read timeout"
		}
		t.Run(name, func(t *testing.T) {
			tctx := startLink(t, readTimeout)
			tctx.stream.inject("TEENSY:READY\r\nSTATUS:LES")
			tctx.expectWrite(MsgPong)
			tctx.stream.inject("SON=5,FREQ=650\r\nPI")
			r := tctx.waitVersion(2)
			require.True(t, r.PeerReady)
			require.Equal(t, 5, r.Lesson)
			require.Equal(t, 650, r.Frequency)
			tctx.stream.inject("NG\r\n")
			tctx.expectWrite(MsgPong).expectNoWrite()
			require.Equal(t, LinkUp, tctx.link.Info().State)
			require.EqualValues(t, 1, tctx.link.Info().Pings)
			require.Equal(t, context.Canceled, tctx.stop())
		})
	}
}

func TestLinkPingOrdering(t *testing.T) {
	tctx := startLink(t, false)
	tctx.stream.inject("PING\nPING\nRESET_ESP\nPING\n")
	tctx.expectWrite(MsgPong, MsgPong, MsgResetting).expectNoWrite()
	select {
	case err := <-tctx.errCh:
		require.Equal(t, ErrRestartRequested, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("link not stopped on restart")
	}
}

func TestLinkOverflow(t *testing.T) {
	tctx := startLink(t, false)
	tctx.stream.inject(strings.Repeat("X", DefaultLineCapacity+10) + "\nPING\n")
	tctx.expectWrite(MsgPong)
	require.EqualValues(t, 1, tctx.link.Info().Overflows)
	tctx.stop()
}

func TestLinkStreamClosed(t *testing.T) {
	tctx := startLink(t, false)
	close(tctx.stream.readCh)
	select {
	case err := <-tctx.errCh:
		require.Equal(t, io.EOF, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("link not stopped")
	}
}

func TestSendCommand(t *testing.T) {
	stream := newTestStream()
	l := New(stream, status.NewStore())
	require.Equal(t, ErrCommandEmpty, l.SendCommand(""))
	err := l.SendCommand(strings.Repeat("a", MaxCommandLen+1))
	require.IsType(t, &CommandTooLongError{}, err)
	require.Empty(t, l.LastCommand())

	require.NoError(t, l.SendCommand("SPEED=25"))
	require.Equal(t, "SPEED=25", <-stream.writeCh)
	require.Equal(t, "SPEED=25", l.LastCommand())

	long := strings.Repeat("b", MaxCommandLen)
	require.NoError(t, l.SendCommand(long))
	require.Equal(t, long, <-stream.writeCh)
	require.Equal(t, long[:LastCommandCap], l.LastCommand())
}

func TestConsole(t *testing.T) {
	stream := newTestStream()
	stream.timeout = true
	c := &Console{Reader: stream, Prefix: "console: ", ReadTimeout: true}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	stream.inject("  boot ok\r\n")
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("console not stopped")
	}
}
