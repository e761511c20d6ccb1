package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerStopsAllOnError(t *testing.T) {
	errBoom := errors.New("boom")
	r := NewRunner()
	r.Go(
		NamedRun("blocker", RunnableFunc(blockUntilDone)),
		NamedRun("failer", RunnableFunc(func(context.Context) error { return errBoom })),
	)
	done := make(chan error, 1)
	go func() { done <- r.Wait() }()
	select {
	case err := <-done:
		require.Error(t, err)
		require.True(t, HasError(err, errBoom))
		require.Equal(t, "boom", err.Error())
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(RunnableFunc(blockUntilDone), RunnableFunc(blockUntilDone))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	e1, e2 := errors.New("e1"), errors.New("e2")
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil, e1, e2)
	err := errs.Aggregate()
	require.Error(t, err)
	require.Equal(t, "Multiple errors:\ne1\ne2", err.Error())
	require.True(t, HasError(err, e2))
	require.False(t, HasError(err, errors.New("e1")))
	require.True(t, HasError(e1, e1))
}

type closeRecorder struct {
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	var c closeRecorder
	err := RunWithContextCloser(context.Background(), &c, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, c.closed)

	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	var c2 closeRecorder
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err = RunWithContextCloser(ctx, closerFunc(func() error {
		c2.closed++
		close(unblock)
		return nil
	}), func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c2.closed)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}
