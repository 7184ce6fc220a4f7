package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner()
	r.Go(
		NamedRun("waiter", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(ctx context.Context) error { return boom }),
	)
	err := r.Wait()
	require.Error(t, err)
	var agg *AggregatedError
	require.True(t, errors.As(err, &agg))
	require.Equal(t, []error{boom}, agg.Errors)
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

type testCloser struct {
	closed chan struct{}
}

func (c *testCloser) Close() error {
	close(c.closed)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &testCloser{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.closed
		return io.EOF
	})
	require.Equal(t, context.Canceled, err)

	c = &testCloser{closed: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), c, func() error { return io.EOF })
	require.Equal(t, io.EOF, err)
	_, open := <-c.closed
	require.False(t, open)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"), nil, errors.New("b"))
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())

	var one AggregatedError
	require.Equal(t, "a", one.Add(errors.New("a")).Aggregate().Error())
}

func TestRunnerErrorUnwraps(t *testing.T) {
	lost := errors.New("link lost")
	r := NewRunner()
	r.Go(
		RunFunc(func(ctx context.Context) error {
			return fmt.Errorf("read: %w", lost)
		}),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return io.ErrClosedPipe
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, lost))
	require.True(t, errors.Is(err, io.ErrClosedPipe))
	require.False(t, errors.Is(err, io.EOF))
}
