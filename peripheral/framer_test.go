// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package peripheral

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/rtcore/queue"
	"github.com/xmidt-org/rtcore/wait"
	"go.uber.org/zap/zaptest"
)

func drainLines(t *testing.T, q *queue.Queue) []string {
	var lines []string
	for q.Len() > 0 {
		item, err := q.Get(context.Background(), wait.NoWait)
		require.NoError(t, err)
		lines = append(lines, string(bytes.TrimRight(item, "\x00")))
	}

	return lines
}

func TestFramerLines(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q, err  = queue.New(10, 32)
	)

	require.NoError(err)
	f := NewFramer(strings.NewReader("hello\r\n\r\nworld\nno terminator"), q)
	require.NoError(f.Run(context.Background()))
	assert.Equal([]string{"hello", "world"}, drainLines(t, q))
}

func TestFramerTruncates(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		q, err  = queue.New(10, 8)
	)

	require.NoError(err)
	f := NewFramer(strings.NewReader("abcdefghijkl\nxy\n"), q)
	require.NoError(f.Run(context.Background()))
	assert.Equal([]string{"abcdefg", "xy"}, drainLines(t, q))
}

func TestFramerDropsWhenFull(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		dropped = generic.NewCounter("dropped")
		q, err  = queue.New(2, 8)
	)

	require.NoError(err)
	f := NewFramer(
		strings.NewReader("1\n2\n3\n4\n"),
		q,
		WithDropped(dropped),
		WithFramerLogger(zaptest.NewLogger(t)),
	)

	require.NoError(f.Run(context.Background()))
	assert.Equal(2.0, dropped.Value())
	assert.Equal([]string{"1", "2"}, drainLines(t, q))
}

func TestFramerCanceled(t *testing.T) {
	var (
		assert      = assert.New(t)
		require     = require.New(t)
		q, err      = queue.New(2, 8)
		ctx, cancel = context.WithCancel(context.Background())
		reader, w   = io.Pipe()
		result      = make(chan error, 1)
	)

	require.NoError(err)
	f := NewFramer(reader, q)
	go func() {
		result <- f.Run(ctx)
	}()

	_, err = w.Write([]byte("a\n"))
	require.NoError(err)
	require.Eventually(func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-result:
		assert.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		assert.FailNow("Run ignored cancellation on an idle source")
	}
}

func TestFramerResumes(t *testing.T) {
	var (
		assert      = assert.New(t)
		require     = require.New(t)
		q, err      = queue.New(4, 8)
		ctx, cancel = context.WithCancel(context.Background())
		reader, w   = io.Pipe()
		f           = NewFramer(reader, q)
	)

	require.NoError(err)
	cancel()
	assert.ErrorIs(f.Run(ctx), context.Canceled)

	written := make(chan error, 1)
	go func() {
		_, err := w.Write([]byte("ab\ncd\n"))
		if err == nil {
			err = w.Close()
		}

		written <- err
	}()

	result := make(chan error, 1)
	go func() {
		result <- f.Run(context.Background())
	}()

	select {
	case err := <-result:
		assert.NoError(err)
	case <-time.After(time.Second):
		assert.FailNow("Run did not reach the end of the source")
	}

	require.NoError(<-written)
	assert.Equal([]string{"ab", "cd"}, drainLines(t, q))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errNotReady
}

func TestFramerReadError(t *testing.T) {
	q, err := queue.New(2, 8)
	require.NoError(t, err)
	assert.ErrorIs(t, NewFramer(failingReader{}, q).Run(context.Background()), errNotReady)
}
