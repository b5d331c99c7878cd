package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreamOrderAndCompletion(t *testing.T) {
	s := newStream()
	go func() {
		ctx := context.Background()
		s.emit(ctx, "a")
		s.emit(ctx, "b")
		s.emit(ctx, "c")
		s.finish(nil)
	}()
	var got []string
	for fragment := range s.Fragments() {
		got = append(got, fragment)
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.NoError(t, s.Err())
}

func TestStreamTerminalError(t *testing.T) {
	boom := errors.New("provider exploded")
	s := newStream()
	go func() {
		s.emit(context.Background(), "partial")
		s.finish(boom)
	}()
	var got []string
	for fragment := range s.Fragments() {
		got = append(got, fragment)
	}
	require.Equal(t, []string{"partial"}, got)
	require.ErrorIs(t, s.Err(), boom)
}

func TestStreamEmitStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newStream()
	// Fill the buffer so the next emit must block, then cancel the consumer.
	for i := 0; i < cap(s.fragments); i++ {
		require.True(t, s.emit(ctx, "x"))
	}
	done := make(chan bool, 1)
	go func() {
		done <- s.emit(ctx, "blocked")
	}()
	cancel()
	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("emit did not observe cancellation")
	}
}
