package ai

import "context"

// Stream is a live, append-only sequence of text fragments produced by one
// streamed completion. It is single-producer single-consumer: the provider
// goroutine emits fragments until the model finishes or fails, the consumer
// ranges over Fragments and reads Err afterwards. Abandoning the consumer
// context stops the producer; already-emitted fragments are not retracted.
type Stream struct {
	fragments chan string
	err       error
}

func newStream() *Stream {
	return &Stream{fragments: make(chan string, 16)}
}

// Fragments yields fragments in emission order. The channel closes when the
// model signals completion, the provider fails, or the consumer cancels.
func (s *Stream) Fragments() <-chan string {
	return s.fragments
}

// Err reports the terminal stream error. Only valid once Fragments is closed.
func (s *Stream) Err() error {
	return s.err
}

// emit pushes one fragment, giving up when the consumer is gone.
func (s *Stream) emit(ctx context.Context, text string) bool {
	select {
	case s.fragments <- text:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish must be called exactly once by the producer.
func (s *Stream) finish(err error) {
	s.err = err
	close(s.fragments)
}
