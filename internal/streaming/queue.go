package streaming

import "sync"

// stream adapts push callbacks into a receive channel. push never blocks the
// session goroutine: updates land in an unbounded buffer drained by a single
// forwarding goroutine. A slow consumer grows the buffer instead of stalling
// the connection.
type stream[T any] struct {
	mu     sync.Mutex
	buf    []T
	wake   chan struct{}
	out    chan T
	closed bool
}

func newStream[T any]() *stream[T] {
	s := &stream[T]{
		wake: make(chan struct{}, 1),
		out:  make(chan T),
	}
	go s.forward()
	return s
}

// push appends one update. Safe to call concurrently; no-op after close.
func (s *stream[T]) push(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, v)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// channel is the consumer side. It is closed after close.
func (s *stream[T]) channel() <-chan T {
	return s.out
}

// close stops the stream. Every update still buffered is delivered before
// the channel closes; the consumer is expected to drain until then.
func (s *stream[T]) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *stream[T]) forward() {
	defer close(s.out)

	for {
		<-s.wake

		for {
			s.mu.Lock()
			if len(s.buf) == 0 {
				closed := s.closed
				s.mu.Unlock()
				if closed {
					return
				}
				break
			}
			v := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()

			s.out <- v
		}
	}
}
