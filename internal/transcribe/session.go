package transcribe

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillsenselab/tina-api/pkg/logger"
)

// ErrNoSpeech is returned when a recognition session ends without any
// recognized fragments.
var ErrNoSpeech = errors.New("no speech could be recognized")

// DefaultSessionTimeout bounds how long a session waits for the backend to
// finish before stopping it and returning whatever was recognized.
const DefaultSessionTimeout = 30 * time.Second

// State is the lifecycle state of a recognition session.
type State int

const (
	// StateIdle is the state before the session starts consuming events.
	StateIdle State = iota
	// StateStarted means the session is consuming the event stream.
	StateStarted
	// StateRecognizing means at least one fragment has been recognized.
	StateRecognizing
	// StateStopped is terminal.
	StateStopped
)

// EventType identifies a recognition session event.
type EventType int

const (
	// EventRecognized carries a recognized text fragment.
	EventRecognized EventType = iota
	// EventCanceled signals the backend aborted the session.
	EventCanceled
	// EventSessionStopped signals the backend finished the session.
	EventSessionStopped
)

// Event is a single occurrence in a recognition session.
type Event struct {
	Type EventType
	// Text is the recognized fragment for EventRecognized.
	Text string
	// Reason carries cancellation detail for EventCanceled.
	Reason string
}

// Stream delivers recognition events for one session. The channel is closed
// when the backend session ends.
type Stream interface {
	Events() <-chan Event
	// Stop aborts the underlying session. Safe to call more than once.
	Stop()
}

// Session consumes a recognition event stream and composes the transcript.
// Fragments are buffered append-only in arrival order, which is
// chronological in the audio; none is ever dropped or reordered.
type Session struct {
	stream    Stream
	timeout   time.Duration
	log       *logger.Logger
	state     State
	fragments []string
}

// NewSession creates a session over stream. A non-positive timeout falls
// back to DefaultSessionTimeout.
func NewSession(stream Stream, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &Session{
		stream:  stream,
		timeout: timeout,
		log:     logger.WithComponent("transcribe.session"),
		state:   StateIdle,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Wait blocks until the stream ends, the timeout elapses, or ctx is done,
// then unconditionally stops the stream. Timeout and cancellation degrade
// silently: whatever was recognized so far becomes the transcript. An empty
// buffer yields ErrNoSpeech.
func (s *Session) Wait(ctx context.Context) (string, error) {
	s.state = StateStarted

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	defer s.stream.Stop()

	for {
		select {
		case ev, ok := <-s.stream.Events():
			if !ok {
				return s.finish()
			}
			switch ev.Type {
			case EventRecognized:
				if ev.Text != "" {
					s.fragments = append(s.fragments, ev.Text)
					s.state = StateRecognizing
				}
			case EventCanceled:
				s.log.Warn("recognition canceled", logger.Fields("reason", ev.Reason))
				return s.finish()
			case EventSessionStopped:
				return s.finish()
			}
		case <-timer.C:
			s.log.Warn("recognition timed out", logger.Fields(
				"timeout", s.timeout.String(),
				"fragments", len(s.fragments),
			))
			return s.finish()
		case <-ctx.Done():
			s.log.Debug("recognition context done", logger.Fields("cause", ctx.Err().Error()))
			return s.finish()
		}
	}
}

func (s *Session) finish() (string, error) {
	s.state = StateStopped
	if len(s.fragments) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(s.fragments, " "), nil
}
