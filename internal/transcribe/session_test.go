package transcribe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillsenselab/tina-api/internal/transcribe"
)

// fakeStream replays a fixed sequence of events and records Stop calls.
type fakeStream struct {
	events  chan transcribe.Event
	stopped bool
}

func newFakeStream(events ...transcribe.Event) *fakeStream {
	ch := make(chan transcribe.Event, len(events)+1)
	for _, ev := range events {
		ch <- ev
	}
	return &fakeStream{events: ch}
}

func (f *fakeStream) Events() <-chan transcribe.Event { return f.events }

func (f *fakeStream) Stop() { f.stopped = true }

func recognized(text string) transcribe.Event {
	return transcribe.Event{Type: transcribe.EventRecognized, Text: text}
}

func stopped() transcribe.Event {
	return transcribe.Event{Type: transcribe.EventSessionStopped}
}

func TestSessionWait_JoinsFragmentsInOrder(t *testing.T) {
	stream := newFakeStream(recognized("hello"), recognized("world"), stopped())
	session := transcribe.NewSession(stream, time.Second)

	text, err := session.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", text)
	}
	if !stream.stopped {
		t.Error("expected stream to be stopped")
	}
	if session.State() != transcribe.StateStopped {
		t.Errorf("expected terminal state, got %v", session.State())
	}
}

func TestSessionWait_EmptyBufferIsNoSpeech(t *testing.T) {
	stream := newFakeStream(stopped())
	session := transcribe.NewSession(stream, time.Second)

	_, err := session.Wait(context.Background())
	if !errors.Is(err, transcribe.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestSessionWait_SkipsEmptyFragments(t *testing.T) {
	stream := newFakeStream(recognized(""), recognized("alleen dit"), stopped())
	session := transcribe.NewSession(stream, time.Second)

	text, err := session.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "alleen dit" {
		t.Fatalf("expected %q, got %q", "alleen dit", text)
	}
}

func TestSessionWait_CancellationKeepsPartialTranscript(t *testing.T) {
	stream := newFakeStream(
		recognized("partial"),
		transcribe.Event{Type: transcribe.EventCanceled, Reason: "backend error"},
	)
	session := transcribe.NewSession(stream, time.Second)

	text, err := session.Wait(context.Background())
	if err != nil {
		t.Fatalf("cancellation must degrade silently, got error: %v", err)
	}
	if text != "partial" {
		t.Fatalf("expected %q, got %q", "partial", text)
	}
}

func TestSessionWait_CancellationWithoutFragmentsIsNoSpeech(t *testing.T) {
	stream := newFakeStream(transcribe.Event{Type: transcribe.EventCanceled, Reason: "connection reset"})
	session := transcribe.NewSession(stream, time.Second)

	_, err := session.Wait(context.Background())
	if !errors.Is(err, transcribe.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestSessionWait_TimeoutReturnsRecognizedSoFar(t *testing.T) {
	// Stream never terminates: one fragment, then silence.
	stream := newFakeStream(recognized("onvolledig"))
	session := transcribe.NewSession(stream, 20*time.Millisecond)

	start := time.Now()
	text, err := session.Wait(context.Background())
	if err != nil {
		t.Fatalf("timeout must degrade silently, got error: %v", err)
	}
	if text != "onvolledig" {
		t.Fatalf("expected %q, got %q", "onvolledig", text)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("wait did not respect timeout, took %s", elapsed)
	}
	if !stream.stopped {
		t.Error("expected stream to be stopped after timeout")
	}
}

func TestSessionWait_ContextCancellation(t *testing.T) {
	stream := newFakeStream(recognized("iets"))
	session := transcribe.NewSession(stream, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	text, err := session.Wait(ctx)
	if err != nil {
		t.Fatalf("context cancellation must degrade silently, got error: %v", err)
	}
	if text != "iets" {
		t.Fatalf("expected %q, got %q", "iets", text)
	}
}
