package transcribe_test

import (
	"errors"
	"testing"

	"github.com/skillsenselab/tina-api/internal/transcribe"
)

func TestSentinelText(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want string
	}{
		{name: "success passes text through", text: "hallo wereld", want: "hallo wereld"},
		{name: "no speech", err: transcribe.ErrNoSpeech, want: "No speech could be recognized"},
		{name: "wrapped no speech", err: errors.Join(transcribe.ErrNoSpeech), want: "No speech could be recognized"},
		{name: "other errors get the prefix", err: errors.New("dial tcp: timeout"), want: "Error: dial tcp: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transcribe.SentinelText(tt.text, tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsSentinel(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"No speech could be recognized", true},
		{"Error: something broke", true},
		{"gewone transcriptie", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := transcribe.IsSentinel(tt.text); got != tt.want {
			t.Errorf("IsSentinel(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestResultFor_Success(t *testing.T) {
	result := transcribe.ResultFor("hello world", nil)

	if result.Text != "hello world" {
		t.Fatalf("expected text %q, got %q", "hello world", result.Text)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected one synthetic chunk, got %d", len(result.Chunks))
	}

	chunk := result.Chunks[0]
	if chunk.Text != "hello world" {
		t.Errorf("expected chunk text %q, got %q", "hello world", chunk.Text)
	}
	if chunk.Timestamp[0] == nil || *chunk.Timestamp[0] != 0 {
		t.Error("expected chunk start time 0")
	}
	if chunk.Timestamp[1] != nil {
		t.Error("expected unknown end time")
	}
}

func TestResultFor_ErrorYieldsEmptyChunks(t *testing.T) {
	result := transcribe.ResultFor("", transcribe.ErrNoSpeech)

	if result.Text != "No speech could be recognized" {
		t.Fatalf("unexpected text: %q", result.Text)
	}
	if result.Chunks == nil || len(result.Chunks) != 0 {
		t.Fatalf("expected empty (non-nil) chunk list, got %#v", result.Chunks)
	}
}
