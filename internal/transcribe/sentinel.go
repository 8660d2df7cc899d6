package transcribe

import (
	"errors"
	"strings"
)

// Sentinel strings kept for wire compatibility. API clients detect
// degradation by inspecting these prefixes in otherwise successful
// responses, so they must not change.
const (
	// SentinelNoSpeech is returned when nothing was recognized.
	SentinelNoSpeech = "No speech could be recognized"
	// SentinelErrorPrefix prefixes transcription failures.
	SentinelErrorPrefix = "Error: "
)

// SentinelText maps a typed transcription outcome to the wire-level string.
func SentinelText(text string, err error) string {
	switch {
	case err == nil:
		return text
	case errors.Is(err, ErrNoSpeech):
		return SentinelNoSpeech
	default:
		return SentinelErrorPrefix + err.Error()
	}
}

// IsSentinel reports whether text denotes an error or no-speech outcome.
func IsSentinel(text string) bool {
	return strings.HasPrefix(text, SentinelErrorPrefix) ||
		strings.HasPrefix(text, SentinelNoSpeech)
}

// ResultFor wraps a typed transcription outcome into the wire-level Result.
// A successful transcript becomes a single chunk spanning the whole audio
// with an unknown end time; a degraded outcome yields an empty chunk list.
// Per-phrase timestamps are not produced.
func ResultFor(text string, err error) Result {
	wire := SentinelText(text, err)
	if err != nil {
		return Result{Text: wire, Chunks: []Chunk{}}
	}
	return Result{
		Text: wire,
		Chunks: []Chunk{
			{Text: wire, Timestamp: NewTimestamp(0, nil)},
		},
	}
}
