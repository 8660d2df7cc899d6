package transcribe

import "context"

// Provider is the interface that transcription backends must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
	// Transcribe runs one recognition session over the audio file and
	// returns the composed transcript. It returns ErrNoSpeech when the
	// session ends without recognizing anything.
	Transcribe(ctx context.Context, req Request) (string, error)
}
