// Package transcribe defines the transcription provider interface, the
// recognition session state machine, and the wire-level result types for
// speech-to-text backends.
//
// Backends implement Provider and deliver recognition events through a
// Stream; Session consumes the stream and composes the final transcript.
// Internally everything is typed (a transcript string or an error); the
// legacy sentinel strings expected by API clients are produced only at the
// wire boundary via SentinelText and ResultFor.
//
// # Backends
//
//   - transcribe/azurespeech: Azure Speech Services REST recognition
package transcribe
