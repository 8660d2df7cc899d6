package transcribe

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language overrides the backend's configured recognition language
	// (e.g. "nl-NL").
	Language string `json:"language,omitempty"`
}

// Result is the wire-level transcription result.
type Result struct {
	// Text is the full transcript, or a sentinel string on degradation.
	Text string `json:"text"`
	// Chunks contains time-aligned portions of the transcript. Empty when
	// Text is a sentinel.
	Chunks []Chunk `json:"chunks"`
}

// Chunk is a labeled span of transcript text.
type Chunk struct {
	// Text is the transcribed text for this span.
	Text string `json:"text"`
	// Timestamp is the [start, end] pair in seconds.
	Timestamp Timestamp `json:"timestamp"`
}

// Timestamp is a [start, end] pair in seconds. The end marker serializes to
// null when the backend cannot provide one.
type Timestamp [2]*float64

// NewTimestamp builds a Timestamp from a start and an optional end.
func NewTimestamp(start float64, end *float64) Timestamp {
	s := start
	return Timestamp{&s, end}
}
