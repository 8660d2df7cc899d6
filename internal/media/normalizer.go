// Package media prepares uploaded audio for speech recognition. Files are
// probed with ffprobe and, when needed, transcoded with ffmpeg to the
// mono 16 kHz PCM WAV layout the recognizer expects.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillsenselab/tina-api/pkg/logger"
	"github.com/skillsenselab/tina-api/pkg/process"
)

// ErrUnsupportedFormat reports input that ffmpeg could not decode as audio.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Target layout for speech recognition input.
const (
	targetSampleRate = 16000
	targetChannels   = 1
)

const defaultCommandTimeout = 2 * time.Minute

// Normalizer converts arbitrary audio files to mono 16 kHz PCM WAV.
type Normalizer struct {
	run     process.Runner
	ffmpeg  string
	ffprobe string
	timeout time.Duration
	log     *logger.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRunner substitutes the subprocess runner, used by tests.
func WithRunner(r process.Runner) Option {
	return func(n *Normalizer) { n.run = r }
}

// WithBinaries overrides the ffmpeg and ffprobe executable paths.
func WithBinaries(ffmpeg, ffprobe string) Option {
	return func(n *Normalizer) {
		n.ffmpeg = ffmpeg
		n.ffprobe = ffprobe
	}
}

// WithTimeout bounds each subprocess invocation.
func WithTimeout(d time.Duration) Option {
	return func(n *Normalizer) { n.timeout = d }
}

// NewNormalizer creates a Normalizer with default binaries resolved via PATH.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		run:     process.Run,
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
		timeout: defaultCommandTimeout,
		log:     logger.WithComponent("media"),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// probeInfo is the subset of ffprobe JSON output the normalizer inspects.
type probeInfo struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Channels   int    `json:"channels"`
		SampleRate string `json:"sample_rate"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Normalize ensures path points at mono 16 kHz PCM WAV audio. It returns the
// path to use for recognition: the original file when it already matches, or
// a sibling "<name>_16k.wav" produced by ffmpeg. Input that cannot be decoded
// as audio yields ErrUnsupportedFormat.
func (n *Normalizer) Normalize(ctx context.Context, path string) (string, error) {
	info, err := n.probe(ctx, path)
	if err != nil {
		return "", err
	}

	if acceptable(info) {
		n.log.Debug("audio already normalized", logger.Fields("path", path))
		return path, nil
	}

	outPath := derivedPath(path)
	if err := n.transcode(ctx, path, outPath); err != nil {
		return "", err
	}

	n.log.Info("audio transcoded", logger.Fields("input", path, "output", outPath))
	return outPath, nil
}

func (n *Normalizer) probe(ctx context.Context, path string) (*probeInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	result, err := n.run(ctx, process.Command{
		Binary: n.ffprobe,
		Args: []string{
			"-v", "quiet",
			"-print_format", "json",
			"-show_streams",
			"-show_format",
			path,
		},
	})
	if err != nil {
		// ffprobe rejects files it cannot parse as media at all.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.TrimSpace(stderrLine(result)))
	}

	var info probeInfo
	if err := json.Unmarshal(result.Stdout, &info); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	if !hasAudioStream(&info) {
		return nil, fmt.Errorf("%w: no audio stream found", ErrUnsupportedFormat)
	}
	return &info, nil
}

func (n *Normalizer) transcode(ctx context.Context, inPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	result, err := n.run(ctx, process.Command{
		Binary: n.ffmpeg,
		Args: []string{
			"-y",
			"-i", inPath,
			"-ac", fmt.Sprintf("%d", targetChannels),
			"-ar", fmt.Sprintf("%d", targetSampleRate),
			"-f", "wav",
			outPath,
		},
	})
	if err != nil {
		// Never leave a partial output file behind.
		_ = os.Remove(outPath)
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.TrimSpace(stderrLine(result)))
	}
	return nil
}

// acceptable reports whether the probed audio already matches the target
// layout: WAV container, PCM codec, mono, 16 kHz.
func acceptable(info *probeInfo) bool {
	if !strings.Contains(info.Format.FormatName, "wav") {
		return false
	}
	for _, s := range info.Streams {
		if s.CodecType != "audio" {
			continue
		}
		return strings.HasPrefix(s.CodecName, "pcm_") &&
			s.Channels == targetChannels &&
			s.SampleRate == fmt.Sprintf("%d", targetSampleRate)
	}
	return false
}

func hasAudioStream(info *probeInfo) bool {
	for _, s := range info.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}

// derivedPath builds the output path "<base>_16k.wav" next to the input.
func derivedPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_16k.wav"
}

// stderrLine extracts the last non-empty stderr line for error context.
func stderrLine(result *process.Result) string {
	if result == nil || len(result.Stderr) == 0 {
		return "unreadable input"
	}
	lines := strings.Split(strings.TrimSpace(string(result.Stderr)), "\n")
	return lines[len(lines)-1]
}
