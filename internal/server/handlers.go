package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/skillsenselab/tina-api/internal/media"
	"github.com/skillsenselab/tina-api/internal/observability"
	"github.com/skillsenselab/tina-api/internal/summary"
	"github.com/skillsenselab/tina-api/internal/transcribe"
	apperrors "github.com/skillsenselab/tina-api/pkg/errors"
	"github.com/skillsenselab/tina-api/pkg/logger"
	"github.com/skillsenselab/tina-api/pkg/util"
)

// Client-facing messages kept in Dutch for wire compatibility.
const (
	unsupportedFormatMessage = "Niet-ondersteund audioformaat."
	transcriptionErrorFormat = "Fout bij transcriptie: %s"
	missingFileMessage       = "Geen audiobestand ontvangen."
)

// Normalizer prepares an uploaded audio file for the transcription backend.
type Normalizer interface {
	Normalize(ctx context.Context, path string) (string, error)
}

// Summarizer produces a summary of transcript text. Failures are encoded in
// the returned string, never as an error.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) string
}

// Handler serves the transcription endpoints. It owns the per-request
// temporary files and guarantees their removal on every exit path.
type Handler struct {
	transcriber transcribe.Provider
	normalizer  Normalizer
	summarizer  Summarizer
	tempDir     string
	metrics     *observability.Metrics
	log         *logger.Logger
}

// NewHandler creates a Handler. tempDir must exist and be writable; metrics
// may be nil.
func NewHandler(t transcribe.Provider, n Normalizer, s Summarizer, tempDir string, metrics *observability.Metrics) *Handler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Handler{
		transcriber: t,
		normalizer:  n,
		summarizer:  s,
		tempDir:     tempDir,
		metrics:     metrics,
		log:         logger.WithComponent("handler"),
	}
}

// Register mounts the transcription routes on the given router group.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/transcribe", h.Transcribe)
	r.POST("/transcribe_timestamps", h.TranscribeTimestamps)
}

// TranscriptionResponse is the /transcribe success payload.
type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
}

// TimestampsResponse is the /transcribe_timestamps success payload.
type TimestampsResponse struct {
	Transcriptions []transcribe.Result `json:"transcriptions"`
	Summary        string              `json:"summary,omitempty"`
}

// Transcribe accepts a multipart audio upload and returns the transcript.
func (h *Handler) Transcribe(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), "transcribe")
	defer span.End()
	start := time.Now()

	tmp := newTempFiles(h.log)
	defer tmp.cleanup()

	audioPath, err := h.prepareAudio(ctx, c, tmp)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		h.metrics.RecordTranscription(ctx, "transcribe", "rejected", time.Since(start))
		RespondWithError(c, err)
		return
	}

	text, err := h.transcriber.Transcribe(ctx, transcribe.Request{AudioPath: audioPath})
	h.metrics.RecordTranscription(ctx, "transcribe", outcomeOf(err), time.Since(start))

	c.JSON(http.StatusOK, TranscriptionResponse{
		Transcription: transcribe.SentinelText(text, err),
	})
}

// TranscribeTimestamps accepts a multipart audio upload and returns the
// transcript with a synthetic whole-file segment and a summary.
func (h *Handler) TranscribeTimestamps(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), "transcribe_timestamps")
	defer span.End()
	start := time.Now()

	tmp := newTempFiles(h.log)
	defer tmp.cleanup()

	audioPath, err := h.prepareAudio(ctx, c, tmp)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		h.metrics.RecordTranscription(ctx, "transcribe_timestamps", "rejected", time.Since(start))
		RespondWithError(c, err)
		return
	}

	text, err := h.transcriber.Transcribe(ctx, transcribe.Request{AudioPath: audioPath})
	result := transcribe.ResultFor(text, err)
	h.metrics.RecordTranscription(ctx, "transcribe_timestamps", outcomeOf(err), time.Since(start))

	summaryText := h.summarizer.Summarize(ctx, result.Text)
	h.metrics.RecordSummary(ctx, summaryOutcome(summaryText))

	c.JSON(http.StatusOK, TimestampsResponse{
		Transcriptions: []transcribe.Result{result},
		Summary:        summaryText,
	})
}

// prepareAudio saves the upload and normalizes it, registering every created
// file with tmp. It returns the path to hand to the transcription backend.
func (h *Handler) prepareAudio(ctx context.Context, c *gin.Context, tmp *tempFiles) (string, error) {
	uploadPath, err := h.saveUpload(c)
	if err != nil {
		return "", err
	}
	tmp.add(uploadPath)

	normalized, err := h.normalizer.Normalize(ctx, uploadPath)
	if err != nil {
		h.metrics.RecordNormalization(ctx, "error")
		if errors.Is(err, media.ErrUnsupportedFormat) {
			return "", apperrors.Validation(unsupportedFormatMessage).WithCause(err)
		}
		return "", apperrors.New(apperrors.ErrCodeInternal,
			fmt.Sprintf(transcriptionErrorFormat, err.Error()),
			http.StatusInternalServerError).WithCause(err)
	}
	h.metrics.RecordNormalization(ctx, "success")

	if normalized != uploadPath {
		tmp.add(normalized)
	}
	return normalized, nil
}

// saveUpload writes the multipart "file" part to a uniquely named file in the
// temp directory. The client-supplied filename is never used beyond its
// sanitized extension.
func (h *Handler) saveUpload(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", apperrors.Validation(missingFileMessage).WithCause(err)
	}

	name := "upload-" + uuid.New().String() + util.SanitizeExtension(filepath.Ext(fileHeader.Filename))
	path := filepath.Join(h.tempDir, name)

	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		return "", apperrors.Internal(fmt.Errorf("saving upload: %w", err))
	}

	h.log.Debug("upload saved", logger.Fields(
		"path", path,
		"size", fileHeader.Size,
	))
	return path, nil
}

// outcomeOf labels a transcription result for metrics.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, transcribe.ErrNoSpeech):
		return "no_speech"
	default:
		return "error"
	}
}

// summaryOutcome labels a summarization result for metrics.
func summaryOutcome(text string) string {
	switch {
	case text == summary.UnableMessage:
		return "skipped"
	case strings.HasPrefix(text, summary.ErrorPrefix):
		return "error"
	default:
		return "success"
	}
}

// tempFiles tracks request-scoped files for deferred removal. Files may
// already be gone by cleanup time, so existence is checked first.
type tempFiles struct {
	paths []string
	log   *logger.Logger
}

func newTempFiles(log *logger.Logger) *tempFiles {
	return &tempFiles{log: log}
}

func (t *tempFiles) add(path string) {
	t.paths = append(t.paths, path)
}

func (t *tempFiles) cleanup() {
	for _, path := range t.paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			t.log.Warn("failed to remove temp file", logger.Fields(
				"path", path,
				"error", err.Error(),
			))
		}
	}
}

