// Package summary produces short natural-language summaries of transcript
// text via a chat-completion provider.
package summary

import (
	"context"
	"fmt"

	"github.com/skillsenselab/tina-api/internal/llm"
	"github.com/skillsenselab/tina-api/internal/transcribe"
	"github.com/skillsenselab/tina-api/pkg/logger"
)

// Wire-level messages kept for compatibility with existing API clients.
const (
	// UnableMessage is returned when the transcript cannot be summarized.
	UnableMessage = "Unable to generate summary: Invalid transcription"
	// ErrorPrefix prefixes summarization failures.
	ErrorPrefix = "Error generating summary: "
)

const defaultMaxTokens = 500

const systemPrompt = "Je bent een behulpzame assistent die gespecialiseerd is in het samenvatten van Nederlandse tekst."

const promptTemplate = `Je bent een behulpzame assistent die een samenvatting geeft van een getranscribeerde audio opname.
Maak een beknopte en duidelijke samenvatting van de volgende transcriptie in het Nederlands.
Focus op de belangrijkste punten en zorg ervoor dat de samenvatting de kern van de inhoud weergeeft.

Transcriptie:
%s`

// Summarizer wraps a chat-completion provider behind the summarization
// prompt. Remote failures are swallowed into error text so a degraded
// summary never blocks the transcription result.
type Summarizer struct {
	provider  llm.Provider
	maxTokens int
	log       *logger.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithMaxTokens overrides the completion length bound.
func WithMaxTokens(n int) Option {
	return func(s *Summarizer) { s.maxTokens = n }
}

// New creates a Summarizer over the given provider.
func New(provider llm.Provider, opts ...Option) *Summarizer {
	s := &Summarizer{
		provider:  provider,
		maxTokens: defaultMaxTokens,
		log:       logger.WithComponent("summary"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize returns a short Dutch summary of transcript. Empty input and
// transcription sentinels short-circuit to UnableMessage without touching
// the remote service; remote failures become ErrorPrefix text.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) string {
	if transcript == "" || transcribe.IsSentinel(transcript) {
		return UnableMessage
	}

	req := llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(promptTemplate, transcript)},
		},
		MaxTokens: s.maxTokens,
	}

	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.log.Error("summarization failed", logger.ErrorFields("summarize", err))
		return ErrorPrefix + err.Error()
	}

	s.log.Debug("summary generated", logger.Fields(
		"model", resp.Model,
		"completion_tokens", resp.Usage.CompletionTokens,
	))
	return resp.Content
}
