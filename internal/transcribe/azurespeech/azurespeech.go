// Package azurespeech implements transcribe.Provider against the Azure
// Speech Services REST recognition endpoint.
package azurespeech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/skillsenselab/tina-api/internal/transcribe"
	"github.com/skillsenselab/tina-api/pkg/logger"
)

const (
	// ProviderName is the registered name for the Azure Speech provider.
	ProviderName = "azure-speech"

	defaultLanguage    = "nl-NL"
	defaultHTTPTimeout = 60 * time.Second

	endpointFormat = "https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1"
	wavContentType = "audio/wav; codecs=audio/pcm; samplerate=16000"
)

// Config holds configuration for the Azure Speech provider.
type Config struct {
	// Key is the subscription key for the speech resource.
	Key string `json:"key" mapstructure:"key"`
	// Region is the Azure region of the speech resource (e.g. "westeurope").
	Region string `json:"region" mapstructure:"region"`
	// Language is the recognition language. Defaults to "nl-NL".
	Language string `json:"language" mapstructure:"language"`
	// Endpoint overrides the regional endpoint URL. Used in tests.
	Endpoint string `json:"endpoint,omitempty" mapstructure:"endpoint"`
	// SessionTimeout bounds one recognition session.
	SessionTimeout time.Duration `json:"session_timeout" mapstructure:"session_timeout"`
	// HTTPTimeout bounds the underlying recognition request.
	HTTPTimeout time.Duration `json:"http_timeout" mapstructure:"http_timeout"`
}

// Provider implements transcribe.Provider using the Azure Speech REST API.
type Provider struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewProvider creates a new Azure Speech transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = transcribe.DefaultSessionTimeout
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		log: logger.WithComponent("azurespeech"),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured with credentials.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.Key != "" && (p.cfg.Region != "" || p.cfg.Endpoint != "")
}

// Transcribe runs one recognition session over the audio file. Session
// start failures (missing credentials, unreadable file) are returned as
// errors; mid-session backend failures surface as cancellation events and
// degrade to whatever was recognized.
func (p *Provider) Transcribe(ctx context.Context, req transcribe.Request) (string, error) {
	stream, err := p.startSession(ctx, req)
	if err != nil {
		return "", err
	}
	session := transcribe.NewSession(stream, p.cfg.SessionTimeout)
	return session.Wait(ctx)
}

// startSession validates credentials, opens the audio file, and launches
// the recognition request in the background.
func (p *Provider) startSession(ctx context.Context, req transcribe.Request) (transcribe.Stream, error) {
	if !p.IsAvailable(ctx) {
		return nil, fmt.Errorf("azure speech credentials not found in configuration")
	}

	audio, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s := &stream{
		events: make(chan transcribe.Event, 4),
		cancel: cancel,
	}
	go s.run(reqCtx, p, audio, lang)
	return s, nil
}

// stream adapts one REST recognition call into a session event stream.
type stream struct {
	events chan transcribe.Event
	cancel context.CancelFunc
}

func (s *stream) Events() <-chan transcribe.Event { return s.events }

func (s *stream) Stop() { s.cancel() }

func (s *stream) run(ctx context.Context, p *Provider, audio *os.File, lang string) {
	defer close(s.events)
	defer audio.Close()

	resp, err := p.recognize(ctx, audio, lang)
	if err != nil {
		s.emit(ctx, transcribe.Event{Type: transcribe.EventCanceled, Reason: err.Error()})
		return
	}

	if text := resp.text(); text != "" {
		s.emit(ctx, transcribe.Event{Type: transcribe.EventRecognized, Text: text})
	}
	s.emit(ctx, transcribe.Event{Type: transcribe.EventSessionStopped})
}

// emit delivers an event unless the session was stopped meanwhile.
func (s *stream) emit(ctx context.Context, ev transcribe.Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (p *Provider) recognize(ctx context.Context, audio io.Reader, lang string) (*recognitionResponse, error) {
	endpoint := p.cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf(endpointFormat, p.cfg.Region)
	}

	query := url.Values{}
	query.Set("language", lang)
	query.Set("format", "detailed")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), audio)
	if err != nil {
		return nil, fmt.Errorf("create recognition request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", p.cfg.Key)
	httpReq.Header.Set("Content-Type", wavContentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("recognition request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("recognition error (status %d): %s", resp.StatusCode, string(body))
	}

	var result recognitionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode recognition response: %w", err)
	}

	p.log.Debug("recognition completed", logger.Fields(
		"status", result.RecognitionStatus,
		"duration_ticks", result.Duration,
	))
	return &result, nil
}

// --- Azure Speech REST response types ---

type recognitionResponse struct {
	RecognitionStatus string       `json:"RecognitionStatus"`
	DisplayText       string       `json:"DisplayText"`
	Offset            int64        `json:"Offset"`
	Duration          int64        `json:"Duration"`
	NBest             []nBestEntry `json:"NBest"`
}

type nBestEntry struct {
	Display    string  `json:"Display"`
	Lexical    string  `json:"Lexical"`
	Confidence float64 `json:"Confidence"`
}

// text returns the recognized phrase, or "" when the service matched no
// speech (NoMatch, InitialSilenceTimeout, ...).
func (r *recognitionResponse) text() string {
	if r.RecognitionStatus != "Success" {
		return ""
	}
	if r.DisplayText != "" {
		return r.DisplayText
	}
	if len(r.NBest) > 0 {
		return r.NBest[0].Display
	}
	return ""
}
