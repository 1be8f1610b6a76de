package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thywilljoshua/matchgame/internal/logger"
	genai "google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig, log *logger.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: c, model: cfg.Model, timeout: cfg.Timeout, log: log.With("model", cfg.Model)}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, conf *genai.GenerateContentConfig) (string, error) {
	if g.client == nil {
		return "", ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.log.Info("sending prompt to gemini", "prompt", logger.Truncate(prompt, 200), "structured", conf != nil)
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, conf)
	if err != nil {
		g.log.Error("gemini call failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		g.log.Warn("gemini response missing candidates")
		return "", ErrEmptyResponse
	}
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		g.log.Warn("gemini response has no text parts")
		return "", ErrEmptyResponse
	}
	g.log.Debug("gemini response", "bytes", len(text), "preview", logger.Truncate(text, 500))
	return text, nil
}

func (g *Gemini) Text(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, nil)
}

// JSON requests application/json output constrained by schema and returns the
// decoded-able JSON value. Prose or code fences around the value are dropped.
func (g *Gemini) JSON(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	var conf *genai.GenerateContentConfig
	if schema != nil {
		conf = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}
	text, err := g.generate(ctx, prompt, conf)
	if err != nil {
		return nil, err
	}
	raw, err := cleanJSON(text)
	if err != nil {
		g.log.Error("decode gemini JSON", "error", err, "raw", logger.Truncate(text, 500))
		return nil, err
	}
	return raw, nil
}
