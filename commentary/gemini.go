package commentary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 8 * time.Second

	maxOutputTokens = 60
	temperature     = 1.0
)

// Generator is the text-generation call Gemini depends on.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type Config struct {
	APIKey  string
	Model   string
	Lang    Language
	Timeout time.Duration
	Logger  *slog.Logger
}

// New returns a Gemini commentator, or Static when no API key is set or the
// client cannot be built.
func New(ctx context.Context, cfg Config) Commentator {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Info("commentary disabled, no api key")
		return Static{Lang: cfg.Lang}
	}
	gen, err := NewGenAI(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		log.Warn("commentary disabled", "err", err)
		return Static{Lang: cfg.Lang}
	}
	return NewGemini(gen, cfg)
}

// Gemini asks a model for the remark.
type Gemini struct {
	gen     Generator
	lang    Language
	timeout time.Duration
	log     *slog.Logger
}

func NewGemini(gen Generator, cfg Config) *Gemini {
	g := &Gemini{gen: gen, lang: cfg.Lang, timeout: cfg.Timeout, log: cfg.Logger}
	if g.lang == "" {
		g.lang = LangPortuguese
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	g.log = g.log.With("component", "commentary")
	return g
}

func (g *Gemini) Remark(ctx context.Context, score, previousHigh int) string {
	msgs := MessagesFor(g.lang)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.gen.Generate(ctx, SystemInstruction(g.lang, score, previousHigh), Prompt(g.lang, score))
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		g.log.Log(ctx, level, "remark failed", "score", score, "elapsed", time.Since(start), "err", err)
		return msgs.Failed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return msgs.Empty
	}
	g.log.Debug("remark generated", "score", score, "elapsed", time.Since(start))
	return text
}

// GenAI is the Generator backed by the Gemini API.
type GenAI struct {
	client *genai.Client
	model  string
}

func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAI{client: client, model: model}, nil
}

func (g *GenAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   maxOutputTokens,
		Temperature:       genai.Ptr[float32](temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", g.model, err)
	}
	return resp.Text(), nil
}
