// internal/assistant/assistant.go
//
// Gemini-backed implementation of the two model calls the games make.
//
// Responsibilities:
//   - Help: answer a tutoring question given the game context and code.
//   - GenerateBug: ask for one new broken line plus a hint, as JSON.
//   - Run offline (every call fails) when no API key is configured, so the
//     callers fall back to their canned lines.
//
// The model client sits behind Generator so tests can substitute a fake.

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/tutor"
)

const DefaultModel = "gemini-3-flash-preview"

var (
	ErrOffline   = errors.New("assistant offline: no API key configured")
	ErrMalformed = errors.New("malformed generated challenge")
)

// Generator produces text for a prompt. When asJSON is set the model is asked
// for an application/json response.
type Generator interface {
	Generate(ctx context.Context, prompt string, asJSON bool) (string, error)
}

// Client implements tutor.Assistant and bug generation.
type Client struct {
	gen Generator
}

var _ tutor.Assistant = (*Client)(nil)

// New builds a Gemini client. An empty apiKey yields an offline client.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		log.Warn().Msg("API_KEY not set; assistant is offline")
		return NewWithGenerator(offline{}), nil
	}
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return NewWithGenerator(&gemini{client: c, model: model}), nil
}

func NewWithGenerator(g Generator) *Client { return &Client{gen: g} }

// Help asks the model for a short, encouraging hint.
func (c *Client) Help(ctx context.Context, req tutor.Request) (string, error) {
	return c.gen.Generate(ctx, helpPrompt(req), false)
}

// GenerateBug asks the model for a new broken line. A reply that does not
// decode or has an empty broken line is reported as ErrMalformed.
func (c *Client) GenerateBug(ctx context.Context) (game.BugDraft, error) {
	text, err := c.gen.Generate(ctx, bugPrompt, true)
	if err != nil {
		return game.BugDraft{}, err
	}
	var d game.BugDraft
	if err := json.Unmarshal([]byte(stripFence(text)), &d); err != nil {
		return game.BugDraft{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(d.Broken) == "" {
		return game.BugDraft{}, fmt.Errorf("%w: empty broken line", ErrMalformed)
	}
	return d, nil
}

// stripFence removes a ```json fence some models wrap around JSON replies.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func helpPrompt(req tutor.Request) string {
	return fmt.Sprintf(`You are a friendly, encouraging coding tutor for kids aged 8-12 learning Python.
The current game context is: %s.
The kid's current code is: `+"`%s`"+`.
The kid asks: "%s".

Keep the answer short (under 50 words), fun, and use emojis.
Don't just give the answer, guide them to it.
If they are doing well, celebrate!`, req.Context, req.Code, req.Question)
}

const bugPrompt = `Generate a simple buggy Python line of code for a beginner kid.
Concepts: print(), strings, numbers.
Return ONLY JSON: {"broken": "code_here", "hint": "hint_here"}
Example errors: missing quotes, missing parenthesis, misspelled print.`

// gemini calls the Gemini API through google.golang.org/genai.
type gemini struct {
	client *genai.Client
	model  string
}

func (g *gemini) Generate(ctx context.Context, prompt string, asJSON bool) (string, error) {
	var cfg *genai.GenerateContentConfig
	if asJSON {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	log.Debug().Str("model", g.model).Dur("took", time.Since(start)).Msg("gemini reply")
	return resp.Text(), nil
}

type offline struct{}

func (offline) Generate(context.Context, string, bool) (string, error) { return "", ErrOffline }
