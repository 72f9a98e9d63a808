// Package chat sends a running conversation to an OpenAI-compatible chat
// completion endpoint and returns the assistant's reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sadopc/soulsync/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

var (
	ErrMissingAPIKey   = errors.New("chat API key is not set")
	ErrEmptyTranscript = errors.New("chat transcript is empty")
	ErrNoChoices       = errors.New("chat response has no choices")
	ErrUnknownRole     = errors.New("unknown chat role")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client calls the completion API. It holds no conversation state.
type Client struct {
	cfg        config.ChatConfig
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, whose timeout comes from the
// config.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient does not check apiKey; Complete reports a missing key so the
// caller can show it to the user.
func NewClient(cfg config.ChatConfig, apiKey string, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends transcript and returns the reply text.
func (c *Client) Complete(ctx context.Context, transcript []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}

	messages := make([]llms.MessageContent, 0, len(transcript))
	for _, m := range transcript {
		role, err := messageType(m.Role)
		if err != nil {
			return "", err
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}

	llm, err := openai.New(
		openai.WithBaseURL(c.cfg.BaseURL),
		openai.WithModel(c.cfg.Model),
		openai.WithToken(c.apiKey),
		openai.WithHTTPClient(c.httpClient),
	)
	if err != nil {
		return "", fmt.Errorf("creating chat client: %w", err)
	}

	c.log.Debug("chat request", zap.String("model", c.cfg.Model), zap.Int("messages", len(messages)))
	resp, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		if errors.Is(err, openai.ErrEmptyResponse) {
			return "", ErrNoChoices
		}
		c.log.Warn("chat request failed", zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}

func messageType(r Role) (schema.ChatMessageType, error) {
	switch r {
	case RoleUser:
		return schema.ChatMessageTypeHuman, nil
	case RoleAssistant:
		return schema.ChatMessageTypeAI, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, r)
}
