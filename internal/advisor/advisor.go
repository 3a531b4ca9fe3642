// Package advisor wraps the OpenAI chat API behind the quoting service's
// two prose operations: free-text chat and quote paraphrasing. It sits
// strictly downstream of pricing: it receives already-computed quotes and
// a disclosable policy view, never the rate card itself.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/cinematicvideographers/nora/internal/pricing"
)

// ErrUnavailable is returned when no API key is configured. Callers must
// degrade (omit prose), never fail the numeric quote.
var ErrUnavailable = errors.New("advisor: no API key configured")

// Config holds settings for the OpenAI-backed client.
type Config struct {
	APIKey      string
	Model       string        // default "gpt-4o-mini"
	MaxAttempts int           // retry attempts for transient failures
	RetryDelay  time.Duration // base backoff delay
	Timeout     time.Duration // HTTP timeout
	BaseURL     string        // optional (tests)
	HTTPClient  *http.Client  // optional (tests)
}

// Client is the advisory text service.
type Client struct {
	api        openai.Client
	model      string
	attempts   uint
	retryDelay time.Duration
	configured bool

	chatPrompt    string
	summaryPrompt string
}

// New builds a Client. The policy argument is the disclosable slice of the
// price table; the system prompt is assembled from it, so the hourly rate
// cannot appear in any prompt by construction.
func New(cfg Config, policy pricing.PolicyInfo) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// Retries are handled here so transient-only policy applies.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:           openai.NewClient(opts...),
		model:         cfg.Model,
		attempts:      uint(cfg.MaxAttempts),
		retryDelay:    cfg.RetryDelay,
		configured:    cfg.APIKey != "",
		chatPrompt:    chatSystemPrompt(policy),
		summaryPrompt: summarySystemPrompt,
	}
}

// Chat answers a free-text client message in the Nora persona.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	if !c.configured {
		return "", ErrUnavailable
	}
	return c.complete(ctx, c.chatPrompt, message)
}

// SummarizeQuote paraphrases an already-computed quote. The quote is the
// single source of pricing truth; the model only restates it.
func (c *Client) SummarizeQuote(ctx context.Context, quote pricing.Quote, eventDate string) (string, error) {
	if !c.configured {
		return "", ErrUnavailable
	}
	return c.complete(ctx, c.summaryPrompt, renderQuote(quote, eventDate))
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	var reply string

	err := retry.Do(
		func() error {
			resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model: openai.ChatModel(c.model),
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(system),
					openai.UserMessage(user),
				},
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return retry.Unrecoverable(fmt.Errorf("advisor: completion has no choices"))
			}
			reply = strings.TrimSpace(resp.Choices[0].Message.Content)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("advisor: completion failed: %w", err)
	}
	return reply, nil
}

// isTransient reports whether an OpenAI call is worth retrying:
// rate limits, server-side errors, and transport failures.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
