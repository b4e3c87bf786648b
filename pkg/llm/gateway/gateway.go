package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/pkg/llm"
)

// Gateway is the single entry point every phase handler uses to reach the
// generation collaborator. It owns the failure taxonomy and the request
// timeout; retry policy stays with callers because it differs per phase.
type Gateway struct {
	provider llm.LLMProvider
	timeout  time.Duration
	log      logger.ILogger
}

func New(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		log:      log,
	}
}

// Complete sends a system+user prompt pair and returns the raw completion
// text. An empty completion comes back as ("", nil); callers treat it as a
// failed attempt. Error kinds:
//   - NotConfigured: no provider wired (missing credential at bootstrap)
//   - TransportError: upstream call failed or timed out
func (g *Gateway) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if g.provider == nil {
		return "", serverutils.ErrNotConfigured("generation collaborator is not configured: set LLM_API_KEY / LLM_PROVIDER")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	history := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	text, err := g.provider.Chat(callCtx, history, llm.WithTemperature(temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", serverutils.ErrTransport("generation collaborator timed out", err)
		}
		return "", serverutils.ErrTransport("generation collaborator call failed", err)
	}

	return strings.TrimSpace(text), nil
}
