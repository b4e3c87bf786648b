package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/pkg/llm/gateway"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	TopicFallbackUsed   = "diagnostic.fallback_used"
	TopicPhaseCompleted = "diagnostic.phase_completed"
)

// generationPipeline is the shared call pattern around every AI-backed step:
// one gateway call, one strict-mode retry when parsing or transport fails,
// then fallback. NotConfigured is the one error that propagates untouched —
// it is an operational misconfiguration, not a transient fault.
type generationPipeline struct {
	gateway   *gateway.Gateway
	publisher message.Publisher
	log       logger.ILogger
}

func newGenerationPipeline(gw *gateway.Gateway, publisher message.Publisher, log logger.ILogger) *generationPipeline {
	return &generationPipeline{
		gateway:   gw,
		publisher: publisher,
		log:       log,
	}
}

// Generate runs the pipeline for one step. parse must consume the raw
// completion and store the typed result via closure; it returns an error when
// the payload fails contract normalization. The returned source is
// entity.SourceGenerated or entity.SourceFallback; on fallback the caller
// substitutes deterministic content.
func (p *generationPipeline) Generate(ctx context.Context, session *entity.DiagnosticSession, phase, step, systemPrompt, userPrompt string, temperature float64, parse func(raw string) error) (string, error) {
	raw, err := p.gateway.Complete(ctx, systemPrompt, userPrompt, temperature)
	if err != nil {
		if serverutils.IsKind(err, serverutils.KindNotConfigured) {
			return "", err
		}
	} else if raw != "" {
		if parseErr := parse(raw); parseErr == nil {
			return entity.SourceGenerated, nil
		}
	}

	// Single strict-mode retry
	raw, retryErr := p.gateway.Complete(ctx, systemPrompt+constant.StrictRetrySuffix, userPrompt, temperature)
	if retryErr == nil && raw != "" {
		if parseErr := parse(raw); parseErr == nil {
			p.log.Warn("Diagnostic", "Strict retry recovered the payload", map[string]interface{}{
				"phase": phase,
				"step":  step,
				"email": session.Email,
			})
			return entity.SourceGenerated, nil
		}
	}

	reason := "payload failed contract normalization after strict retry"
	if retryErr != nil {
		reason = retryErr.Error()
	}
	p.degrade(session, phase, step, reason)
	return entity.SourceFallback, nil
}

// degrade logs and publishes the fallback substitution; continuing the flow
// is the point, staying silent is not.
func (p *generationPipeline) degrade(session *entity.DiagnosticSession, phase, step, reason string) {
	p.log.Warn("Diagnostic", "Substituting fallback content", map[string]interface{}{
		"phase":  phase,
		"step":   step,
		"email":  session.Email,
		"reason": reason,
	})
	if p.publisher == nil {
		return
	}
	payload, _ := json.Marshal(dto.FallbackUsedEvent{
		SessionId: session.Id,
		Email:     session.Email,
		Phase:     phase,
		Step:      step,
		Reason:    reason,
		At:        time.Now(),
	})
	_ = p.publisher.Publish(TopicFallbackUsed, message.NewMessage(watermill.NewUUID(), payload))
}

func (p *generationPipeline) phaseCompleted(session *entity.DiagnosticSession, phase int) {
	if p.publisher == nil {
		return
	}
	payload, _ := json.Marshal(dto.PhaseCompletedEvent{
		SessionId: session.Id,
		Email:     session.Email,
		Phase:     phase,
		At:        time.Now(),
	})
	_ = p.publisher.Publish(TopicPhaseCompleted, message.NewMessage(watermill.NewUUID(), payload))
}
