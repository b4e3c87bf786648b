package service

import (
	"context"
	"encoding/json"

	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/mailer"
	"ai-coaching-be/internal/repository/contract"
	"ai-coaching-be/internal/repository/specification"
	"ai-coaching-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the in-process event topics: every event reaches the
// admin websocket feed, and a completed final phase triggers the dossier
// email.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	hub         *websocket.Hub
	sessionRepo contract.DiagnosticSessionRepository
	mailer      mailer.IEmailService
	log         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	hub *websocket.Hub,
	sessionRepo contract.DiagnosticSessionRepository,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		hub:         hub,
		sessionRepo: sessionRepo,
		mailer:      emailService,
		log:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	fallbackMessages, err := cs.pubSub.Subscribe(ctx, TopicFallbackUsed)
	if err != nil {
		return err
	}
	completedMessages, err := cs.pubSub.Subscribe(ctx, TopicPhaseCompleted)
	if err != nil {
		return err
	}

	go func() {
		for msg := range fallbackMessages {
			cs.processFallbackUsed(msg)
		}
	}()
	go func() {
		for msg := range completedMessages {
			cs.processPhaseCompleted(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processFallbackUsed(msg *message.Message) {
	var event dto.FallbackUsedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.log.Error("Consumer", "Unreadable fallback event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	cs.log.Warn("Consumer", "Fallback content served", map[string]interface{}{
		"email":  event.Email,
		"phase":  event.Phase,
		"step":   event.Step,
		"reason": event.Reason,
	})
	if cs.hub != nil {
		cs.hub.Broadcast("fallback_used", event)
	}
	msg.Ack()
}

func (cs *consumerService) processPhaseCompleted(ctx context.Context, msg *message.Message) {
	var event dto.PhaseCompletedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.log.Error("Consumer", "Unreadable phase event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	cs.log.Info("Consumer", "Phase completed", map[string]interface{}{
		"email": event.Email,
		"phase": event.Phase,
	})
	if cs.hub != nil {
		cs.hub.Broadcast("phase_completed", event)
	}

	if event.Phase == 5 {
		cs.sendDossier(ctx, msg, event)
		return
	}
	msg.Ack()
}

func (cs *consumerService) sendDossier(ctx context.Context, msg *message.Message, event dto.PhaseCompletedEvent) {
	if cs.mailer == nil {
		msg.Ack()
		return
	}

	session, err := cs.sessionRepo.FindOne(ctx, specification.ByID{ID: event.SessionId})
	if err != nil {
		cs.log.Error("Consumer", "Session lookup failed for dossier email", map[string]interface{}{
			"sessionId": event.SessionId.String(),
			"error":     err.Error(),
		})
		msg.Nack()
		return
	}
	if session == nil {
		msg.Ack()
		return
	}

	if err := cs.mailer.SendDossier(session.Email, session.DisplayName, BundleMarkdown(session)); err != nil {
		cs.log.Error("Consumer", "Dossier email failed", map[string]interface{}{
			"email": session.Email,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	cs.log.Info("Consumer", "Dossier emailed", map[string]interface{}{"email": session.Email})
	msg.Ack()
}
