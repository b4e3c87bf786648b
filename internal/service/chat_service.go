package service

import (
	"context"
	"fmt"
	"strings"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/repository/memory"
	"ai-coaching-be/pkg/llm/gateway"
)

// IChatService answers post-completion questions about the participant's own
// diagnostic, and nothing else.
type IChatService interface {
	Chat(ctx context.Context, req dto.ChatRequest, origin string) (*dto.ChatResponse, error)
}

type chatService struct {
	guard       ISessionGuard
	contextRepo *memory.ChatContextRepository
	gateway     *gateway.Gateway
	log         logger.ILogger
}

func NewChatService(guard ISessionGuard, contextRepo *memory.ChatContextRepository, gw *gateway.Gateway, log logger.ILogger) IChatService {
	return &chatService{
		guard:       guard,
		contextRepo: contextRepo,
		gateway:     gw,
		log:         log,
	}
}

func (s *chatService) Chat(ctx context.Context, req dto.ChatRequest, origin string) (*dto.ChatResponse, error) {
	session, err := s.guard.Authorize(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	if p5 := session.Service1.Phase5; p5 == nil || p5.Status != constant.Phase5StatusCompleted {
		return nil, serverutils.ErrNotReady("the chat opens once the diagnostic is completed")
	}

	contextDoc, found := s.contextRepo.Get(session.Email)
	if !found {
		contextDoc = BundleMarkdown(session)
		s.contextRepo.Save(session.Email, contextDoc)
	}

	systemPrompt := fmt.Sprintf("%s\n\nLocale: %s\n\nDiagnostic content:\n%s",
		constant.ChatTopicGuardSystemPrompt, localeLabel(session.Locale), contextDoc)

	answer, err := s.gateway.Complete(ctx, systemPrompt, req.Question, constant.TempAnalytical)
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return nil, serverutils.ErrTransport("the chat collaborator returned an empty answer", nil)
	}

	refused := strings.Contains(answer, constant.ChatRefusalMessage)
	if refused {
		// Serve the fixed refusal string, never a paraphrase of it.
		answer = constant.ChatRefusalMessage
	}

	return &dto.ChatResponse{Answer: answer, Refused: refused}, nil
}
