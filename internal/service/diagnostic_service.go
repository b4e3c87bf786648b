package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-coaching-be/internal/config"
	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/repository/contract"
	"ai-coaching-be/pkg/llm/gateway"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IDiagnosticService drives the six-phase diagnostic. Every phase action is
// idempotent: replaying a request whose artifact already exists returns the
// stored artifact without touching the generation collaborator.
type IDiagnosticService interface {
	Submit(ctx context.Context, req dto.SubmitRequest, originIP, userAgent string) (*dto.SubmitResponse, error)

	AnalyzeCv(ctx context.Context, email, origin, mediaType string, data []byte) (*dto.AnalyzeCvResponse, error)
	StartInterview(ctx context.Context, email, origin string) (*dto.InterviewQuestionResponse, error)
	AnswerInterview(ctx context.Context, req dto.InterviewAnswerRequest, origin string) (*dto.InterviewQuestionResponse, error)

	ComputeCoherence(ctx context.Context, email, origin string) (*dto.Phase1Response, error)
	AnswerProbe(ctx context.Context, req dto.ProbeAnswerRequest, origin string) (*dto.Phase1Response, error)

	StartScenarios(ctx context.Context, email, origin string) (*dto.Phase2Response, error)
	AnswerScenario(ctx context.Context, req dto.ScenarioAnswerRequest, origin string) (*dto.Phase2Response, error)

	StartPaths(ctx context.Context, email, origin string) (*dto.Phase3Response, error)
	SelectPath(ctx context.Context, req dto.SelectPathRequest, origin string) (*dto.Phase3Response, error)

	StartPlan(ctx context.Context, email, origin string) (*dto.Phase4Response, error)
	ToggleTask(ctx context.Context, req dto.ToggleTaskRequest, origin string) (*dto.Phase4Response, error)

	Aggregate(ctx context.Context, email, origin string) (*dto.Phase5Response, error)
	SubmitSelfDescription(ctx context.Context, req dto.SelfDescriptionRequest, origin string) (*dto.Phase5Response, error)
	ChooseAction(ctx context.Context, req dto.ChooseActionRequest, origin string) (*dto.Phase5Response, error)
	StartGrandSimulation(ctx context.Context, email, origin string) (*dto.Phase5Response, error)
	AnswerGrand(ctx context.Context, req dto.GrandAnswerRequest, origin string) (*dto.Phase5Response, error)
	Dossier(ctx context.Context, email, origin string) (*dto.DossierResponse, error)
}

type diagnosticService struct {
	cfg         *config.Config
	sessionRepo contract.DiagnosticSessionRepository
	guard       ISessionGuard
	locks       *sessionLocks
	pipeline    *generationPipeline
	log         logger.ILogger
}

func NewDiagnosticService(
	cfg *config.Config,
	sessionRepo contract.DiagnosticSessionRepository,
	guard ISessionGuard,
	gw *gateway.Gateway,
	publisher message.Publisher,
	log logger.ILogger,
) IDiagnosticService {
	return &diagnosticService{
		cfg:         cfg,
		sessionRepo: sessionRepo,
		guard:       guard,
		locks:       newSessionLocks(),
		pipeline:    newGenerationPipeline(gw, publisher, log),
		log:         log,
	}
}

func (s *diagnosticService) Submit(ctx context.Context, req dto.SubmitRequest, originIP, userAgent string) (*dto.SubmitResponse, error) {
	existing, err := s.sessionRepo.FindLatestByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Active {
		return nil, serverutils.ErrConflict("an active diagnostic session already exists for this email")
	}

	locale := req.Locale
	if locale == "" {
		locale = s.cfg.App.DefaultLocale
	}

	session := &entity.DiagnosticSession{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		Contact:      req.Contact,
		OriginIP:     NormalizeOrigin(originIP),
		UserAgent:    userAgent,
		Locale:       locale,
		Active:       false,
		ReviewStatus: constant.ReviewStatusPending,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("Diagnostic", "Session submitted", map[string]interface{}{
		"email":     session.Email,
		"sessionId": session.Id.String(),
	})

	return &dto.SubmitResponse{
		SessionId: session.Id,
		Active:    session.Active,
		CreatedAt: session.CreatedAt,
	}, nil
}

// begin authorizes the request, serializes against concurrent writers of the
// same session, and re-reads the document under the lock. Callers must invoke
// the returned release func.
func (s *diagnosticService) begin(ctx context.Context, email, origin string) (*entity.DiagnosticSession, func(), error) {
	session, err := s.guard.Authorize(ctx, email, origin)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Acquire(session.Id)

	fresh, err := s.sessionRepo.FindLatestByEmail(ctx, email)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if fresh == nil || fresh.Id != session.Id {
		unlock()
		return nil, nil, serverutils.ErrConflict("the diagnostic session changed, retry the request")
	}
	return fresh, unlock, nil
}

func (s *diagnosticService) save(ctx context.Context, session *entity.DiagnosticSession) error {
	err := s.sessionRepo.UpdateCAS(ctx, session)
	if errors.Is(err, contract.ErrVersionConflict) {
		return serverutils.ErrConflict("the diagnostic session was modified concurrently, retry the request")
	}
	return err
}

func localeLabel(locale string) string {
	if locale == "en" {
		return "English"
	}
	return "French"
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
