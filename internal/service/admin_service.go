package service

import (
	"context"
	"time"

	"ai-coaching-be/internal/config"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/repository/contract"
	"ai-coaching-be/internal/repository/specification"
	"ai-coaching-be/pkg/verdict"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 12 * time.Hour

// IAdminService covers the back-office: credentialed login, session review,
// and the verdict rule table.
type IAdminService interface {
	Login(ctx context.Context, req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	ListSessions(ctx context.Context) ([]dto.SessionSummaryResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*entity.DiagnosticSession, error)
	SetSessionActive(ctx context.Context, id uuid.UUID, active bool) error
	SetReviewStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateVerdictRule(ctx context.Context, req dto.VerdictRuleRequest) (*dto.VerdictRuleResponse, error)
	UpdateVerdictRule(ctx context.Context, id uuid.UUID, req dto.VerdictRuleRequest) (*dto.VerdictRuleResponse, error)
	DeleteVerdictRule(ctx context.Context, id uuid.UUID) error
	ListVerdictRules(ctx context.Context) ([]dto.VerdictRuleResponse, error)
	CheckVerdict(ctx context.Context, req dto.VerdictCheckRequest) (*dto.VerdictCheckResponse, error)
}

type adminService struct {
	cfg         *config.Config
	adminRepo   contract.AdminUserRepository
	ruleRepo    contract.VerdictRuleRepository
	sessionRepo contract.DiagnosticSessionRepository
	log         logger.ILogger
}

func NewAdminService(
	cfg *config.Config,
	adminRepo contract.AdminUserRepository,
	ruleRepo contract.VerdictRuleRepository,
	sessionRepo contract.DiagnosticSessionRepository,
	log logger.ILogger,
) IAdminService {
	return &adminService{
		cfg:         cfg,
		adminRepo:   adminRepo,
		ruleRepo:    ruleRepo,
		sessionRepo: sessionRepo,
		log:         log,
	}
}

func (s *adminService) Login(ctx context.Context, req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, serverutils.ErrForbidden("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.ErrForbidden("invalid credentials")
	}

	expiresAt := time.Now().Add(adminTokenTTL)
	claims := jwt.MapClaims{
		"sub":  admin.Id.String(),
		"role": "admin",
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Keys.AdminJwtSecret))
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin", "Admin logged in", map[string]interface{}{
		"email": admin.Email,
	})
	return &dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *adminService) ListSessions(ctx context.Context) ([]dto.SessionSummaryResponse, error) {
	sessions, err := s.sessionRepo.FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	out := make([]dto.SessionSummaryResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.SessionSummaryResponse{
			Id:            session.Id,
			Email:         session.Email,
			DisplayName:   session.DisplayName,
			Active:        session.Active,
			ReviewStatus:  session.ReviewStatus,
			PhaseProgress: phaseProgress(session),
			CreatedAt:     session.CreatedAt,
		})
	}
	return out, nil
}

func phaseProgress(session *entity.DiagnosticSession) int {
	s1 := session.Service1
	switch {
	case s1.Phase5 != nil:
		return 5
	case s1.Phase4 != nil:
		return 4
	case s1.Phase3 != nil:
		return 3
	case s1.Phase2 != nil:
		return 2
	case s1.Phase1 != nil:
		return 1
	case s1.Phase0 != nil:
		return 0
	default:
		return -1
	}
}

func (s *adminService) GetSession(ctx context.Context, id uuid.UUID) (*entity.DiagnosticSession, error) {
	session, err := s.sessionRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound("diagnostic session not found")
	}
	return session, nil
}

func (s *adminService) SetSessionActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}
	if err := s.sessionRepo.SetActive(ctx, id.String(), active); err != nil {
		return err
	}
	s.log.Info("Admin", "Session activation changed", map[string]interface{}{
		"sessionId": id.String(),
		"active":    active,
	})
	return nil
}

func (s *adminService) SetReviewStatus(ctx context.Context, id uuid.UUID, status string) error {
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}
	return s.sessionRepo.SetReviewStatus(ctx, id.String(), status)
}

func (s *adminService) CreateVerdictRule(ctx context.Context, req dto.VerdictRuleRequest) (*dto.VerdictRuleResponse, error) {
	if err := validateExpression(req.Expression); err != nil {
		return nil, err
	}
	rule := &entity.VerdictRule{
		Expression: req.Expression,
		Verdict:    req.Verdict,
		Message:    req.Message,
		Position:   req.Position,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return ruleResponse(rule), nil
}

func (s *adminService) UpdateVerdictRule(ctx context.Context, id uuid.UUID, req dto.VerdictRuleRequest) (*dto.VerdictRuleResponse, error) {
	if err := validateExpression(req.Expression); err != nil {
		return nil, err
	}
	rule, err := s.ruleRepo.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, serverutils.ErrNotFound("verdict rule not found")
	}

	rule.Expression = req.Expression
	rule.Verdict = req.Verdict
	rule.Message = req.Message
	rule.Position = req.Position
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return ruleResponse(rule), nil
}

func (s *adminService) DeleteVerdictRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.ruleRepo.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return serverutils.ErrNotFound("verdict rule not found")
	}
	return s.ruleRepo.Delete(ctx, id)
}

func (s *adminService) ListVerdictRules(ctx context.Context) ([]dto.VerdictRuleResponse, error) {
	rules, err := s.ruleRepo.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VerdictRuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, *ruleResponse(rule))
	}
	return out, nil
}

func (s *adminService) CheckVerdict(ctx context.Context, req dto.VerdictCheckRequest) (*dto.VerdictCheckResponse, error) {
	rules, err := s.ruleRepo.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}

	compiled := make([]verdict.Rule, 0, len(rules))
	for _, rule := range rules {
		compiled = append(compiled, verdict.Rule{
			Expression: rule.Expression,
			Verdict:    rule.Verdict,
			Message:    rule.Message,
		})
	}

	label, message, matched, err := verdict.Evaluate(compiled, verdict.Inputs{
		Score:                req.Score,
		ConstraintViolations: req.ConstraintViolations,
		SubmissionsCount:     req.SubmissionsCount,
	})
	if err != nil {
		return nil, serverutils.ErrContractViolation("a stored verdict rule no longer compiles: " + err.Error())
	}

	return &dto.VerdictCheckResponse{Matched: matched, Verdict: label, Message: message}, nil
}

// validateExpression rejects malformed expressions at write time so the
// evaluation path never meets one.
func validateExpression(expression string) error {
	if _, err := verdict.Parse(expression); err != nil {
		return serverutils.ErrValidation("invalid rule expression: " + err.Error())
	}
	return nil
}

func ruleResponse(rule *entity.VerdictRule) *dto.VerdictRuleResponse {
	return &dto.VerdictRuleResponse{
		Id:         rule.Id,
		Expression: rule.Expression,
		Verdict:    rule.Verdict,
		Message:    rule.Message,
		Position:   rule.Position,
	}
}
