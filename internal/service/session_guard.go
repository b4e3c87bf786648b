package service

import (
	"context"
	"strings"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/repository/contract"
)

// ISessionGuard is the sole authorization boundary for participant phase
// endpoints: the requester's network origin must match the one recorded at
// submission, and an administrator must have set the session active.
type ISessionGuard interface {
	Authorize(ctx context.Context, email, origin string) (*entity.DiagnosticSession, error)
}

type sessionGuard struct {
	sessionRepo contract.DiagnosticSessionRepository
}

func NewSessionGuard(sessionRepo contract.DiagnosticSessionRepository) ISessionGuard {
	return &sessionGuard{sessionRepo: sessionRepo}
}

func (g *sessionGuard) Authorize(ctx context.Context, email, origin string) (*entity.DiagnosticSession, error) {
	session, err := g.sessionRepo.FindLatestByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound("no diagnostic session for this email")
	}

	if NormalizeOrigin(session.OriginIP) != NormalizeOrigin(origin) {
		return nil, serverutils.ErrForbidden("request origin does not match the session origin")
	}

	if !session.Active {
		return nil, serverutils.ErrForbidden("session is not activated")
	}

	return session, nil
}

// NormalizeOrigin folds equivalent loopback and IPv4-mapped notations so an
// address recorded as ::1 still matches a later 127.0.0.1 requester.
func NormalizeOrigin(origin string) string {
	addr := strings.TrimSpace(strings.ToLower(origin))
	if strings.HasPrefix(addr, "::ffff:") {
		addr = strings.TrimPrefix(addr, "::ffff:")
	}
	if addr == "::1" {
		addr = "127.0.0.1"
	}
	return addr
}
