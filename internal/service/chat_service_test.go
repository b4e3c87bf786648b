package service

import (
	"context"
	"testing"
	"time"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/repository/memory"
	"ai-coaching-be/pkg/llm/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatService(provider *fakeProvider) (IChatService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	gw := gateway.New(provider, time.Second, nopLogger{})
	svc := NewChatService(NewSessionGuard(repo), memory.NewChatContextRepository(), gw, nopLogger{})
	return svc, repo
}

func seedCompletedDiagnostic(t *testing.T, repo *fakeSessionRepo) {
	t.Helper()
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase5 = &entity.Phase5{Status: constant.Phase5StatusCompleted}
	})
}

func TestChatRequiresCompletedDiagnostic(t *testing.T) {
	svc, repo := newTestChatService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})

	_, err := svc.Chat(context.Background(), dto.ChatRequest{Email: testEmail, Question: "Que faire ?"}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))
}

func TestChatAnswersOnTopicQuestion(t *testing.T) {
	provider := &fakeProvider{responses: []string{"Commencez par formaliser vos budgets."}}
	svc, repo := newTestChatService(provider)
	seedCompletedDiagnostic(t, repo)

	res, err := svc.Chat(context.Background(), dto.ChatRequest{Email: testEmail, Question: "Par quoi commencer ?"}, testOrigin)
	require.NoError(t, err)
	assert.False(t, res.Refused)
	assert.Equal(t, "Commencez par formaliser vos budgets.", res.Answer)
}

func TestChatRefusalIsServedVerbatim(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		"Je suis navré mais : " + constant.ChatRefusalMessage + " (hors sujet)",
	}}
	svc, repo := newTestChatService(provider)
	seedCompletedDiagnostic(t, repo)

	res, err := svc.Chat(context.Background(), dto.ChatRequest{Email: testEmail, Question: "Quelle est la capitale du Pérou ?"}, testOrigin)
	require.NoError(t, err)
	assert.True(t, res.Refused)
	assert.Equal(t, constant.ChatRefusalMessage, res.Answer)
}

func TestChatEmptyAnswerIsTransportError(t *testing.T) {
	provider := &fakeProvider{responses: []string{"   "}}
	svc, repo := newTestChatService(provider)
	seedCompletedDiagnostic(t, repo)

	_, err := svc.Chat(context.Background(), dto.ChatRequest{Email: testEmail, Question: "Par quoi commencer ?"}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindTransport))
}

func TestChatFollowUpQuestions(t *testing.T) {
	provider := &fakeProvider{responses: []string{"Réponse un.", "Réponse deux."}}
	svc, repo := newTestChatService(provider)
	seedCompletedDiagnostic(t, repo)
	ctx := context.Background()

	_, err := svc.Chat(ctx, dto.ChatRequest{Email: testEmail, Question: "Un ?"}, testOrigin)
	require.NoError(t, err)
	_, err = svc.Chat(ctx, dto.ChatRequest{Email: testEmail, Question: "Deux ?"}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount())
}
