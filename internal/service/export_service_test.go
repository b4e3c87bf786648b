package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendDossier(toEmail, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

func TestExportRequiresPhaseData(t *testing.T) {
	repo := newFakeSessionRepo()
	seedActiveSession(t, repo, nil)
	svc := NewExportService(NewSessionGuard(repo), &fakeMailer{}, nopLogger{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{Email: testEmail}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))
}

func TestExportBundlesCompletedPhases(t *testing.T) {
	repo := newFakeSessionRepo()
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase1 = completedPhase1()
		s.Service1.Phase4 = &entity.Phase4{
			PositioningNote: "## Positionnement",
			PlanningDoc:     "## Méthode",
			Roadmap: []entity.RoadmapMonth{
				{Month: 1, Theme: "Fondations", Tasks: []entity.RoadmapTask{
					{Id: "m1-t1", Text: "Cartographier", Done: true},
					{Id: "m1-t2", Text: "Documenter"},
				}},
			},
			Status: constant.PhaseStatusCompleted,
		}
	})
	mailer := &fakeMailer{}
	svc := NewExportService(NewSessionGuard(repo), mailer, nopLogger{})

	res, err := svc.Export(context.Background(), dto.ExportRequest{Email: testEmail, SendEmail: true}, testOrigin)
	require.NoError(t, err)
	assert.True(t, res.Emailed)
	assert.Equal(t, []string{testEmail}, mailer.sent)

	assert.Contains(t, res.Markdown, "Jean Dupont")
	assert.Contains(t, res.Markdown, "## Note de cadrage")
	assert.Contains(t, res.Markdown, "## Rapport")
	assert.Contains(t, res.Markdown, "- [x] Cartographier")
	assert.Contains(t, res.Markdown, "- [ ] Documenter")
	assert.False(t, strings.Contains(res.Markdown, "Trajectoire"), "no path selected yet")
}

func TestExportWithoutMailerConfigured(t *testing.T) {
	repo := newFakeSessionRepo()
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})
	svc := NewExportService(NewSessionGuard(repo), nil, nopLogger{})

	// Markdown-only export still works.
	res, err := svc.Export(context.Background(), dto.ExportRequest{Email: testEmail}, testOrigin)
	require.NoError(t, err)
	assert.False(t, res.Emailed)

	_, err = svc.Export(context.Background(), dto.ExportRequest{Email: testEmail, SendEmail: true}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotConfigured))
}

func TestExportMailFailure(t *testing.T) {
	repo := newFakeSessionRepo()
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})
	svc := NewExportService(NewSessionGuard(repo), &fakeMailer{err: errors.New("smtp refused")}, nopLogger{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{Email: testEmail, SendEmail: true}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindTransport))
}
