package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"ai-coaching-be/internal/config"
	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/pkg/extraction"
	"ai-coaching-be/pkg/llm/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{DefaultLocale: "fr"},
		Ai:  config.AIConfig{MaxUploadMB: 5, TimeoutSeconds: 5},
	}
}

func newTestService(provider *fakeProvider) (IDiagnosticService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	guard := NewSessionGuard(repo)
	gw := gateway.New(provider, time.Second, nopLogger{})
	svc := NewDiagnosticService(testConfig(), repo, guard, gw, nil, nopLogger{})
	return svc, repo
}

// newUnconfiguredService wires a gateway with no provider at all.
func newUnconfiguredService() (IDiagnosticService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	guard := NewSessionGuard(repo)
	gw := gateway.New(nil, time.Second, nopLogger{})
	svc := NewDiagnosticService(testConfig(), repo, guard, gw, nil, nopLogger{})
	return svc, repo
}

const (
	testEmail  = "jean@example.com"
	testOrigin = "127.0.0.1"
)

func seedActiveSession(t *testing.T, repo *fakeSessionRepo, mutate func(*entity.DiagnosticSession)) *entity.DiagnosticSession {
	t.Helper()
	session := &entity.DiagnosticSession{
		Email:        testEmail,
		DisplayName:  "Jean Dupont",
		OriginIP:     testOrigin,
		Locale:       "fr",
		Active:       true,
		ReviewStatus: constant.ReviewStatusPending,
		CreatedAt:    time.Now(),
	}
	if mutate != nil {
		mutate(session)
	}
	require.NoError(t, repo.Create(context.Background(), session))
	return session
}

func completedPhase0() *entity.Phase0 {
	return &entity.Phase0{
		CvText:             "cv text",
		Profile:            entity.Profile{Name: "Jean", CurrentRole: "Chef de projet", YearsExperience: 9, Skills: []string{"gestion"}},
		InitialObservation: "obs",
		CadrageNote:        "## Note de cadrage",
		CadrageSource:      entity.SourceGenerated,
		ProfileSource:      entity.SourceGenerated,
		Interview: entity.Interview{
			History:       make([]entity.InterviewEntry, 5),
			QuestionCount: 5,
			Status:        constant.InterviewStatusCompleted,
		},
	}
}

func completedPhase1() *entity.Phase1 {
	return &entity.Phase1{
		Analysis: entity.CoherenceAnalysis{
			ClaimedRole:      "Chef de projet",
			RealRole:         "Coordinateur",
			IncoherenceLevel: constant.IncoherenceLevelLow,
			Verdict:          "ok",
			Source:           entity.SourceGenerated,
		},
		ReportMarkdown: "## Rapport",
		ReportSource:   entity.SourceGenerated,
		Status:         constant.Phase1StatusCompleted,
	}
}

const questionJSON = `{"text": "Comment tranchez-vous ?", "options": [
	{"key": "A", "label": "un"}, {"key": "B", "label": "deux"},
	{"key": "C", "label": "trois"}, {"key": "D", "label": "quatre"}]}`

func makeDocx(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestSubmitRejectsSecondActiveSession(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, nil)

	_, err := svc.Submit(context.Background(), dto.SubmitRequest{Email: testEmail, DisplayName: "Jean"}, testOrigin, "ua")
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindConflict))
}

func TestSubmitCreatesInactiveSession(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})

	res, err := svc.Submit(context.Background(), dto.SubmitRequest{Email: testEmail, DisplayName: "Jean"}, "::1", "ua")
	require.NoError(t, err)
	assert.False(t, res.Active)

	stored, err := repo.FindLatestByEmail(context.Background(), testEmail)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "127.0.0.1", stored.OriginIP)
	assert.Equal(t, "fr", stored.Locale)
}

func TestGuardRejectsOriginMismatch(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})

	_, err := svc.StartInterview(context.Background(), testEmail, "10.0.0.9")
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindForbidden))
}

func TestGuardRejectsInactiveSession(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Active = false
	})

	_, err := svc.StartInterview(context.Background(), testEmail, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindForbidden))
}

func TestAnalyzeCvGeneratesProfile(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"name": "Jean", "currentRole": "Chef de projet", "yearsExperience": 9,
		  "skills": ["gestion", "budget"], "summary": "Parcours solide.",
		  "initialObservation": "Titre possiblement gonflé."}`,
	}}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, nil)

	res, err := svc.AnalyzeCv(context.Background(), testEmail, testOrigin, extraction.MediaTypeDOCX, makeDocx(t, "Jean Dupont, chef de projet depuis 9 ans"))
	require.NoError(t, err)
	assert.Equal(t, "Chef de projet", res.Profile.CurrentRole)
	assert.Equal(t, entity.SourceGenerated, res.Source)
	assert.Equal(t, 1, provider.callCount())

	// Replaying the upload returns the stored profile without a new call.
	again, err := svc.AnalyzeCv(context.Background(), testEmail, testOrigin, extraction.MediaTypeDOCX, makeDocx(t, "autre contenu"))
	require.NoError(t, err)
	assert.Equal(t, res.Profile, again.Profile)
	assert.Equal(t, 1, provider.callCount())
}

func TestAnalyzeCvRejectsUnsupportedFormat(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, nil)

	_, err := svc.AnalyzeCv(context.Background(), testEmail, testOrigin, "text/plain", []byte("plain resume"))
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindValidation))
}

func TestAnalyzeCvRejectsOversizedUpload(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, nil)

	big := make([]byte, 6*1024*1024)
	_, err := svc.AnalyzeCv(context.Background(), testEmail, testOrigin, extraction.MediaTypePDF, big)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindValidation))
}

func TestAnalyzeCvNotConfiguredPropagates(t *testing.T) {
	svc, repo := newUnconfiguredService()
	seedActiveSession(t, repo, nil)

	_, err := svc.AnalyzeCv(context.Background(), testEmail, testOrigin, extraction.MediaTypeDOCX, makeDocx(t, "contenu"))
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotConfigured))

	// No partial phase data may survive a NotConfigured failure.
	stored, _ := repo.FindLatestByEmail(context.Background(), testEmail)
	assert.Nil(t, stored.Service1.Phase0)
}

func TestInterviewFlowToCompletion(t *testing.T) {
	responses := []string{questionJSON}
	for i := 0; i < 4; i++ {
		responses = append(responses, questionJSON)
	}
	responses = append(responses, `{"cadrageNote": "## Note de cadrage finale"}`)
	provider := &fakeProvider{responses: responses}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		p0 := completedPhase0()
		p0.Interview = entity.Interview{History: []entity.InterviewEntry{}, Status: constant.InterviewStatusReady}
		p0.CadrageNote = ""
		s.Service1.Phase0 = p0
	})

	res, err := svc.StartInterview(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	require.NotNil(t, res.Question)
	assert.Equal(t, "q1", res.Question.Id)
	assert.Equal(t, constant.InterviewStatusInProgress, res.Status)

	// Restarting re-serves the pending question, no extra call.
	calls := provider.callCount()
	again, err := svc.StartInterview(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, res.Question.Id, again.Question.Id)
	assert.Equal(t, calls, provider.callCount())

	current := res
	for i := 0; i < constant.InterviewQuestionTotal; i++ {
		current, err = svc.AnswerInterview(context.Background(), dto.InterviewAnswerRequest{
			Email:       testEmail,
			QuestionId:  current.Question.Id,
			SelectedKey: "B",
		}, testOrigin)
		require.NoError(t, err)
	}

	assert.Equal(t, constant.InterviewStatusCompleted, current.Status)
	assert.Equal(t, constant.InterviewQuestionTotal, current.QuestionCount)
	assert.Equal(t, "## Note de cadrage finale", current.CadrageNote)
	assert.Nil(t, current.Question)

	stored, _ := repo.FindLatestByEmail(context.Background(), testEmail)
	history := stored.Service1.Phase0.Interview.History
	require.Len(t, history, 5)
	seen := map[string]bool{}
	for _, h := range history {
		assert.False(t, seen[h.QuestionId], "question id %s repeated", h.QuestionId)
		seen[h.QuestionId] = true
		assert.Equal(t, "B", h.SelectedKey)
		assert.NotEmpty(t, h.AnswerText)
	}
}

func TestAnswerInterviewStaleQuestionId(t *testing.T) {
	provider := &fakeProvider{responses: []string{questionJSON}}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		p0 := completedPhase0()
		p0.Interview = entity.Interview{History: []entity.InterviewEntry{}, Status: constant.InterviewStatusReady}
		s.Service1.Phase0 = p0
	})

	_, err := svc.StartInterview(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)

	_, err = svc.AnswerInterview(context.Background(), dto.InterviewAnswerRequest{
		Email:       testEmail,
		QuestionId:  "q99",
		SelectedKey: "A",
	}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindConflict))
}

func TestInterviewFallsBackWhenProviderFails(t *testing.T) {
	provider := &fakeProvider{fail: true}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		p0 := completedPhase0()
		p0.Interview = entity.Interview{History: []entity.InterviewEntry{}, Status: constant.InterviewStatusReady}
		s.Service1.Phase0 = p0
	})

	res, err := svc.StartInterview(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	require.NotNil(t, res.Question)
	assert.Equal(t, entity.SourceFallback, res.Question.Source)
	assert.Len(t, res.Question.Options, 4)
	// One initial call plus one strict retry.
	assert.Equal(t, 2, provider.callCount())
}

func TestCoherenceProbeBranch(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"claimedRole": "Chef de projet", "realRole": "Coordinateur",
		  "incoherenceLevel": "high", "probeQuestion": "Qui validait vos budgets ?",
		  "verdict": "ecart significatif"}`,
		`{"reportMarkdown": "## Rapport de coherence"}`,
	}}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})

	res, err := svc.ComputeCoherence(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase1StatusAwaitingProbe, res.Status)
	assert.Empty(t, res.ReportMarkdown)

	// Recomputing while awaiting the probe must not call the provider again.
	calls := provider.callCount()
	res, err = svc.ComputeCoherence(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase1StatusAwaitingProbe, res.Status)
	assert.Equal(t, calls, provider.callCount())

	res, err = svc.AnswerProbe(context.Background(), dto.ProbeAnswerRequest{Email: testEmail, Answer: "Mon n+1 signait, je préparais tout."}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase1StatusCompleted, res.Status)
	assert.Equal(t, "## Rapport de coherence", res.ReportMarkdown)

	stored, _ := repo.FindLatestByEmail(context.Background(), testEmail)
	require.NotNil(t, stored.Service1.Phase1.Probe)
	assert.Equal(t, "Qui validait vos budgets ?", stored.Service1.Phase1.Probe.Question)
}

func TestCoherenceLowSkipsProbe(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"claimedRole": "Dev", "realRole": "Dev", "incoherenceLevel": "low", "verdict": "coherent"}`,
		`{"reportMarkdown": "## Rapport"}`,
	}}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})

	res, err := svc.ComputeCoherence(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase1StatusCompleted, res.Status)
	assert.Equal(t, "## Rapport", res.ReportMarkdown)
	assert.Equal(t, 2, provider.callCount())
}

func TestCoherenceTransportFallbackCompletes(t *testing.T) {
	provider := &fakeProvider{fail: true}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
	})

	res, err := svc.ComputeCoherence(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase1StatusCompleted, res.Status)
	assert.NotEmpty(t, res.ReportMarkdown)
	assert.Equal(t, entity.SourceFallback, res.Analysis.Source)

	stored, _ := repo.FindLatestByEmail(context.Background(), testEmail)
	p1 := stored.Service1.Phase1
	require.NotNil(t, p1)
	assert.Equal(t, entity.SourceFallback, p1.ReportSource)
	// Two attempts per step: analysis then report, each with one strict retry.
	assert.Equal(t, 4, provider.callCount())
}

func TestPhaseOrderEnforced(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, nil)

	_, err := svc.ComputeCoherence(context.Background(), testEmail, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))

	_, err = svc.StartScenarios(context.Background(), testEmail, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))

	_, err = svc.StartPaths(context.Background(), testEmail, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))

	_, err = svc.StartPlan(context.Background(), testEmail, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))

	_, err = svc.Aggregate(context.Background(), testEmail, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))
}

func TestScenarioAnswersCompletePhase(t *testing.T) {
	options := `[{"label": "a"}, {"label": "b"}, {"label": "c"}, {"label": "d"}]`
	provider := &fakeProvider{responses: []string{
		`{"scenarios": [
			{"archetype": "client_crisis", "title": "T1", "description": "D", "options": ` + options + `},
			{"archetype": "team_conflict", "title": "T2", "description": "D", "options": ` + options + `},
			{"archetype": "impossible_deadline", "title": "T3", "description": "D", "options": ` + options + `}]}`,
		`{"reportMarkdown": "## Rapport strategique"}`,
	}}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase1 = completedPhase1()
	})

	res, err := svc.StartScenarios(context.Background(), testEmail, testOrigin)
	require.NoError(t, err)
	require.Len(t, res.Scenarios, 3)
	assert.Equal(t, constant.PhaseStatusInProgress, res.Status)

	for i, s := range res.Scenarios {
		res, err = svc.AnswerScenario(context.Background(), dto.ScenarioAnswerRequest{
			Email:       testEmail,
			ScenarioId:  s.Id,
			SelectedKey: "A",
		}, testOrigin)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, constant.PhaseStatusInProgress, res.Status)
		}
	}
	assert.Equal(t, constant.PhaseStatusCompleted, res.Status)
	assert.Equal(t, "## Rapport strategique", res.ReportMarkdown)

	_, err = svc.AnswerScenario(context.Background(), dto.ScenarioAnswerRequest{
		Email: testEmail, ScenarioId: "s9", SelectedKey: "A",
	}, testOrigin)
	require.NoError(t, err) // phase already completed, idempotent echo
}

func TestAnswerScenarioUnknownId(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase1 = completedPhase1()
		s.Service1.Phase2 = &entity.Phase2{
			Scenarios:      []entity.Scenario{{Id: "s1", Archetype: entity.ArchetypeClientCrisis, Options: []entity.QuestionOption{{Key: "A", Label: "x"}}}},
			Answers:        map[string]string{},
			ScenarioSource: entity.SourceGenerated,
			Status:         constant.PhaseStatusInProgress,
		}
	})

	_, err := svc.AnswerScenario(context.Background(), dto.ScenarioAnswerRequest{
		Email: testEmail, ScenarioId: "nope", SelectedKey: "A",
	}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotFound))
}

func TestSelectPathIsFinal(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase1 = completedPhase1()
		s.Service1.Phase3 = &entity.Phase3{
			Paths: []entity.GrowthPath{
				{Type: entity.PathTypeSkills, Title: "A"},
				{Type: entity.PathTypeExperience, Title: "B"},
				{Type: entity.PathTypeMentoring, Title: "C"},
			},
			PathsSource: entity.SourceGenerated,
			Status:      constant.PhaseStatusInProgress,
		}
	})

	res, err := svc.SelectPath(context.Background(), dto.SelectPathRequest{Email: testEmail, PathType: entity.PathTypeSkills}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, entity.PathTypeSkills, res.SelectedGrowthPath)
	assert.Equal(t, constant.PhaseStatusCompleted, res.Status)

	// Same choice replays fine.
	_, err = svc.SelectPath(context.Background(), dto.SelectPathRequest{Email: testEmail, PathType: entity.PathTypeSkills}, testOrigin)
	require.NoError(t, err)

	// Switching is a conflict.
	_, err = svc.SelectPath(context.Background(), dto.SelectPathRequest{Email: testEmail, PathType: entity.PathTypeMentoring}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindConflict))
}

func TestToggleTaskUnknownIdLeavesRoadmapUntouched(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase4 = &entity.Phase4{
			PositioningNote: "P",
			PlanningDoc:     "M",
			Roadmap: []entity.RoadmapMonth{
				{Month: 1, Theme: "A", Tasks: []entity.RoadmapTask{{Id: "m1-t1", Text: "t"}}},
			},
			PlanSource: entity.SourceGenerated,
			Status:     constant.PhaseStatusCompleted,
		}
	})

	_, err := svc.ToggleTask(context.Background(), dto.ToggleTaskRequest{Email: testEmail, TaskId: "m9-t9", Done: true}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotFound))

	stored, _ := repo.FindLatestByEmail(context.Background(), testEmail)
	assert.False(t, stored.Service1.Phase4.Roadmap[0].Tasks[0].Done)

	res, err := svc.ToggleTask(context.Background(), dto.ToggleTaskRequest{Email: testEmail, TaskId: "m1-t1", Done: true}, testOrigin)
	require.NoError(t, err)
	assert.True(t, res.Roadmap[0].Tasks[0].Done)
}

func TestCASConflictSurfacesAsConflict(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase4 = &entity.Phase4{
			Roadmap:    []entity.RoadmapMonth{{Month: 1, Tasks: []entity.RoadmapTask{{Id: "m1-t1", Text: "t"}}}},
			PlanSource: entity.SourceGenerated,
			Status:     constant.PhaseStatusCompleted,
		}
	})
	repo.failNextCAS = true

	_, err := svc.ToggleTask(context.Background(), dto.ToggleTaskRequest{Email: testEmail, TaskId: "m1-t1", Done: true}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindConflict))
}

func TestFinalPhaseFlow(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"matchAnalysis": "## Lecture croisee"}`,
		`{"actions": [{"title": "un"}, {"title": "deux"}, {"title": "trois"}], "skillGap": "formalisation"}`,
		`{"grandScenario": "## Grand scenario"}`,
		`{"score": 81, "verdict": "valide", "strengths": ["s"], "weaknesses": ["w"],
		  "advice": "a", "handoverCoach": "hc", "handoverParticipant": "hp"}`,
		`{"dossier": "# Dossier expert"}`,
	}}
	svc, repo := newTestService(provider)
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase1 = completedPhase1()
		s.Service1.Phase2 = &entity.Phase2{ReportMarkdown: "## R", Status: constant.PhaseStatusCompleted}
		s.Service1.Phase3 = &entity.Phase3{
			Paths: []entity.GrowthPath{
				{Type: entity.PathTypeSkills, Title: "A"},
				{Type: entity.PathTypeExperience, Title: "B"},
				{Type: entity.PathTypeMentoring, Title: "C"},
			},
			SelectedGrowthPath: entity.PathTypeSkills,
			Status:             constant.PhaseStatusCompleted,
		}
		s.Service1.Phase4 = &entity.Phase4{
			PositioningNote: "P", PlanningDoc: "M",
			Roadmap: []entity.RoadmapMonth{{Month: 1, Theme: "T", Tasks: []entity.RoadmapTask{{Id: "m1-t1", Text: "t"}}}},
			Status:  constant.PhaseStatusCompleted,
		}
	})
	ctx := context.Background()

	res, err := svc.Aggregate(ctx, testEmail, testOrigin)
	require.NoError(t, err)
	require.NotNil(t, res.AggregatedProfile)
	assert.Equal(t, "Coordinateur", res.AggregatedProfile.RealRole)
	assert.Equal(t, entity.PathTypeSkills, res.AggregatedProfile.SelectedPath)
	assert.ElementsMatch(t, []string{"B", "C"}, res.AggregatedProfile.Exclusions)
	assert.Equal(t, constant.Phase5StatusAwaitingSelfDescription, res.Status)
	assert.Equal(t, 0, provider.callCount())

	// Grand simulation cannot be skipped to.
	_, err = svc.StartGrandSimulation(ctx, testEmail, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotReady))

	res, err = svc.SubmitSelfDescription(ctx, dto.SelfDescriptionRequest{Email: testEmail, Description: "Je suis un chef de projet confirmé."}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase5StatusAwaitingActionChoice, res.Status)
	require.Len(t, res.FinalActions, 3)
	assert.Equal(t, "formalisation", res.SkillGap)

	res, err = svc.ChooseAction(ctx, dto.ChooseActionRequest{Email: testEmail, ActionId: "a2"}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase5StatusAwaitingGrandSimulation, res.Status)

	_, err = svc.ChooseAction(ctx, dto.ChooseActionRequest{Email: testEmail, ActionId: "a3"}, testOrigin)
	assert.True(t, serverutils.IsKind(err, serverutils.KindConflict))

	res, err = svc.StartGrandSimulation(ctx, testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, "## Grand scenario", res.GrandScenario)
	assert.Equal(t, constant.Phase5StatusAwaitingGrandAnswer, res.Status)

	// Resuming serves the stored scenario verbatim.
	calls := provider.callCount()
	again, err := svc.StartGrandSimulation(ctx, testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, res.GrandScenario, again.GrandScenario)
	assert.Equal(t, calls, provider.callCount())

	res, err = svc.AnswerGrand(ctx, dto.GrandAnswerRequest{Email: testEmail, Answer: "Je documente puis je convoque le commanditaire."}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, constant.Phase5StatusCompleted, res.Status)
	require.NotNil(t, res.Evaluation)
	assert.Equal(t, 81, res.Evaluation.Score)

	dossier, err := svc.Dossier(ctx, testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, "# Dossier expert", dossier.DossierMarkdown)

	// Dossier is generated once, then cached.
	calls = provider.callCount()
	dossier, err = svc.Dossier(ctx, testEmail, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, "# Dossier expert", dossier.DossierMarkdown)
	assert.Equal(t, calls, provider.callCount())
}

func TestChooseActionUnknownId(t *testing.T) {
	svc, repo := newTestService(&fakeProvider{})
	seedActiveSession(t, repo, func(s *entity.DiagnosticSession) {
		s.Service1.Phase0 = completedPhase0()
		s.Service1.Phase4 = &entity.Phase4{Status: constant.PhaseStatusCompleted}
		s.Service1.Phase5 = &entity.Phase5{
			AggregatedProfile: &entity.AggregatedProfile{},
			FinalActions:      []entity.FinalAction{{Id: "a1"}, {Id: "a2"}, {Id: "a3"}},
			Status:            constant.Phase5StatusAwaitingActionChoice,
		}
	})

	_, err := svc.ChooseAction(context.Background(), dto.ChooseActionRequest{Email: testEmail, ActionId: "a9"}, testOrigin)
	require.Error(t, err)
	assert.True(t, serverutils.IsKind(err, serverutils.KindNotFound))
}
