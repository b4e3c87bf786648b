package service

import (
	"context"
	"fmt"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/pkg/genai/fallback"
	"ai-coaching-be/pkg/genai/normalize"
)

// StartScenarios opens phase 2 with the three behavioral scenarios.
func (s *diagnosticService) StartScenarios(ctx context.Context, email, origin string) (*dto.Phase2Response, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if p1 := session.Service1.Phase1; p1 == nil || p1.Status != constant.Phase1StatusCompleted {
		return nil, serverutils.ErrNotReady("complete the coherence audit before the simulation")
	}
	if p2 := session.Service1.Phase2; p2 != nil {
		return phase2Response(p2), nil
	}

	p0 := session.Service1.Phase0
	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCandidate profile:\n%s\n\nCoherence analysis:\n%s",
		localeLabel(session.Locale), mustJSON(p0.Profile), mustJSON(session.Service1.Phase1.Analysis),
	)

	var scenarios []entity.Scenario
	source, err := s.pipeline.Generate(ctx, session, "phase2", "scenarios",
		constant.ScenarioSystemPrompt, userPrompt, constant.TempGenerative,
		func(raw string) error {
			sc, parseErr := normalize.Scenarios(raw)
			if parseErr != nil {
				return parseErr
			}
			scenarios = sc
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		scenarios = fallback.Scenarios(p0.Profile)
	}

	p2 := &entity.Phase2{
		Scenarios:      scenarios,
		Answers:        map[string]string{},
		ScenarioSource: source,
		Status:         constant.PhaseStatusInProgress,
	}
	session.Service1.Phase2 = p2
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase2Response(p2), nil
}

// AnswerScenario records one scenario choice; the third answer triggers the
// strategic report and completes the phase. Re-answering a scenario before
// completion overwrites the previous choice.
func (s *diagnosticService) AnswerScenario(ctx context.Context, req dto.ScenarioAnswerRequest, origin string) (*dto.Phase2Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p2 := session.Service1.Phase2
	if p2 == nil {
		return nil, serverutils.ErrNotReady("start the simulation before answering scenarios")
	}
	if p2.Status == constant.PhaseStatusCompleted {
		return phase2Response(p2), nil
	}

	var scenario *entity.Scenario
	for i := range p2.Scenarios {
		if p2.Scenarios[i].Id == req.ScenarioId {
			scenario = &p2.Scenarios[i]
			break
		}
	}
	if scenario == nil {
		return nil, serverutils.ErrNotFound("unknown scenario id")
	}

	valid := false
	for _, opt := range scenario.Options {
		if opt.Key == req.SelectedKey {
			valid = true
			break
		}
	}
	if !valid {
		return nil, serverutils.ErrValidation("selected key is not one of the scenario options")
	}

	p2.Answers[req.ScenarioId] = req.SelectedKey

	if len(p2.Answers) == len(p2.Scenarios) {
		if err := s.closeSimulation(ctx, session, p2); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	if p2.Status == constant.PhaseStatusCompleted {
		s.pipeline.phaseCompleted(session, 2)
	}
	return phase2Response(p2), nil
}

func (s *diagnosticService) closeSimulation(ctx context.Context, session *entity.DiagnosticSession, p2 *entity.Phase2) error {
	p0 := session.Service1.Phase0
	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCandidate profile:\n%s\n\nScenarios:\n%s\n\nChoices (scenario id -> option key):\n%s",
		localeLabel(session.Locale), mustJSON(p0.Profile), mustJSON(p2.Scenarios), mustJSON(p2.Answers),
	)

	var report string
	source, err := s.pipeline.Generate(ctx, session, "phase2", "strategic_report",
		constant.StrategicReportSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			r, parseErr := normalize.MarkdownField(raw, "reportMarkdown")
			if parseErr != nil {
				return parseErr
			}
			report = r
			return nil
		})
	if err != nil {
		return err
	}
	if source == entity.SourceFallback {
		report = fallback.StrategicReport(p0.Profile, p2.Scenarios, p2.Answers)
	}

	p2.ReportMarkdown = report
	p2.ReportSource = source
	p2.Status = constant.PhaseStatusCompleted
	return nil
}

func phase2Response(p2 *entity.Phase2) *dto.Phase2Response {
	return &dto.Phase2Response{
		Scenarios:      p2.Scenarios,
		Answers:        p2.Answers,
		ReportMarkdown: p2.ReportMarkdown,
		Status:         p2.Status,
	}
}
