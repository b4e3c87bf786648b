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

// Aggregate opens phase 5 by folding every prior artifact into one profile.
// The aggregation is deterministic, no generation call is involved.
func (s *diagnosticService) Aggregate(ctx context.Context, email, origin string) (*dto.Phase5Response, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if p4 := session.Service1.Phase4; p4 == nil {
		return nil, serverutils.ErrNotReady("generate the plan before the final validation")
	}
	if p5 := session.Service1.Phase5; p5 != nil {
		return phase5Response(p5), nil
	}

	p5 := &entity.Phase5{
		AggregatedProfile: buildAggregatedProfile(session),
		Status:            constant.Phase5StatusAwaitingSelfDescription,
	}
	session.Service1.Phase5 = p5
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase5Response(p5), nil
}

func buildAggregatedProfile(session *entity.DiagnosticSession) *entity.AggregatedProfile {
	s1 := session.Service1
	analysis := s1.Phase1.Analysis

	maturity := "junior"
	switch years := s1.Phase0.Profile.YearsExperience; {
	case years >= 8:
		maturity = "senior"
	case years >= 3:
		maturity = "confirmed"
	}

	exclusions := make([]string, 0, 2)
	for _, p := range s1.Phase3.Paths {
		if p.Type != s1.Phase3.SelectedGrowthPath {
			exclusions = append(exclusions, p.Title)
		}
	}

	return &entity.AggregatedProfile{
		DeclaredRole:  analysis.ClaimedRole,
		RealRole:      analysis.RealRole,
		MaturityLevel: maturity,
		Strengths:     analysis.ConsistencyPoints,
		Weaknesses:    analysis.IncoherencePoints,
		Exclusions:    exclusions,
		SelectedPath:  s1.Phase3.SelectedGrowthPath,
		Roadmap:       s1.Phase4.Roadmap,
	}
}

// SubmitSelfDescription confronts the participant's self-image with the
// aggregated profile, then derives the three final actions and the skill gap.
func (s *diagnosticService) SubmitSelfDescription(ctx context.Context, req dto.SelfDescriptionRequest, origin string) (*dto.Phase5Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p5 := session.Service1.Phase5
	if p5 == nil {
		return nil, serverutils.ErrNotReady("aggregate the profile before the self-description")
	}
	if p5.Status != constant.Phase5StatusAwaitingSelfDescription {
		return phase5Response(p5), nil
	}

	p5.SelfDescription = req.Description

	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nAggregated profile:\n%s\n\nSelf-description:\n%s",
		localeLabel(session.Locale), mustJSON(p5.AggregatedProfile), req.Description,
	)

	var match string
	matchSource, err := s.pipeline.Generate(ctx, session, "phase5", "self_match",
		constant.SelfMatchSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			m, parseErr := normalize.MarkdownField(raw, "matchAnalysis")
			if parseErr != nil {
				return parseErr
			}
			match = m
			return nil
		})
	if err != nil {
		return nil, err
	}
	if matchSource == entity.SourceFallback {
		match = fallback.SelfMatch(session.Service1.Phase0.Profile)
	}
	p5.SelfMatchAnalysis = match

	var actions []entity.FinalAction
	var skillGap string
	actionsSource, err := s.pipeline.Generate(ctx, session, "phase5", "final_actions",
		constant.FinalActionsSystemPrompt, userPrompt, constant.TempGenerative,
		func(raw string) error {
			a, gap, parseErr := normalize.FinalActions(raw)
			if parseErr != nil {
				return parseErr
			}
			actions, skillGap = a, gap
			return nil
		})
	if err != nil {
		return nil, err
	}
	if actionsSource == entity.SourceFallback {
		actions, skillGap = fallback.FinalActions(session.Service1.Phase0.Profile)
	}

	p5.FinalActions = actions
	p5.SkillGap = skillGap
	p5.ActionsSource = actionsSource
	p5.Status = constant.Phase5StatusAwaitingActionChoice

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase5Response(p5), nil
}

// ChooseAction commits the participant to one final action.
func (s *diagnosticService) ChooseAction(ctx context.Context, req dto.ChooseActionRequest, origin string) (*dto.Phase5Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p5 := session.Service1.Phase5
	if p5 == nil || p5.Status == constant.Phase5StatusAwaitingSelfDescription {
		return nil, serverutils.ErrNotReady("submit the self-description before choosing an action")
	}
	if p5.SelectedFinalAction != "" {
		if p5.SelectedFinalAction == req.ActionId {
			return phase5Response(p5), nil
		}
		return nil, serverutils.ErrConflict("a final action is already selected for this session")
	}
	if p5.Status != constant.Phase5StatusAwaitingActionChoice {
		return nil, serverutils.ErrNotReady("no action choice is pending")
	}

	found := false
	for _, a := range p5.FinalActions {
		if a.Id == req.ActionId {
			found = true
			break
		}
	}
	if !found {
		return nil, serverutils.ErrNotFound("unknown final action id")
	}

	p5.SelectedFinalAction = req.ActionId
	p5.Status = constant.Phase5StatusAwaitingGrandSimulation
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase5Response(p5), nil
}

// StartGrandSimulation issues the grand scenario. Once written it is served
// verbatim on every later call so a resumed session faces the same test.
func (s *diagnosticService) StartGrandSimulation(ctx context.Context, email, origin string) (*dto.Phase5Response, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p5 := session.Service1.Phase5
	if p5 == nil {
		return nil, serverutils.ErrNotReady("aggregate the profile before the grand simulation")
	}
	if p5.GrandScenario != "" {
		return phase5Response(p5), nil
	}
	if p5.Status != constant.Phase5StatusAwaitingGrandSimulation {
		return nil, serverutils.ErrNotReady("choose a final action before the grand simulation")
	}

	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nAggregated profile:\n%s\n\nSelected final action: %s\nSkill gap: %s",
		localeLabel(session.Locale), mustJSON(p5.AggregatedProfile), p5.SelectedFinalAction, p5.SkillGap,
	)

	var scenario string
	source, err := s.pipeline.Generate(ctx, session, "phase5", "grand_scenario",
		constant.GrandScenarioSystemPrompt, userPrompt, constant.TempGenerative,
		func(raw string) error {
			sc, parseErr := normalize.MarkdownField(raw, "grandScenario")
			if parseErr != nil {
				return parseErr
			}
			scenario = sc
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		scenario = fallback.GrandScenario(*p5.AggregatedProfile)
	}

	p5.GrandScenario = scenario
	p5.Status = constant.Phase5StatusAwaitingGrandAnswer
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase5Response(p5), nil
}

// AnswerGrand evaluates the free-text answer and closes the diagnostic.
func (s *diagnosticService) AnswerGrand(ctx context.Context, req dto.GrandAnswerRequest, origin string) (*dto.Phase5Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p5 := session.Service1.Phase5
	if p5 == nil || p5.GrandScenario == "" {
		return nil, serverutils.ErrNotReady("start the grand simulation before answering")
	}
	if p5.Status == constant.Phase5StatusCompleted {
		return phase5Response(p5), nil
	}
	if p5.Status != constant.Phase5StatusAwaitingGrandAnswer {
		return nil, serverutils.ErrNotReady("no grand scenario answer is pending")
	}

	p5.GrandAnswer = req.Answer

	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nAggregated profile:\n%s\n\nGrand scenario:\n%s\n\nCandidate answer:\n%s",
		localeLabel(session.Locale), mustJSON(p5.AggregatedProfile), p5.GrandScenario, req.Answer,
	)

	var evaluation entity.Evaluation
	source, err := s.pipeline.Generate(ctx, session, "phase5", "evaluation",
		constant.EvaluationSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			e, parseErr := normalize.Evaluation(raw)
			if parseErr != nil {
				return parseErr
			}
			evaluation = e
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		evaluation = fallback.Evaluation(req.Answer)
	}

	p5.Evaluation = &evaluation
	p5.Status = constant.Phase5StatusCompleted
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.pipeline.phaseCompleted(session, 5)
	return phase5Response(p5), nil
}

// Dossier returns the expert dossier, generating it on first request only.
func (s *diagnosticService) Dossier(ctx context.Context, email, origin string) (*dto.DossierResponse, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p5 := session.Service1.Phase5
	if p5 == nil || p5.Status != constant.Phase5StatusCompleted {
		return nil, serverutils.ErrNotReady("complete the diagnostic before requesting the dossier")
	}
	if p5.ExpertDossierFR != "" {
		return &dto.DossierResponse{DossierMarkdown: p5.ExpertDossierFR}, nil
	}

	userPrompt := fmt.Sprintf(
		"Profil agrégé :\n%s\n\nNote de cadrage :\n%s\n\nRapport de cohérence :\n%s\n\nRapport stratégique :\n%s\n\nNote de positionnement :\n%s\n\nÉvaluation finale :\n%s",
		mustJSON(p5.AggregatedProfile),
		session.Service1.Phase0.CadrageNote,
		session.Service1.Phase1.ReportMarkdown,
		session.Service1.Phase2.ReportMarkdown,
		session.Service1.Phase4.PositioningNote,
		mustJSON(p5.Evaluation),
	)

	var dossier string
	source, err := s.pipeline.Generate(ctx, session, "phase5", "expert_dossier",
		constant.ExpertDossierSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			d, parseErr := normalize.MarkdownField(raw, "dossier")
			if parseErr != nil {
				return parseErr
			}
			dossier = d
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		dossier = fallback.ExpertDossier(*session)
	}

	p5.ExpertDossierFR = dossier
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return &dto.DossierResponse{DossierMarkdown: dossier}, nil
}

func phase5Response(p5 *entity.Phase5) *dto.Phase5Response {
	return &dto.Phase5Response{
		AggregatedProfile:   p5.AggregatedProfile,
		SelfMatchAnalysis:   p5.SelfMatchAnalysis,
		FinalActions:        p5.FinalActions,
		SelectedFinalAction: p5.SelectedFinalAction,
		SkillGap:            p5.SkillGap,
		GrandScenario:       p5.GrandScenario,
		Evaluation:          p5.Evaluation,
		Status:              p5.Status,
	}
}
