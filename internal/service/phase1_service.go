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

// ComputeCoherence runs the phase 1 audit. A high incoherence level paired
// with a probe question parks the phase in awaiting_probe; otherwise the
// report is produced immediately and the phase completes.
func (s *diagnosticService) ComputeCoherence(ctx context.Context, email, origin string) (*dto.Phase1Response, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p0 := session.Service1.Phase0
	if p0 == nil || p0.Interview.Status != constant.InterviewStatusCompleted {
		return nil, serverutils.ErrNotReady("complete the interview before the coherence audit")
	}
	if p1 := session.Service1.Phase1; p1 != nil {
		return phase1Response(p1), nil
	}

	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCandidate profile:\n%s\n\nCadrage note:\n%s\n\nInterview answers:\n%s",
		localeLabel(session.Locale), mustJSON(p0.Profile), p0.CadrageNote, mustJSON(p0.Interview.History),
	)

	var analysis entity.CoherenceAnalysis
	source, err := s.pipeline.Generate(ctx, session, "phase1", "coherence_analysis",
		constant.CoherenceAnalysisSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			a, parseErr := normalize.Coherence(raw)
			if parseErr != nil {
				return parseErr
			}
			analysis = a
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		analysis = fallback.Coherence(p0.Profile)
	}

	p1 := &entity.Phase1{Analysis: analysis}
	session.Service1.Phase1 = p1

	// The probe only gates the phase when severity is high AND the analysis
	// produced a concrete question to ask.
	if analysis.IncoherenceLevel == constant.IncoherenceLevelHigh && analysis.ProbeQuestion != "" {
		p1.Status = constant.Phase1StatusAwaitingProbe
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return phase1Response(p1), nil
	}

	if err := s.closeCoherence(ctx, session, p1); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.pipeline.phaseCompleted(session, 1)
	return phase1Response(p1), nil
}

// AnswerProbe records the clarification answer and finishes the audit.
func (s *diagnosticService) AnswerProbe(ctx context.Context, req dto.ProbeAnswerRequest, origin string) (*dto.Phase1Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p1 := session.Service1.Phase1
	if p1 == nil {
		return nil, serverutils.ErrNotReady("run the coherence audit before answering the probe")
	}
	if p1.Status == constant.Phase1StatusCompleted {
		return phase1Response(p1), nil
	}
	if p1.Status != constant.Phase1StatusAwaitingProbe {
		return nil, serverutils.ErrNotReady("no probe question is pending")
	}

	p1.Probe = &entity.ProbeExchange{
		Question: p1.Analysis.ProbeQuestion,
		Answer:   req.Answer,
	}

	if err := s.closeCoherence(ctx, session, p1); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.pipeline.phaseCompleted(session, 1)
	return phase1Response(p1), nil
}

func (s *diagnosticService) closeCoherence(ctx context.Context, session *entity.DiagnosticSession, p1 *entity.Phase1) error {
	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCoherence analysis:\n%s",
		localeLabel(session.Locale), mustJSON(p1.Analysis),
	)
	if p1.Probe != nil {
		userPrompt += fmt.Sprintf("\n\nProbe question: %s\nProbe answer: %s", p1.Probe.Question, p1.Probe.Answer)
	}

	var report string
	source, err := s.pipeline.Generate(ctx, session, "phase1", "coherence_report",
		constant.CoherenceReportSystemPrompt, userPrompt, constant.TempAnalytical,
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
		report = fallback.CoherenceReport(p1.Analysis, p1.Probe)
	}

	p1.ReportMarkdown = report
	p1.ReportSource = source
	p1.Status = constant.Phase1StatusCompleted
	return nil
}

func phase1Response(p1 *entity.Phase1) *dto.Phase1Response {
	return &dto.Phase1Response{
		Analysis:       p1.Analysis,
		ReportMarkdown: p1.ReportMarkdown,
		Status:         p1.Status,
	}
}
