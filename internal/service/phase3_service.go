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

// StartPaths opens phase 3 with the three typed growth paths.
func (s *diagnosticService) StartPaths(ctx context.Context, email, origin string) (*dto.Phase3Response, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if p2 := session.Service1.Phase2; p2 == nil || p2.Status != constant.PhaseStatusCompleted {
		return nil, serverutils.ErrNotReady("complete the simulation before the growth paths")
	}
	if p3 := session.Service1.Phase3; p3 != nil {
		return phase3Response(p3), nil
	}

	p0 := session.Service1.Phase0
	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCandidate profile:\n%s\n\nCoherence analysis:\n%s\n\nStrategic report:\n%s",
		localeLabel(session.Locale), mustJSON(p0.Profile),
		mustJSON(session.Service1.Phase1.Analysis), session.Service1.Phase2.ReportMarkdown,
	)

	var paths []entity.GrowthPath
	source, err := s.pipeline.Generate(ctx, session, "phase3", "growth_paths",
		constant.GrowthPathSystemPrompt, userPrompt, constant.TempGenerative,
		func(raw string) error {
			p, parseErr := normalize.Paths(raw)
			if parseErr != nil {
				return parseErr
			}
			paths = p
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		paths = fallback.Paths(p0.Profile)
	}

	p3 := &entity.Phase3{
		Paths:       paths,
		PathsSource: source,
		Status:      constant.PhaseStatusInProgress,
	}
	session.Service1.Phase3 = p3
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase3Response(p3), nil
}

// SelectPath commits the participant to one growth path. The selection is
// final: repeating the same choice is a no-op, switching is a conflict.
func (s *diagnosticService) SelectPath(ctx context.Context, req dto.SelectPathRequest, origin string) (*dto.Phase3Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p3 := session.Service1.Phase3
	if p3 == nil {
		return nil, serverutils.ErrNotReady("request the growth paths before selecting one")
	}
	if p3.SelectedGrowthPath != "" {
		if p3.SelectedGrowthPath == req.PathType {
			return phase3Response(p3), nil
		}
		return nil, serverutils.ErrConflict("a growth path is already selected for this session")
	}

	found := false
	for _, p := range p3.Paths {
		if p.Type == req.PathType {
			found = true
			break
		}
	}
	if !found {
		return nil, serverutils.ErrNotFound("unknown growth path type")
	}

	p3.SelectedGrowthPath = req.PathType
	p3.Status = constant.PhaseStatusCompleted
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.pipeline.phaseCompleted(session, 3)
	return phase3Response(p3), nil
}

func phase3Response(p3 *entity.Phase3) *dto.Phase3Response {
	return &dto.Phase3Response{
		Paths:              p3.Paths,
		SelectedGrowthPath: p3.SelectedGrowthPath,
		Status:             p3.Status,
	}
}
