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

// StartPlan produces the 3-month roadmap for the selected growth path. The
// phase completes at generation; the checklist stays editable afterwards.
func (s *diagnosticService) StartPlan(ctx context.Context, email, origin string) (*dto.Phase4Response, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p3 := session.Service1.Phase3
	if p3 == nil || p3.Status != constant.PhaseStatusCompleted {
		return nil, serverutils.ErrNotReady("select a growth path before planning")
	}
	if p4 := session.Service1.Phase4; p4 != nil {
		return phase4Response(p4), nil
	}

	p0 := session.Service1.Phase0
	var selected entity.GrowthPath
	for _, p := range p3.Paths {
		if p.Type == p3.SelectedGrowthPath {
			selected = p
			break
		}
	}

	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCandidate profile:\n%s\n\nSelected growth path:\n%s\n\nCoherence analysis:\n%s",
		localeLabel(session.Locale), mustJSON(p0.Profile), mustJSON(selected),
		mustJSON(session.Service1.Phase1.Analysis),
	)

	var positioning, planning string
	var roadmap []entity.RoadmapMonth
	source, err := s.pipeline.Generate(ctx, session, "phase4", "roadmap",
		constant.RoadmapSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			pos, plan, rm, parseErr := normalize.Plan(raw)
			if parseErr != nil {
				return parseErr
			}
			positioning, planning, roadmap = pos, plan, rm
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		positioning, planning, roadmap = fallback.Plan(p0.Profile, p3.SelectedGrowthPath)
	}

	p4 := &entity.Phase4{
		PositioningNote: positioning,
		PlanningDoc:     planning,
		Roadmap:         roadmap,
		PlanSource:      source,
		Status:          constant.PhaseStatusCompleted,
	}
	session.Service1.Phase4 = p4
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.pipeline.phaseCompleted(session, 4)
	return phase4Response(p4), nil
}

// ToggleTask flips one roadmap task; an unknown id leaves the roadmap
// untouched.
func (s *diagnosticService) ToggleTask(ctx context.Context, req dto.ToggleTaskRequest, origin string) (*dto.Phase4Response, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p4 := session.Service1.Phase4
	if p4 == nil {
		return nil, serverutils.ErrNotReady("generate the plan before toggling tasks")
	}

	found := false
	for mi := range p4.Roadmap {
		for ti := range p4.Roadmap[mi].Tasks {
			if p4.Roadmap[mi].Tasks[ti].Id == req.TaskId {
				p4.Roadmap[mi].Tasks[ti].Done = req.Done
				found = true
			}
		}
	}
	if !found {
		return nil, serverutils.ErrNotFound("unknown roadmap task id")
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return phase4Response(p4), nil
}

func phase4Response(p4 *entity.Phase4) *dto.Phase4Response {
	return &dto.Phase4Response{
		PositioningNote: p4.PositioningNote,
		PlanningDoc:     p4.PlanningDoc,
		Roadmap:         p4.Roadmap,
		Status:          p4.Status,
	}
}
