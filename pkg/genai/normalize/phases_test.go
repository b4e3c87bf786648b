package normalize

import (
	"errors"
	"testing"

	"ai-coaching-be/internal/entity"
)

func TestProfile(t *testing.T) {
	raw := `{"name": "Ana", "currentRole": "Lead Dev", "yearsExperience": "12",
		"skills": ["go", "sql", "architecture"], "summary": "Solid record.",
		"initialObservation": "Title inflation suspected."}`

	p, obs, err := Profile(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentRole != "Lead Dev" || p.YearsExperience != 12 {
		t.Errorf("profile = %+v", p)
	}
	if obs != "Title inflation suspected." {
		t.Errorf("observation = %q", obs)
	}
}

func TestProfileMissingCore(t *testing.T) {
	_, _, err := Profile(`{"name": "Ana", "skills": []}`)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("want ErrIncomplete, got %v", err)
	}
}

func TestProfileSkillsCapped(t *testing.T) {
	raw := `{"currentRole": "Dev", "skills": ["a","b","c","d","e","f","g","h","i","j","k","l"]}`
	p, _, err := Profile(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Skills) != 10 {
		t.Errorf("len(skills) = %d, want 10", len(p.Skills))
	}
}

func TestQuestion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "four options with proper keys",
			raw: `{"text": "Q?", "options": [
				{"key": "A", "label": "one"}, {"key": "B", "label": "two"},
				{"key": "C", "label": "three"}, {"key": "D", "label": "four"}]}`,
		},
		{
			name: "mislabeled text field repaired",
			raw: `{"text": "Q?", "options": [
				{"text": "one"}, {"text": "two"}, {"text": "three"}, {"text": "four"}]}`,
		},
		{
			name: "surplus options truncated",
			raw: `{"text": "Q?", "options": [
				{"label": "one"}, {"label": "two"}, {"label": "three"},
				{"label": "four"}, {"label": "five"}]}`,
		},
		{
			name:    "three options is a shortfall",
			raw:     `{"text": "Q?", "options": [{"label": "one"}, {"label": "two"}, {"label": "three"}]}`,
			wantErr: true,
		},
		{
			name:    "empty text",
			raw:     `{"text": "", "options": [{"label": "one"}, {"label": "two"}, {"label": "three"}, {"label": "four"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Question(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrIncomplete) {
					t.Fatalf("want ErrIncomplete, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(q.Options) != 4 {
				t.Fatalf("len(options) = %d, want 4", len(q.Options))
			}
			wantKeys := []string{"A", "B", "C", "D"}
			for i, opt := range q.Options {
				if opt.Key != wantKeys[i] {
					t.Errorf("option %d key = %q, want %q", i, opt.Key, wantKeys[i])
				}
			}
		})
	}
}

func TestCoherenceUnknownLevelDegrades(t *testing.T) {
	raw := `{"realRole": "Senior Dev", "verdict": "fine", "incoherenceLevel": "catastrophic"}`
	a, err := Coherence(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.IncoherenceLevel != "low" {
		t.Errorf("level = %q, want low", a.IncoherenceLevel)
	}
}

func TestScenarios(t *testing.T) {
	options := `[{"label": "a"}, {"label": "b"}, {"label": "c"}, {"label": "d"}]`
	raw := `{"scenarios": [
		{"archetype": "team_conflict", "title": "T", "description": "D", "options": ` + options + `},
		{"archetype": "client_crisis", "title": "T", "description": "D", "options": ` + options + `},
		{"archetype": "client_crisis", "title": "dup", "description": "D", "options": ` + options + `},
		{"archetype": "impossible_deadline", "title": "T", "description": "D", "options": ` + options + `}]}`

	scenarios, err := Scenarios(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenarios) != 3 {
		t.Fatalf("len = %d, want 3", len(scenarios))
	}
	wantOrder := []string{entity.ArchetypeClientCrisis, entity.ArchetypeTeamConflict, entity.ArchetypeImpossibleDeadline}
	wantIds := []string{"s1", "s2", "s3"}
	for i, s := range scenarios {
		if s.Archetype != wantOrder[i] || s.Id != wantIds[i] {
			t.Errorf("scenario %d = (%s, %s), want (%s, %s)", i, s.Id, s.Archetype, wantIds[i], wantOrder[i])
		}
	}
}

func TestScenariosMissingArchetype(t *testing.T) {
	options := `[{"label": "a"}, {"label": "b"}, {"label": "c"}, {"label": "d"}]`
	raw := `{"scenarios": [
		{"archetype": "client_crisis", "title": "T", "description": "D", "options": ` + options + `}]}`
	if _, err := Scenarios(raw); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("want ErrIncomplete, got %v", err)
	}
}

func TestPlan(t *testing.T) {
	raw := `{"positioningNote": "P", "planningDoc": "M", "roadmap": [
		{"month": 1, "theme": "A", "tasks": [{"text": "t1"}, {"text": "t2"}]},
		{"month": 2, "theme": "B", "tasks": [{"text": "t1"}]},
		{"month": 3, "theme": "C", "tasks": [{"text": "t1"}]},
		{"month": 4, "theme": "extra", "tasks": [{"text": "t1"}]}]}`

	pos, plan, roadmap, err := Plan(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != "P" || plan != "M" {
		t.Errorf("got (%q, %q)", pos, plan)
	}
	if len(roadmap) != 3 {
		t.Fatalf("months = %d, want 3", len(roadmap))
	}
	if roadmap[0].Tasks[1].Id != "m1-t2" {
		t.Errorf("task id = %q, want m1-t2", roadmap[0].Tasks[1].Id)
	}
	if roadmap[2].Month != 3 {
		t.Errorf("third month = %d, want 3", roadmap[2].Month)
	}
}

func TestPlanTooFewMonths(t *testing.T) {
	raw := `{"positioningNote": "P", "planningDoc": "M", "roadmap": [
		{"month": 1, "theme": "A", "tasks": [{"text": "t1"}]}]}`
	if _, _, _, err := Plan(raw); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("want ErrIncomplete, got %v", err)
	}
}

func TestFinalActions(t *testing.T) {
	raw := `{"actions": [
		{"title": "one", "description": "d", "impact": "i"},
		{"title": "two"}, {"title": "three"}, {"title": "four"}],
		"skillGap": "formalization"}`

	actions, gap, err := FinalActions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("len = %d, want 3", len(actions))
	}
	if actions[0].Id != "a1" || actions[2].Id != "a3" {
		t.Errorf("ids = %s..%s, want a1..a3", actions[0].Id, actions[2].Id)
	}
	if gap != "formalization" {
		t.Errorf("gap = %q", gap)
	}
}

func TestEvaluationScoreClamped(t *testing.T) {
	e, err := Evaluation(`{"score": 140, "verdict": "capped"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Score != 100 {
		t.Errorf("score = %d, want 100", e.Score)
	}
}
