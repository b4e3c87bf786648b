package fallback

import (
	"testing"

	"ai-coaching-be/internal/entity"
)

func TestQuestionRotatesAndIsDeterministic(t *testing.T) {
	profile := entity.Profile{CurrentRole: "Chef de projet", YearsExperience: 6}

	q0 := Question(profile, 0)
	q1 := Question(profile, 1)
	if q0.Text == q1.Text {
		t.Error("consecutive fallback questions should differ")
	}
	if len(q0.Options) != 4 {
		t.Fatalf("len(options) = %d, want 4", len(q0.Options))
	}
	if q0.Source != entity.SourceFallback {
		t.Errorf("source = %q", q0.Source)
	}

	again := Question(profile, 0)
	if again.Text != q0.Text {
		t.Error("same index must yield the same question")
	}
}

func TestScenariosCoverArchetypes(t *testing.T) {
	scenarios := Scenarios(entity.Profile{CurrentRole: "Manager"})
	if len(scenarios) != 3 {
		t.Fatalf("len = %d, want 3", len(scenarios))
	}
	want := []string{entity.ArchetypeClientCrisis, entity.ArchetypeTeamConflict, entity.ArchetypeImpossibleDeadline}
	for i, s := range scenarios {
		if s.Archetype != want[i] {
			t.Errorf("scenario %d archetype = %q, want %q", i, s.Archetype, want[i])
		}
		if len(s.Options) != 4 {
			t.Errorf("scenario %d has %d options", i, len(s.Options))
		}
	}
}

func TestPathsCoverTypes(t *testing.T) {
	paths := Paths(entity.Profile{})
	if len(paths) != 3 {
		t.Fatalf("len = %d, want 3", len(paths))
	}
	want := []string{entity.PathTypeSkills, entity.PathTypeExperience, entity.PathTypeMentoring}
	for i, p := range paths {
		if p.Type != want[i] {
			t.Errorf("path %d type = %q, want %q", i, p.Type, want[i])
		}
		if p.SuccessProbability <= 0 || p.SuccessProbability > 100 {
			t.Errorf("path %d probability = %d", i, p.SuccessProbability)
		}
	}
}

func TestPlanTaskIds(t *testing.T) {
	_, _, roadmap := Plan(entity.Profile{}, entity.PathTypeSkills)
	if len(roadmap) != 3 {
		t.Fatalf("months = %d, want 3", len(roadmap))
	}
	if roadmap[1].Tasks[0].Id != "m2-t1" {
		t.Errorf("task id = %q, want m2-t1", roadmap[1].Tasks[0].Id)
	}
}

func TestEvaluationDeterministicByAnswerLength(t *testing.T) {
	short := Evaluation("ok")
	long := Evaluation("je commence par documenter la situation puis je convoque le commanditaire " +
		"pour reprendre point par point les faits qui fondent ma légitimité sur ce périmètre " +
		"avant de proposer un plan daté couvrant les deux prochaines semaines")

	if short.Score >= long.Score {
		t.Errorf("short score %d should be below long score %d", short.Score, long.Score)
	}
	if short.Source != entity.SourceFallback || long.Source != entity.SourceFallback {
		t.Error("fallback evaluations must carry the fallback source")
	}
	if again := Evaluation("ok"); again.Score != short.Score {
		t.Error("same answer must yield the same score")
	}
}

func TestFinalActionsFixedIds(t *testing.T) {
	actions, gap := FinalActions(entity.Profile{CurrentRole: "Dev"})
	if len(actions) != 3 {
		t.Fatalf("len = %d, want 3", len(actions))
	}
	for i, a := range actions {
		want := []string{"a1", "a2", "a3"}[i]
		if a.Id != want {
			t.Errorf("action %d id = %q, want %q", i, a.Id, want)
		}
	}
	if gap == "" {
		t.Error("skill gap must not be empty")
	}
}
