package normalize

import (
	"errors"
	"fmt"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/entity"
)

// ErrIncomplete marks a payload that parsed but failed schema normalization.
// Callers attempt one strict retry, then substitute fallback content.
var ErrIncomplete = errors.New("payload failed contract normalization")

func incomplete(what string) error {
	return fmt.Errorf("%w: %s", ErrIncomplete, what)
}

// Profile normalizes the CV extraction payload.
func Profile(raw string) (entity.Profile, string, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return entity.Profile{}, "", incomplete("no JSON object in profile payload")
	}

	p := entity.Profile{
		Name:            asString(obj["name"]),
		CurrentRole:     asString(obj["currentRole"]),
		YearsExperience: clampInt(asInt(obj["yearsExperience"]), 0, 60),
		Skills:          asStringSlice(obj["skills"]),
		Summary:         asString(obj["summary"]),
	}
	observation := asString(obj["initialObservation"])

	if p.CurrentRole == "" && p.Summary == "" {
		return entity.Profile{}, "", incomplete("profile missing currentRole and summary")
	}
	if len(p.Skills) > 10 {
		p.Skills = p.Skills[:10]
	}
	return p, observation, nil
}

// Question normalizes one interview question: non-empty text and exactly 4
// options keyed A-D. Keys are reassigned positionally when the collaborator
// mislabels them; surplus options are dropped, a shortfall is an error.
func Question(raw string) (entity.Question, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return entity.Question{}, incomplete("no JSON object in question payload")
	}

	text := asString(obj["text"])
	if text == "" {
		return entity.Question{}, incomplete("question text empty")
	}

	options := normalizeOptions(obj["options"])
	if len(options) != len(constant.OptionKeys) {
		return entity.Question{}, incomplete(fmt.Sprintf("question has %d usable options, need %d", len(options), len(constant.OptionKeys)))
	}

	return entity.Question{
		Text:    text,
		Options: options,
		Source:  entity.SourceGenerated,
	}, nil
}

func normalizeOptions(v interface{}) []entity.QuestionOption {
	items := asObjectSlice(v)
	options := make([]entity.QuestionOption, 0, len(constant.OptionKeys))
	for _, item := range items {
		label := asString(item["label"])
		if label == "" {
			label = asString(item["text"]) // common mislabeling
		}
		if label == "" {
			continue
		}
		options = append(options, entity.QuestionOption{Label: label})
		if len(options) == len(constant.OptionKeys) {
			break
		}
	}
	for i := range options {
		options[i].Key = constant.OptionKeys[i]
	}
	return options
}

// MarkdownField normalizes the single-field report payloads (cadrage note,
// coherence report, strategic report, self-match, grand scenario, dossier).
func MarkdownField(raw, field string) (string, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return "", incomplete("no JSON object in " + field + " payload")
	}
	value := asString(obj[field])
	if value == "" {
		return "", incomplete(field + " empty")
	}
	return value, nil
}

// Coherence normalizes the phase 1 analysis payload.
func Coherence(raw string) (entity.CoherenceAnalysis, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return entity.CoherenceAnalysis{}, incomplete("no JSON object in coherence payload")
	}

	a := entity.CoherenceAnalysis{
		ClaimedRole:       asString(obj["claimedRole"]),
		RealRole:          asString(obj["realRole"]),
		Rationale:         asString(obj["rationale"]),
		ConsistencyPoints: asStringSlice(obj["consistencyPoints"]),
		IncoherencePoints: asStringSlice(obj["incoherencePoints"]),
		IncoherenceLevel:  asString(obj["incoherenceLevel"]),
		ProbeQuestion:     asString(obj["probeQuestion"]),
		Verdict:           asString(obj["verdict"]),
		Source:            entity.SourceGenerated,
	}

	switch a.IncoherenceLevel {
	case constant.IncoherenceLevelLow, constant.IncoherenceLevelHigh:
	default:
		// Unknown levels degrade to low rather than invent severity.
		a.IncoherenceLevel = constant.IncoherenceLevelLow
	}

	if a.RealRole == "" || a.Verdict == "" {
		return entity.CoherenceAnalysis{}, incomplete("coherence analysis missing realRole or verdict")
	}
	return a, nil
}

// Scenarios normalizes the phase 2 payload: exactly one scenario per fixed
// archetype, each with 4 options. Malformed items are dropped, duplicates of
// an archetype are ignored, surplus is truncated.
func Scenarios(raw string) ([]entity.Scenario, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return nil, incomplete("no JSON object in scenarios payload")
	}

	wanted := []string{entity.ArchetypeClientCrisis, entity.ArchetypeTeamConflict, entity.ArchetypeImpossibleDeadline}
	byArchetype := map[string]entity.Scenario{}

	for i, item := range asObjectSlice(obj["scenarios"]) {
		archetype := asString(item["archetype"])
		title := asString(item["title"])
		description := asString(item["description"])
		options := normalizeOptions(item["options"])
		if title == "" || description == "" || len(options) != len(constant.OptionKeys) {
			continue
		}
		valid := false
		for _, w := range wanted {
			if archetype == w {
				valid = true
				break
			}
		}
		if !valid {
			continue
		}
		if _, dup := byArchetype[archetype]; dup {
			continue
		}
		byArchetype[archetype] = entity.Scenario{
			Id:          fmt.Sprintf("s%d", i+1),
			Archetype:   archetype,
			Title:       title,
			Description: description,
			Options:     options,
		}
	}

	out := make([]entity.Scenario, 0, len(wanted))
	for i, w := range wanted {
		s, ok := byArchetype[w]
		if !ok {
			return nil, incomplete("missing scenario archetype " + w)
		}
		s.Id = fmt.Sprintf("s%d", i+1)
		out = append(out, s)
	}
	return out, nil
}

// Paths normalizes phase 3 growth paths: exactly one per type.
func Paths(raw string) ([]entity.GrowthPath, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return nil, incomplete("no JSON object in paths payload")
	}

	wanted := []string{entity.PathTypeSkills, entity.PathTypeExperience, entity.PathTypeMentoring}
	byType := map[string]entity.GrowthPath{}

	for _, item := range asObjectSlice(obj["paths"]) {
		pathType := asString(item["type"])
		title := asString(item["title"])
		if title == "" {
			continue
		}
		valid := false
		for _, w := range wanted {
			if pathType == w {
				valid = true
				break
			}
		}
		if !valid {
			continue
		}
		if _, dup := byType[pathType]; dup {
			continue
		}
		byType[pathType] = entity.GrowthPath{
			Type:               pathType,
			Title:              title,
			Description:        asString(item["description"]),
			SuccessProbability: clampInt(asInt(item["successProbability"]), 0, 100),
			Rationale:          asString(item["rationale"]),
		}
	}

	out := make([]entity.GrowthPath, 0, len(wanted))
	for _, w := range wanted {
		p, ok := byType[w]
		if !ok {
			return nil, incomplete("missing growth path type " + w)
		}
		out = append(out, p)
	}
	return out, nil
}

// Plan normalizes the phase 4 payload: positioning note, planning doc and a
// roadmap of exactly 3 months. Task ids are assigned here ("m1-t1"...) so
// checklist toggles address stable identifiers.
func Plan(raw string) (string, string, []entity.RoadmapMonth, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return "", "", nil, incomplete("no JSON object in plan payload")
	}

	positioning := asString(obj["positioningNote"])
	planning := asString(obj["planningDoc"])

	months := asObjectSlice(obj["roadmap"])
	if len(months) < 3 {
		return "", "", nil, incomplete(fmt.Sprintf("roadmap has %d months, need 3", len(months)))
	}
	months = months[:3]

	roadmap := make([]entity.RoadmapMonth, 0, 3)
	for i, m := range months {
		theme := asString(m["theme"])
		taskObjs := asObjectSlice(m["tasks"])
		tasks := make([]entity.RoadmapTask, 0, len(taskObjs))
		for j, t := range taskObjs {
			text := asString(t["text"])
			if text == "" {
				continue
			}
			tasks = append(tasks, entity.RoadmapTask{
				Id:   fmt.Sprintf("m%d-t%d", i+1, j+1),
				Text: text,
				Done: false,
			})
		}
		if len(tasks) == 0 {
			return "", "", nil, incomplete(fmt.Sprintf("month %d has no usable tasks", i+1))
		}
		roadmap = append(roadmap, entity.RoadmapMonth{
			Month: i + 1,
			Theme: theme,
			Tasks: tasks,
		})
	}

	if positioning == "" || planning == "" {
		return "", "", nil, incomplete("plan missing positioningNote or planningDoc")
	}
	return positioning, planning, roadmap, nil
}

// FinalActions normalizes the phase 5 actions payload: exactly 3 actions plus
// the derived skill gap. Surplus actions are truncated, a shortfall is an
// error so the caller can retry or fall back.
func FinalActions(raw string) ([]entity.FinalAction, string, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return nil, "", incomplete("no JSON object in final actions payload")
	}

	items := asObjectSlice(obj["actions"])
	actions := make([]entity.FinalAction, 0, 3)
	for _, item := range items {
		title := asString(item["title"])
		if title == "" {
			continue
		}
		actions = append(actions, entity.FinalAction{
			Id:          fmt.Sprintf("a%d", len(actions)+1),
			Title:       title,
			Description: asString(item["description"]),
			Impact:      asString(item["impact"]),
		})
		if len(actions) == 3 {
			break
		}
	}
	if len(actions) != 3 {
		return nil, "", incomplete(fmt.Sprintf("got %d usable final actions, need 3", len(actions)))
	}

	return actions, asString(obj["skillGap"]), nil
}

// Evaluation normalizes the grand-scenario evaluation payload.
func Evaluation(raw string) (entity.Evaluation, error) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return entity.Evaluation{}, incomplete("no JSON object in evaluation payload")
	}

	e := entity.Evaluation{
		Score:               clampInt(asInt(obj["score"]), 0, 100),
		Verdict:             asString(obj["verdict"]),
		Strengths:           asStringSlice(obj["strengths"]),
		Weaknesses:          asStringSlice(obj["weaknesses"]),
		Advice:              asString(obj["advice"]),
		HandoverCoach:       asString(obj["handoverCoach"]),
		HandoverParticipant: asString(obj["handoverParticipant"]),
		Source:              entity.SourceGenerated,
	}

	if e.Verdict == "" {
		return entity.Evaluation{}, incomplete("evaluation missing verdict")
	}
	return e, nil
}
