package fallback

import (
	"fmt"
	"strings"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/entity"
)

// Deterministic, hand-authored substitutes for every AI-backed step. Used when
// the generation collaborator is unavailable or keeps returning payloads the
// normalizer cannot repair, so the participant flow never stalls. Duller than
// generated content on purpose.

func roleOf(p entity.Profile) string {
	if p.CurrentRole != "" {
		return p.CurrentRole
	}
	return "professionnel expérimenté"
}

func yearsOf(p entity.Profile) string {
	if p.YearsExperience > 0 {
		return fmt.Sprintf("%d ans d'expérience", p.YearsExperience)
	}
	return "une expérience significative"
}

// Profile builds a minimal profile straight from the CV text when extraction
// itself failed.
func Profile(cvText string) (entity.Profile, string) {
	lines := strings.Split(cvText, "\n")
	name := ""
	if len(lines) > 0 {
		name = strings.TrimSpace(lines[0])
		if len(name) > 60 {
			name = name[:60]
		}
	}
	p := entity.Profile{
		Name:        name,
		CurrentRole: "professionnel expérimenté",
		Skills:      []string{"communication", "organisation", "analyse"},
		Summary:     "Profil établi à partir du CV transmis ; les détails seront affinés au fil de l'entretien.",
	}
	observation := "Le CV seul ne permet pas de trancher entre le rôle affiché et le rôle réellement exercé ; l'entretien servira à le clarifier."
	return p, observation
}

var questionBank = []struct {
	Text    string
	Options [4]string
}{
	{
		Text: "Face à un désaccord fort avec votre hiérarchie sur une décision, que faites-vous en premier ?",
		Options: [4]string{
			"Je documente ma position et demande un point formel",
			"Je m'aligne et j'exécute, quitte à revenir dessus plus tard",
			"Je cherche des alliés avant d'aborder le sujet",
			"Je tranche de mon côté sur mon périmètre",
		},
	},
	{
		Text: "Un projet prend du retard à cause d'un tiers. Quelle est votre réaction dominante ?",
		Options: [4]string{
			"Je réorganise le planning autour du blocage",
			"J'escalade immédiatement avec les faits",
			"Je prends une partie du travail du tiers à ma charge",
			"Je protège mon périmètre et laisse le retard se voir",
		},
	},
	{
		Text: "Comment choisissez-vous vos priorités quand tout est urgent ?",
		Options: [4]string{
			"Par l'impact sur le résultat final",
			"Par ce que ma hiérarchie attend visiblement",
			"Par ce que je sais faire le plus vite",
			"Par ce qui risque de me retomber dessus",
		},
	},
	{
		Text: "Qu'est-ce qui vous coûte le plus dans votre poste actuel ?",
		Options: [4]string{
			"Le manque de reconnaissance du travail réel",
			"Les décisions prises sans moi",
			"La charge sans les moyens",
			"Le décalage entre mon titre et mes missions",
		},
	},
	{
		Text: "Si vous changiez de poste demain, que chercheriez-vous d'abord ?",
		Options: [4]string{
			"Plus de responsabilités formelles",
			"Un périmètre plus clair",
			"Un environnement qui me challenge",
			"Une meilleure valorisation de ce que je fais déjà",
		},
	},
}

// Question returns a templated interview question, rotating through the bank
// by question index so consecutive fallback questions differ.
func Question(profile entity.Profile, index int) entity.Question {
	item := questionBank[index%len(questionBank)]
	text := fmt.Sprintf("En tant que %s avec %s : %s", roleOf(profile), yearsOf(profile), item.Text)
	options := make([]entity.QuestionOption, len(constant.OptionKeys))
	for i, key := range constant.OptionKeys {
		options[i] = entity.QuestionOption{Key: key, Label: item.Options[i]}
	}
	return entity.Question{
		Text:    text,
		Options: options,
		Source:  entity.SourceFallback,
	}
}

func CadrageNote(profile entity.Profile, history []entity.InterviewEntry) string {
	var sb strings.Builder
	sb.WriteString("## Note de cadrage\n\n")
	sb.WriteString(fmt.Sprintf("### Qui est-il\n%s, %s, %s.\n\n", profile.Name, roleOf(profile), yearsOf(profile)))
	sb.WriteString(fmt.Sprintf("### Ce que dit le CV\n%s\n\n", profile.Summary))
	sb.WriteString("### Ce que disent les réponses\n")
	for _, h := range history {
		sb.WriteString(fmt.Sprintf("- %s → %s\n", h.Question, h.AnswerText))
	}
	sb.WriteString("\n### Zone de travail\nClarifier l'écart entre le rôle affiché et le rôle exercé, et sécuriser le prochain mouvement professionnel.\n")
	return sb.String()
}

func Coherence(profile entity.Profile) entity.CoherenceAnalysis {
	return entity.CoherenceAnalysis{
		ClaimedRole:       roleOf(profile),
		RealRole:          roleOf(profile),
		Rationale:         "Analyse de substitution : en l'absence d'audit génératif, le rôle déclaré est retenu comme hypothèse de travail.",
		ConsistencyPoints: []string{"Le parcours décrit est linéaire", "Les compétences citées sont cohérentes avec le rôle déclaré"},
		IncoherencePoints: []string{},
		IncoherenceLevel:  constant.IncoherenceLevelLow,
		Verdict:           "Cohérence globale retenue par défaut ; à confirmer avec le coach.",
		Source:            entity.SourceFallback,
	}
}

func CoherenceReport(analysis entity.CoherenceAnalysis, probe *entity.ProbeExchange) string {
	var sb strings.Builder
	sb.WriteString("## Rapport de cohérence\n\n")
	sb.WriteString(fmt.Sprintf("### Constat\nRôle revendiqué : %s. Rôle retenu : %s.\n\n", analysis.ClaimedRole, analysis.RealRole))
	sb.WriteString("### Points de cohérence\n")
	for _, p := range analysis.ConsistencyPoints {
		sb.WriteString("- " + p + "\n")
	}
	sb.WriteString("\n### Points de friction\n")
	if len(analysis.IncoherencePoints) == 0 {
		sb.WriteString("- Aucun point bloquant identifié\n")
	}
	for _, p := range analysis.IncoherencePoints {
		sb.WriteString("- " + p + "\n")
	}
	if probe != nil {
		sb.WriteString(fmt.Sprintf("\n### Clarification\nQuestion : %s\nRéponse : %s\n", probe.Question, probe.Answer))
	}
	sb.WriteString(fmt.Sprintf("\n### Décision\n%s\n", analysis.Verdict))
	return sb.String()
}

func Scenarios(profile entity.Profile) []entity.Scenario {
	role := roleOf(profile)
	mk := func(id, archetype, title, desc string, opts [4]string) entity.Scenario {
		options := make([]entity.QuestionOption, len(constant.OptionKeys))
		for i, key := range constant.OptionKeys {
			options[i] = entity.QuestionOption{Key: key, Label: opts[i]}
		}
		return entity.Scenario{Id: id, Archetype: archetype, Title: title, Description: desc, Options: options}
	}
	return []entity.Scenario{
		mk("s1", entity.ArchetypeClientCrisis, "Le client menace de partir",
			fmt.Sprintf("Vous êtes %s. Votre client principal annonce qu'il résilie sous 48h après un livrable jugé décevant. Votre direction attend une réponse immédiate.", role),
			[4]string{
				"J'appelle le client pour comprendre avant toute chose",
				"Je prépare un plan de reprise et le présente à ma direction",
				"Je mobilise l'équipe pour corriger le livrable cette nuit",
				"Je demande à ma direction de gérer la relation pendant que je corrige",
			}),
		mk("s2", entity.ArchetypeTeamConflict, "Deux piliers de l'équipe s'affrontent",
			"Deux membres clés de votre équipe ne se parlent plus et le travail commun est à l'arrêt. Chacun attend que vous donniez raison à l'un contre l'autre.",
			[4]string{
				"Je les réunis et les fais s'expliquer devant moi",
				"Je les vois séparément avant de décider",
				"Je redécoupe le travail pour qu'ils ne dépendent plus l'un de l'autre",
				"Je fixe un cadre de fonctionnement et sanctionne le premier écart",
			}),
		mk("s3", entity.ArchetypeImpossibleDeadline, "Le délai intenable",
			"On vous impose une échéance que vous savez intenable avec les moyens actuels. La refuser est mal vu, l'accepter vous expose à l'échec.",
			[4]string{
				"J'accepte et je négocie les moyens en parallèle",
				"Je chiffre précisément l'écart et je le présente avant d'accepter",
				"J'accepte et je réduis silencieusement le périmètre",
				"Je refuse en proposant une alternative datée",
			}),
	}
}

func StrategicReport(profile entity.Profile, scenarios []entity.Scenario, answers map[string]string) string {
	var sb strings.Builder
	sb.WriteString("## Rapport stratégique\n\n### Lecture des choix\n")
	for _, s := range scenarios {
		key := answers[s.Id]
		label := ""
		for _, o := range s.Options {
			if o.Key == key {
				label = o.Label
			}
		}
		sb.WriteString(fmt.Sprintf("- %s : option %s — %s\n", s.Title, key, label))
	}
	sb.WriteString("\n### Schéma dominant\nLes choix traduisent une préférence pour la maîtrise directe des situations plutôt que la délégation du risque.\n")
	sb.WriteString("\n### Risques\nSur-engagement personnel ; difficulté à faire porter les arbitrages par la hiérarchie.\n")
	sb.WriteString("\n### Levier principal\nFormaliser les arbitrages avant d'agir, pour transformer l'engagement personnel en position défendable.\n")
	return sb.String()
}

func Paths(profile entity.Profile) []entity.GrowthPath {
	role := roleOf(profile)
	return []entity.GrowthPath{
		{
			Type:               entity.PathTypeSkills,
			Title:              "Consolider le socle de compétences",
			Description:        fmt.Sprintf("Programme structuré pour combler les angles morts techniques et méthodologiques du poste de %s.", role),
			SuccessProbability: 70,
			Rationale:          "Le levier le plus direct quand l'écart porte sur le contenu du poste.",
		},
		{
			Type:               entity.PathTypeExperience,
			Title:              "Chercher le terrain qui manque",
			Description:        "Prendre en charge un périmètre ou un projet exposé pour constituer des preuves d'expérience opposables.",
			SuccessProbability: 55,
			Rationale:          "Plus lent mais plus crédible pour un changement de rôle revendiqué.",
		},
		{
			Type:               entity.PathTypeMentoring,
			Title:              "S'adosser à un mentor",
			Description:        "Accompagnement régulier par un pair senior pour accélérer les arbitrages de carrière.",
			SuccessProbability: 60,
			Rationale:          "Efficace quand la difficulté est le positionnement plus que la compétence.",
		},
	}
}

func Plan(profile entity.Profile, selectedPath string) (string, string, []entity.RoadmapMonth) {
	positioning := fmt.Sprintf("## Note de positionnement\nEn tant que %s, le positionnement des trois prochains mois consiste à rendre visible le travail réel et à documenter chaque résultat sur la voie « %s ».", roleOf(profile), selectedPath)
	planning := "## Document de planification\nMéthode : un thème par mois, des tâches vérifiables, une revue en fin de mois. Aucune tâche ne reste ouverte plus de deux semaines."

	mk := func(month int, theme string, tasks []string) entity.RoadmapMonth {
		out := make([]entity.RoadmapTask, len(tasks))
		for i, t := range tasks {
			out[i] = entity.RoadmapTask{Id: fmt.Sprintf("m%d-t%d", month, i+1), Text: t}
		}
		return entity.RoadmapMonth{Month: month, Theme: theme, Tasks: out}
	}

	roadmap := []entity.RoadmapMonth{
		mk(1, "État des lieux", []string{
			"Lister les responsabilités réellement exercées",
			"Identifier les trois résultats les plus démontrables",
			"Choisir un indicateur de progression mesurable",
		}),
		mk(2, "Mise en mouvement", []string{
			"Engager la première action de la voie choisie",
			"Obtenir un retour formel d'un pair ou d'un supérieur",
			"Documenter chaque livrable produit",
		}),
		mk(3, "Consolidation", []string{
			"Mesurer l'indicateur choisi au mois 1",
			"Préparer le récit professionnel mis à jour",
			"Planifier l'étape suivante avec le coach",
		}),
	}
	return positioning, planning, roadmap
}

func SelfMatch(profile entity.Profile) string {
	return fmt.Sprintf("## Lecture croisée\nLa description que vous faites de vous-même recoupe le profil établi (%s, %s) sur l'essentiel.\n\nLes écarts restants portent sur la perception du rôle exercé ; ils seront travaillés avec le coach.", roleOf(profile), yearsOf(profile))
}

func FinalActions(profile entity.Profile) ([]entity.FinalAction, string) {
	actions := []entity.FinalAction{
		{
			Id:          "a1",
			Title:       "Obtenir une validation externe",
			Description: "Faire évaluer un livrable récent par un pair extérieur à l'équipe.",
			Impact:      "Prouve que le niveau revendiqué tient hors du contexte habituel.",
		},
		{
			Id:          "a2",
			Title:       "Tenir un journal de décisions",
			Description: "Documenter chaque arbitrage significatif pendant 30 jours.",
			Impact:      "Rend visible la réalité du rôle exercé.",
		},
		{
			Id:          "a3",
			Title:       "Mener une conversation de cadrage",
			Description: "Provoquer un entretien formel avec la hiérarchie sur le périmètre réel du poste.",
			Impact:      "Teste la capacité à défendre une position préparée.",
		},
	}
	skillGap := fmt.Sprintf("L'écart principal identifié pour un profil %s reste la formalisation : transformer le travail réel en éléments opposables.", roleOf(profile))
	return actions, skillGap
}

func GrandScenario(agg entity.AggregatedProfile) string {
	return fmt.Sprintf(`## Grand scénario

Vous prenez demain le rôle de %s dans une structure qui ne vous connaît pas. Au bout de trois semaines, votre principal commanditaire remet publiquement en cause votre légitimité sur exactement le point identifié comme votre faiblesse principale.

**Question : que faites-vous dans les 48 heures qui suivent, concrètement et dans quel ordre ?**`, agg.RealRole)
}

// Evaluation scores deterministically from the answer so that the same answer
// always yields the same result.
func Evaluation(grandAnswer string) entity.Evaluation {
	words := len(strings.Fields(grandAnswer))
	score := 50
	if words >= 30 {
		score = 60
	}
	if words >= 80 {
		score = 70
	}
	verdict := "Réponse recevable ; la validation finale reste à confirmer avec le coach."
	if score >= 70 {
		verdict = "Réponse structurée ; la trajectoire choisie est défendable."
	}
	return entity.Evaluation{
		Score:               score,
		Verdict:             verdict,
		Strengths:           []string{"Capacité à se projeter dans la situation", "Engagement dans la démarche"},
		Weaknesses:          []string{"Le détail opérationnel de la réponse n'a pas pu être analysé finement"},
		Advice:              "Reprenez votre réponse avec le coach et transformez-la en plan d'action daté.",
		HandoverCoach:       "Évaluation produite par substitution déterministe ; reprendre la réponse au grand scénario en séance.",
		HandoverParticipant: "Votre parcours est complet. Votre coach reprendra l'évaluation finale avec vous.",
		Source:              entity.SourceFallback,
	}
}

func ExpertDossier(session entity.DiagnosticSession) string {
	s1 := session.Service1
	var sb strings.Builder
	sb.WriteString("# Dossier expert\n\n")
	if s1.Phase0 != nil {
		sb.WriteString(fmt.Sprintf("## Profil\n%s — %s, %s\n\n%s\n\n", s1.Phase0.Profile.Name, roleOf(s1.Phase0.Profile), yearsOf(s1.Phase0.Profile), s1.Phase0.Profile.Summary))
	}
	if s1.Phase1 != nil {
		sb.WriteString("## Audit de cohérence\n" + s1.Phase1.ReportMarkdown + "\n\n")
	}
	if s1.Phase2 != nil {
		sb.WriteString("## Simulation comportementale\n" + s1.Phase2.ReportMarkdown + "\n\n")
	}
	if s1.Phase3 != nil {
		sb.WriteString(fmt.Sprintf("## Trajectoire choisie\nVoie retenue : %s\n\n", s1.Phase3.SelectedGrowthPath))
	}
	if s1.Phase4 != nil {
		sb.WriteString("## Feuille de route\n" + s1.Phase4.PositioningNote + "\n\n" + s1.Phase4.PlanningDoc + "\n\n")
	}
	if s1.Phase5 != nil && s1.Phase5.Evaluation != nil {
		sb.WriteString(fmt.Sprintf("## Évaluation finale\nScore : %d/100\n\n%s\n\n%s\n", s1.Phase5.Evaluation.Score, s1.Phase5.Evaluation.Verdict, s1.Phase5.Evaluation.Advice))
	}
	sb.WriteString("\n## Recommandations\nPoursuivre avec le coach sur la base de la feuille de route validée.\n")
	return sb.String()
}
