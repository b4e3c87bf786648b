package entity

// ContentSource tags where a generated artifact came from. Only the contract
// normalizer constructs either value.
const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

// --- Phase 0: CV + adaptive interview ---

type Phase0 struct {
	CvText             string     `json:"cvText"`
	Profile            Profile    `json:"profile"`
	InitialObservation string     `json:"initialObservation"`
	Interview          Interview  `json:"interview"`
	CadrageNote        string     `json:"cadrageNote,omitempty"`
	CadrageSource      string     `json:"cadrageSource,omitempty"`
	ProfileSource      string     `json:"profileSource"`
}

type Profile struct {
	Name            string   `json:"name"`
	CurrentRole     string   `json:"currentRole"`
	YearsExperience int      `json:"yearsExperience"`
	Skills          []string `json:"skills"`
	Summary         string   `json:"summary"`
}

type Interview struct {
	History []InterviewEntry `json:"history"`
	// CurrentQuestion is the pending question persisted on the record, never
	// stashed server-side only.
	CurrentQuestion *Question `json:"currentQuestion,omitempty"`
	QuestionCount   int       `json:"questionCount"`
	Status          string    `json:"status"` // ready | in_progress | completed
}

type InterviewEntry struct {
	QuestionId  string `json:"questionId"`
	Question    string `json:"question"`
	SelectedKey string `json:"selectedKey"` // A | B | C | D
	AnswerText  string `json:"answerText"`  // free-text rendering of the chosen option
}

type Question struct {
	Id      string           `json:"id"`
	Text    string           `json:"text"`
	Options []QuestionOption `json:"options"` // exactly 4
	Source  string           `json:"source"`
}

type QuestionOption struct {
	Key   string `json:"key"` // A | B | C | D
	Label string `json:"label"`
}

// --- Phase 1: coherence audit ---

type Phase1 struct {
	Analysis       CoherenceAnalysis `json:"analysis"`
	Probe          *ProbeExchange    `json:"probe,omitempty"`
	ReportMarkdown string            `json:"reportMarkdown,omitempty"`
	ReportSource   string            `json:"reportSource,omitempty"`
	Status         string            `json:"status"` // awaiting_probe | completed
}

type CoherenceAnalysis struct {
	ClaimedRole       string   `json:"claimedRole"`
	RealRole          string   `json:"realRole"`
	Rationale         string   `json:"rationale"`
	ConsistencyPoints []string `json:"consistencyPoints"`
	IncoherencePoints []string `json:"incoherencePoints"`
	IncoherenceLevel  string   `json:"incoherenceLevel"` // low | high
	ProbeQuestion     string   `json:"probeQuestion,omitempty"`
	Verdict           string   `json:"verdict"`
	Source            string   `json:"source"`
}

type ProbeExchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// --- Phase 2: behavioral simulation ---

// Fixed scenario archetypes; the normalizer enforces one of each.
const (
	ArchetypeClientCrisis       = "client_crisis"
	ArchetypeTeamConflict       = "team_conflict"
	ArchetypeImpossibleDeadline = "impossible_deadline"
)

type Phase2 struct {
	Scenarios      []Scenario        `json:"scenarios"` // exactly 3
	Answers        map[string]string `json:"answers"`   // scenario id -> selected option key
	ReportMarkdown string            `json:"reportMarkdown,omitempty"`
	ReportSource   string            `json:"reportSource,omitempty"`
	ScenarioSource string            `json:"scenarioSource"`
	Status         string            `json:"status"` // in_progress | completed
}

type Scenario struct {
	Id          string           `json:"id"`
	Archetype   string           `json:"archetype"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Options     []QuestionOption `json:"options"` // exactly 4
}

// --- Phase 3: growth path selection ---

const (
	PathTypeSkills     = "skills"
	PathTypeExperience = "experience"
	PathTypeMentoring  = "mentoring"
)

type Phase3 struct {
	Paths              []GrowthPath `json:"paths"` // exactly 3, one per type
	SelectedGrowthPath string       `json:"selectedGrowthPath,omitempty"`
	PathsSource        string       `json:"pathsSource"`
	Status             string       `json:"status"` // in_progress | completed
}

type GrowthPath struct {
	Type               string `json:"type"` // skills | experience | mentoring
	Title              string `json:"title"`
	Description        string `json:"description"`
	SuccessProbability int    `json:"successProbability"` // percent
	Rationale          string `json:"rationale"`
}

// --- Phase 4: 3-month plan ---

type Phase4 struct {
	PositioningNote string         `json:"positioningNote"`
	PlanningDoc     string         `json:"planningDoc"`
	Roadmap         []RoadmapMonth `json:"roadmap"` // exactly 3
	PlanSource      string         `json:"planSource"`
	Status          string         `json:"status"` // in_progress | completed
}

type RoadmapMonth struct {
	Month int           `json:"month"` // 1..3
	Theme string        `json:"theme"`
	Tasks []RoadmapTask `json:"tasks"`
}

type RoadmapTask struct {
	Id   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// --- Phase 5: final validation ---

type Phase5 struct {
	AggregatedProfile   *AggregatedProfile `json:"aggregatedProfile,omitempty"`
	SelfDescription     string             `json:"selfDescription,omitempty"`
	SelfMatchAnalysis   string             `json:"selfMatchAnalysis,omitempty"`
	FinalActions        []FinalAction      `json:"finalActions,omitempty"` // exactly 3
	SelectedFinalAction string             `json:"selectedFinalAction,omitempty"`
	SkillGap            string             `json:"skillGap,omitempty"`
	GrandScenario       string             `json:"grandScenario,omitempty"`
	GrandAnswer         string             `json:"grandAnswer,omitempty"`
	Evaluation          *Evaluation        `json:"evaluation,omitempty"`
	ExpertDossierFR     string             `json:"expertDossierFR,omitempty"`
	ActionsSource       string             `json:"actionsSource,omitempty"`
	Status              string             `json:"status"`
}

type AggregatedProfile struct {
	DeclaredRole  string         `json:"declaredRole"`
	RealRole      string         `json:"realRole"`
	MaturityLevel string         `json:"maturityLevel"`
	Strengths     []string       `json:"strengths"`
	Weaknesses    []string       `json:"weaknesses"`
	Exclusions    []string       `json:"exclusions"`
	SelectedPath  string         `json:"selectedPath"`
	Roadmap       []RoadmapMonth `json:"roadmap"`
}

type FinalAction struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

type Evaluation struct {
	Score               int      `json:"score"` // 0..100
	Verdict             string   `json:"verdict"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	Advice              string   `json:"advice"`
	HandoverCoach       string   `json:"handoverCoach"`
	HandoverParticipant string   `json:"handoverParticipant"`
	Source              string   `json:"source"`
}
