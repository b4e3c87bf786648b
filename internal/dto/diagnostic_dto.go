package dto

import (
	"time"

	"ai-coaching-be/internal/entity"

	"github.com/google/uuid"
)

// --- submission ---

type SubmitRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=120"`
	Contact     string `json:"contact,omitempty" validate:"omitempty,max=120"`
	Locale      string `json:"locale,omitempty" validate:"omitempty,oneof=fr en"`
}

type SubmitResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailRequest is the shared body of every guard-protected phase action.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// --- phase 0 ---

type AnalyzeCvResponse struct {
	Profile            entity.Profile `json:"profile"`
	InitialObservation string         `json:"initial_observation"`
	Source             string         `json:"source"`
}

type InterviewQuestionResponse struct {
	Question      *entity.Question `json:"question,omitempty"`
	QuestionCount int              `json:"question_count"`
	Status        string           `json:"status"`
	CadrageNote   string           `json:"cadrage_note,omitempty"`
}

type InterviewAnswerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	QuestionId  string `json:"question_id" validate:"required"`
	SelectedKey string `json:"selected_key" validate:"required,oneof=A B C D"`
}

// --- phase 1 ---

type Phase1Response struct {
	Analysis       entity.CoherenceAnalysis `json:"analysis"`
	ReportMarkdown string                   `json:"report_markdown,omitempty"`
	Status         string                   `json:"status"`
}

type ProbeAnswerRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Answer string `json:"answer" validate:"required,min=2,max=4000"`
}

// --- phase 2 ---

type Phase2Response struct {
	Scenarios      []entity.Scenario `json:"scenarios"`
	Answers        map[string]string `json:"answers"`
	ReportMarkdown string            `json:"report_markdown,omitempty"`
	Status         string            `json:"status"`
}

type ScenarioAnswerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ScenarioId  string `json:"scenario_id" validate:"required"`
	SelectedKey string `json:"selected_key" validate:"required,oneof=A B C D"`
}

// --- phase 3 ---

type Phase3Response struct {
	Paths              []entity.GrowthPath `json:"paths"`
	SelectedGrowthPath string              `json:"selected_growth_path,omitempty"`
	Status             string              `json:"status"`
}

type SelectPathRequest struct {
	Email    string `json:"email" validate:"required,email"`
	PathType string `json:"path_type" validate:"required,oneof=skills experience mentoring"`
}

// --- phase 4 ---

type Phase4Response struct {
	PositioningNote string                `json:"positioning_note"`
	PlanningDoc     string                `json:"planning_doc"`
	Roadmap         []entity.RoadmapMonth `json:"roadmap"`
	Status          string                `json:"status"`
}

type ToggleTaskRequest struct {
	Email  string `json:"email" validate:"required,email"`
	TaskId string `json:"task_id" validate:"required"`
	Done   bool   `json:"done"`
}

// --- phase 5 ---

type Phase5Response struct {
	AggregatedProfile   *entity.AggregatedProfile `json:"aggregated_profile,omitempty"`
	SelfMatchAnalysis   string                    `json:"self_match_analysis,omitempty"`
	FinalActions        []entity.FinalAction      `json:"final_actions,omitempty"`
	SelectedFinalAction string                    `json:"selected_final_action,omitempty"`
	SkillGap            string                    `json:"skill_gap,omitempty"`
	GrandScenario       string                    `json:"grand_scenario,omitempty"`
	Evaluation          *entity.Evaluation        `json:"evaluation,omitempty"`
	Status              string                    `json:"status"`
}

type SelfDescriptionRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Description string `json:"description" validate:"required,min=10,max=4000"`
}

type ChooseActionRequest struct {
	Email    string `json:"email" validate:"required,email"`
	ActionId string `json:"action_id" validate:"required"`
}

type GrandAnswerRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Answer string `json:"answer" validate:"required,min=10,max=8000"`
}

type DossierResponse struct {
	DossierMarkdown string `json:"dossier_markdown"`
}

// --- export / chat ---

type ExportRequest struct {
	Email     string `json:"email" validate:"required,email"`
	SendEmail bool   `json:"send_email"`
}

type ExportResponse struct {
	Markdown string `json:"markdown"`
	Emailed  bool   `json:"emailed"`
}

type ChatRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Question string `json:"question" validate:"required,min=2,max=2000"`
}

type ChatResponse struct {
	Answer  string `json:"answer"`
	Refused bool   `json:"refused"`
}

// --- events ---

type FallbackUsedEvent struct {
	SessionId uuid.UUID `json:"session_id"`
	Email     string    `json:"email"`
	Phase     string    `json:"phase"`
	Step      string    `json:"step"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

type PhaseCompletedEvent struct {
	SessionId uuid.UUID `json:"session_id"`
	Email     string    `json:"email"`
	Phase     int       `json:"phase"`
	At        time.Time `json:"at"`
}
