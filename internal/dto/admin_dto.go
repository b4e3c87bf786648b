package dto

import (
	"time"

	"github.com/google/uuid"
)

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionSummaryResponse struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Active       bool      `json:"active"`
	ReviewStatus string    `json:"review_status"`
	// PhaseProgress is the highest phase with any recorded data, -1 when none.
	PhaseProgress int       `json:"phase_progress"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReviewStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed flagged"`
}

type VerdictRuleRequest struct {
	Expression string `json:"expression" validate:"required,max=500"`
	Verdict    string `json:"verdict" validate:"required,oneof=pass fail"`
	Message    string `json:"message" validate:"max=500"`
	Position   int    `json:"position" validate:"gte=0"`
}

type VerdictRuleResponse struct {
	Id         uuid.UUID `json:"id"`
	Expression string    `json:"expression"`
	Verdict    string    `json:"verdict"`
	Message    string    `json:"message"`
	Position   int       `json:"position"`
}

type VerdictCheckRequest struct {
	Score                int `json:"score" validate:"gte=0,lte=100"`
	ConstraintViolations int `json:"constraint_violations" validate:"gte=0"`
	SubmissionsCount     int `json:"submissions_count" validate:"gte=0"`
}

type VerdictCheckResponse struct {
	Matched bool   `json:"matched"`
	Verdict string `json:"verdict,omitempty"`
	Message string `json:"message,omitempty"`
}
