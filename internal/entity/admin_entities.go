package entity

import (
	"time"

	"github.com/google/uuid"
)

type AdminUser struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// VerdictRule is an administrator-authored conditional expression mapping
// score/violation counts to a pass/fail label. Rules apply in Position order,
// first match wins.
type VerdictRule struct {
	Id         uuid.UUID
	Expression string
	Verdict    string // "pass" | "fail"
	Message    string
	Position   int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
