package entity

import (
	"time"

	"github.com/google/uuid"
)

// DiagnosticSession is the single persisted document for one participant
// submission. Phases 0-5 live in the nested Service1 object and are only ever
// written by the phase engine as whole-document merges.
type DiagnosticSession struct {
	Id          uuid.UUID
	Email       string
	DisplayName string
	Contact     string

	// Anti-abuse metadata recorded at submission time. The session guard
	// binds every later request to OriginIP.
	OriginIP  string
	UserAgent string

	Locale       string
	Active       bool
	ReviewStatus string

	Service1 Service1

	// Version is the CAS counter; every phase write must carry the version
	// it read or fail with Conflict.
	Version   int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Service1 struct {
	Phase0 *Phase0 `json:"phase0,omitempty"`
	Phase1 *Phase1 `json:"phase1,omitempty"`
	Phase2 *Phase2 `json:"phase2,omitempty"`
	Phase3 *Phase3 `json:"phase3,omitempty"`
	Phase4 *Phase4 `json:"phase4,omitempty"`
	Phase5 *Phase5 `json:"phase5,omitempty"`
}
