package contract

import (
	"context"
	"errors"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/repository/specification"
)

// ErrVersionConflict is returned by UpdateCAS when the session row moved
// underneath the caller. The service layer maps it to a Conflict response.
var ErrVersionConflict = errors.New("diagnostic session version conflict")

type DiagnosticSessionRepository interface {
	Create(ctx context.Context, session *entity.DiagnosticSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DiagnosticSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DiagnosticSession, error)
	// FindLatestByEmail returns the most recent session for the email, or nil.
	FindLatestByEmail(ctx context.Context, email string) (*entity.DiagnosticSession, error)
	// UpdateCAS writes the whole document guarded by the version the caller
	// read; on success the entity's Version is bumped in place.
	UpdateCAS(ctx context.Context, session *entity.DiagnosticSession) error
	// SetActive flips the admin activation flag without touching phase data.
	SetActive(ctx context.Context, id string, active bool) error
	SetReviewStatus(ctx context.Context, id string, status string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
