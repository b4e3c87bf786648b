package contract

import (
	"context"

	"ai-coaching-be/internal/entity"

	"github.com/google/uuid"
)

type AdminUserRepository interface {
	Create(ctx context.Context, user *entity.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
}

type VerdictRuleRepository interface {
	Create(ctx context.Context, rule *entity.VerdictRule) error
	Update(ctx context.Context, rule *entity.VerdictRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, id uuid.UUID) (*entity.VerdictRule, error)
	// FindAllOrdered returns rules in declaration (Position) order.
	FindAllOrdered(ctx context.Context) ([]*entity.VerdictRule, error)
}
