package mapper

import (
	"time"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/model"
)

type AdminMapper struct{}

func NewAdminMapper() *AdminMapper {
	return &AdminMapper{}
}

func (m *AdminMapper) AdminUserToEntity(u *model.AdminUser) *entity.AdminUser {
	if u == nil {
		return nil
	}
	return &entity.AdminUser{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *AdminMapper) AdminUserToModel(u *entity.AdminUser) *model.AdminUser {
	if u == nil {
		return nil
	}
	return &model.AdminUser{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *AdminMapper) VerdictRuleToEntity(r *model.VerdictRule) *entity.VerdictRule {
	if r == nil {
		return nil
	}
	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}
	return &entity.VerdictRule{
		Id:         r.Id,
		Expression: r.Expression,
		Verdict:    r.Verdict,
		Message:    r.Message,
		Position:   r.Position,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *AdminMapper) VerdictRuleToModel(r *entity.VerdictRule) *model.VerdictRule {
	if r == nil {
		return nil
	}
	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}
	return &model.VerdictRule{
		Id:         r.Id,
		Expression: r.Expression,
		Verdict:    r.Verdict,
		Message:    r.Message,
		Position:   r.Position,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}
