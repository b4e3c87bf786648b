package implementation

import (
	"context"
	"errors"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/mapper"
	"ai-coaching-be/internal/model"
	"ai-coaching-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminUserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AdminMapper
}

func NewAdminUserRepository(db *gorm.DB) contract.AdminUserRepository {
	return &AdminUserRepositoryImpl{
		db:     db,
		mapper: mapper.NewAdminMapper(),
	}
}

func (r *AdminUserRepositoryImpl) Create(ctx context.Context, user *entity.AdminUser) error {
	m := r.mapper.AdminUserToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.AdminUserToEntity(m)
	return nil
}

func (r *AdminUserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	var m model.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AdminUserToEntity(&m), nil
}

type VerdictRuleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AdminMapper
}

func NewVerdictRuleRepository(db *gorm.DB) contract.VerdictRuleRepository {
	return &VerdictRuleRepositoryImpl{
		db:     db,
		mapper: mapper.NewAdminMapper(),
	}
}

func (r *VerdictRuleRepositoryImpl) Create(ctx context.Context, rule *entity.VerdictRule) error {
	m := r.mapper.VerdictRuleToModel(rule)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*rule = *r.mapper.VerdictRuleToEntity(m)
	return nil
}

func (r *VerdictRuleRepositoryImpl) Update(ctx context.Context, rule *entity.VerdictRule) error {
	m := r.mapper.VerdictRuleToModel(rule)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*rule = *r.mapper.VerdictRuleToEntity(m)
	return nil
}

func (r *VerdictRuleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.VerdictRule{}, id).Error
}

func (r *VerdictRuleRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.VerdictRule, error) {
	var m model.VerdictRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.VerdictRuleToEntity(&m), nil
}

func (r *VerdictRuleRepositoryImpl) FindAllOrdered(ctx context.Context) ([]*entity.VerdictRule, error) {
	var models []*model.VerdictRule
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	rules := make([]*entity.VerdictRule, len(models))
	for i, m := range models {
		rules[i] = r.mapper.VerdictRuleToEntity(m)
	}
	return rules, nil
}
