package implementation

import (
	"context"
	"errors"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/mapper"
	"ai-coaching-be/internal/model"
	"ai-coaching-be/internal/repository/contract"
	"ai-coaching-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DiagnosticSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DiagnosticMapper
}

func NewDiagnosticSessionRepository(db *gorm.DB) contract.DiagnosticSessionRepository {
	return &DiagnosticSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDiagnosticMapper(),
	}
}

func (r *DiagnosticSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DiagnosticSessionRepositoryImpl) Create(ctx context.Context, session *entity.DiagnosticSession) error {
	m, err := r.mapper.SessionToModel(session)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	mapped, err := r.mapper.SessionToEntity(m)
	if err != nil {
		return err
	}
	*session = *mapped
	return nil
}

func (r *DiagnosticSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DiagnosticSession, error) {
	var m model.DiagnosticSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m)
}

func (r *DiagnosticSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DiagnosticSession, error) {
	var models []*model.DiagnosticSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DiagnosticSession, len(models))
	for i, m := range models {
		mapped, err := r.mapper.SessionToEntity(m)
		if err != nil {
			return nil, err
		}
		entities[i] = mapped
	}
	return entities, nil
}

func (r *DiagnosticSessionRepositoryImpl) FindLatestByEmail(ctx context.Context, email string) (*entity.DiagnosticSession, error) {
	return r.FindOne(ctx,
		specification.ByEmail{Email: email},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *DiagnosticSessionRepositoryImpl) UpdateCAS(ctx context.Context, session *entity.DiagnosticSession) error {
	m, err := r.mapper.SessionToModel(session)
	if err != nil {
		return err
	}

	readVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(&model.DiagnosticSession{}).
		Where("id = ? AND version = ?", m.Id, readVersion).
		Updates(map[string]interface{}{
			"display_name":  m.DisplayName,
			"contact":       m.Contact,
			"locale":        m.Locale,
			"review_status": m.ReviewStatus,
			"service1":      m.Service1,
			"version":       readVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrVersionConflict
	}

	session.Version = readVersion + 1
	return nil
}

func (r *DiagnosticSessionRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.DiagnosticSession{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DiagnosticSessionRepositoryImpl) SetReviewStatus(ctx context.Context, id string, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.DiagnosticSession{}).
		Where("id = ?", id).
		Update("review_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DiagnosticSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DiagnosticSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
