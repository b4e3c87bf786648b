package mapper

import (
	"encoding/json"
	"time"

	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/model"

	"gorm.io/datatypes"
)

type DiagnosticMapper struct{}

func NewDiagnosticMapper() *DiagnosticMapper {
	return &DiagnosticMapper{}
}

func (m *DiagnosticMapper) SessionToEntity(s *model.DiagnosticSession) (*entity.DiagnosticSession, error) {
	if s == nil {
		return nil, nil
	}

	var service1 entity.Service1
	if len(s.Service1) > 0 {
		if err := json.Unmarshal(s.Service1, &service1); err != nil {
			return nil, err
		}
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.DiagnosticSession{
		Id:           s.Id,
		Email:        s.Email,
		DisplayName:  s.DisplayName,
		Contact:      s.Contact,
		OriginIP:     s.OriginIP,
		UserAgent:    s.UserAgent,
		Locale:       s.Locale,
		Active:       s.Active,
		ReviewStatus: s.ReviewStatus,
		Service1:     service1,
		Version:      s.Version,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func (m *DiagnosticMapper) SessionToModel(s *entity.DiagnosticSession) (*model.DiagnosticSession, error) {
	if s == nil {
		return nil, nil
	}

	service1, err := json.Marshal(s.Service1)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.DiagnosticSession{
		Id:           s.Id,
		Email:        s.Email,
		DisplayName:  s.DisplayName,
		Contact:      s.Contact,
		OriginIP:     s.OriginIP,
		UserAgent:    s.UserAgent,
		Locale:       s.Locale,
		Active:       s.Active,
		ReviewStatus: s.ReviewStatus,
		Service1:     datatypes.JSON(service1),
		Version:      s.Version,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}, nil
}
