package service

import (
	"database/sql"
	"errors"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/repository"

	"github.com/lib/pq"
)

// PreferenceService содержит бизнес-логику работы с предпочтениями
// пользователей.
type PreferenceService struct {
	repo *repository.PreferenceRepository
}

// NewPreferenceService создаёт новый сервис предпочтений.
func NewPreferenceService(repo *repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// Get возвращает предпочтения пользователя. Если записи ещё нет,
// возвращаются пустые предпочтения без сохранения.
func (s *PreferenceService) Get(userID int) (*model.UserPreference, error) {
	pref, err := s.repo.GetByUserID(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.UserPreference{UserID: userID, Interests: pq.StringArray{}, CategoryIDs: []int{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return pref, nil
}

// Update сохраняет предпочтения пользователя, создавая запись при
// необходимости.
func (s *PreferenceService) Update(pref *model.UserPreference) error {
	return s.repo.Upsert(pref)
}
