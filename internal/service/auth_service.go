package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/repository"
)

// AuthService отвечает за регистрацию пользователей по Telegram ID
// и поиск пользователей по внутреннему идентификатору.
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService создает новый сервис аутентификации.
func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// AuthByTelegram проверяет наличие пользователя с данным Telegram ID и
// регистрирует нового, если не найден. Возвращает существующего или
// новосозданного пользователя.
func (s *AuthService) AuthByTelegram(telegramID int64, username, firstName, lastName string) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ошибка при поиске пользователя: %w", err)
	}

	newUser := &model.User{
		TelegramID: &telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       "user",
	}
	id, err := s.userRepo.Create(newUser)
	if err != nil {
		return nil, err
	}
	newUser.ID = id
	return newUser, nil
}

// GetByID возвращает пользователя по внутреннему идентификатору.
func (s *AuthService) GetByID(id int) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

// CountUsers возвращает общее число зарегистрированных пользователей.
func (s *AuthService) CountUsers() (int, error) {
	return s.userRepo.CountAll()
}
