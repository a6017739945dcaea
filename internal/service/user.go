package service

import (
	"context"
	"errors"
	"strings"

	"askbot/internal/domain"
	"askbot/internal/repository"
)

// UserService handles registration data of users
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Language returns the user's language, or the default one for unknown users
func (s *UserService) Language(ctx context.Context, telegramID int64) (domain.Language, error) {
	code, found, err := s.userRepo.GetLanguage(ctx, telegramID)
	if err != nil {
		return "", newError(ErrorInternal, "load language", err)
	}
	if !found {
		return domain.DefaultLanguage, nil
	}

	lang, err := domain.ParseLanguage(string(code))
	if err != nil {
		return domain.DefaultLanguage, nil
	}
	return lang, nil
}

// SelectLanguage validates code and stores it for the user, creating the user if needed
func (s *UserService) SelectLanguage(ctx context.Context, telegramID int64, username, code string) (domain.Language, error) {
	lang, err := domain.ParseLanguage(strings.TrimSpace(code))
	if err != nil {
		return "", newError(ErrorInvalidInput, "unsupported language", err)
	}

	if err := s.userRepo.UpsertLanguage(ctx, telegramID, username, lang); err != nil {
		return "", newError(ErrorInternal, "save language", err)
	}
	return lang, nil
}

// SharePhone stores the phone number of a registered user
func (s *UserService) SharePhone(ctx context.Context, telegramID int64, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return newError(ErrorInvalidInput, "empty phone number", nil)
	}

	err := s.userRepo.SetPhone(ctx, telegramID, phone)
	if errors.Is(err, domain.ErrUserNotFound) {
		return newError(ErrorNotFound, "user not registered", err)
	}
	if err != nil {
		return newError(ErrorInternal, "save phone", err)
	}
	return nil
}
