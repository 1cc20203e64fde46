package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"agora/internal/models"
	"agora/internal/utils"

	"gorm.io/gorm"
)

const (
	MinPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit, in bytes
	maxUsernameLength = 150
	maxEmailLength    = 254
)

// UserService backs the identity adapter: registration, login and lookup.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return models.User{}, invalidInput("username", "username must be 1-150 characters")
	}
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength {
		return models.User{}, invalidInput("email", "email is required")
	}
	if len(password) < MinPasswordLength {
		return models.User{}, invalidInput("password", "password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return models.User{}, invalidInput("password", "password must be at most 72 bytes")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, storageError("hash password", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, &Error{Kind: KindConflict, Field: "username", Message: "username is already taken"}
		}
		return models.User{}, storageError("create user", err)
	}
	return user, nil
}

// Authenticate returns the user when the password matches. Unknown users and
// wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, storageError("load user", err)
	}
	if err != nil || !utils.CheckPassword(user.Password, password) {
		return models.User{}, &Error{Kind: KindInvalidCredentials, Message: "invalid username or password"}
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, notFound("user", id)
		}
		return models.User{}, storageError("load user", err)
	}
	return user, nil
}
