// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"strings"

	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service resolves users for order snapshots
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetByID loads a user or fails with USER_NOT_FOUND
func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeUserNotFound, "user not found")
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load user")
	}
	return &user, nil
}

// GetByEmail loads a user by email, matched case-insensitively
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeUserNotFound, "user not found")
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load user")
	}
	return &user, nil
}

// GetEmail returns the email address of a user
func (s *Service) GetEmail(ctx context.Context, id uint) (string, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// Create stores a user with a bcrypt-hashed password
func (s *Service) Create(ctx context.Context, email, password, firstName, lastName string, isAdmin bool, cost int) (*User, error) {
	hash, err := HashPassword(password, cost)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to hash password")
	}
	user := User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		IsAdmin:   isAdmin,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to create user")
	}
	return &user, nil
}

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
