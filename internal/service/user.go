package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Facumerino03/Finquik-back/internal/apperr"
	"github.com/Facumerino03/Finquik-back/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles registration and credential checks.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (in RegisterInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.FirstName) == "" {
		fields["firstName"] = "first name cannot be blank"
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["lastName"] = "last name cannot be blank"
	}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = "email must be a valid address"
	}
	if len(in.Password) < 8 || len(in.Password) > 72 {
		fields["password"] = "password must be between 8 and 72 characters"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// Register creates a user with a bcrypt-hashed password and the default
// Uncategorized category pair, all within one unit of work.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", email).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, apperr.Duplicate("email '%s' is already taken", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			// the unique index backs the pre-check against a concurrent
			// registration of the same address
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Duplicate("email '%s' is already taken", email)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return createDefaultCategories(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies the credentials and returns the user on success.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.NotFound("User", "email", email)
	}
	return user, nil
}

// GetByEmail returns the user behind the caller identity.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return resolveOwner(s.db.WithContext(ctx), email)
}
