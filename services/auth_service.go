package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.StaffUser, error)
	Login(ctx context.Context, input LoginInput) (*models.StaffUser, error)
}

type RegisterInput struct {
	ClubID   int    `json:"club_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	staffRepo repositories.StaffRepository
}

func NewAuthService(staffRepo repositories.StaffRepository) AuthService {
	return &authService{staffRepo: staffRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.StaffUser, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := input.Role
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleStaff:
	case "":
		role = models.RoleStaff
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, input.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.StaffUser{
		ClubID:       input.ClubID,
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.staffRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrStaffEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, mapStoreError(err, "failed to create staff user")
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.StaffUser, error) {
	user, err := s.staffRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrStaffNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, mapStoreError(err, "failed to find staff user by email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
