package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"logipro/internal/authz"
	domainUser "logipro/internal/domain/user"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

// EnsureAdmin creates the first admin account at startup. It does nothing
// when the email is already registered, whatever that account's role.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = utils.SanitizeEmail(email)
	if email == "" {
		return nil
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		return err
	}

	if err := utils.ValidatePassword(password); err != nil {
		return appErrors.Validation(err.Error(), appErrors.ErrWeakPassword)
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domainUser.User{
		Email:          email,
		PasswordHashed: hashedPassword,
		FullName:       "Administrator",
		Role:           authz.RoleAdmin,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("Bootstrap admin created", zap.String("user_id", admin.ID.String()), zap.String("event", "admin_bootstrapped"))
	return nil
}
