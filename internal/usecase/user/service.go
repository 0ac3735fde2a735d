package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logipro/internal/authz"
	"logipro/internal/config"
	"logipro/internal/domain/identity"
	domainUser "logipro/internal/domain/user"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

// Service implements account and session use cases
type Service struct {
	userRepo         domainUser.Repository
	refreshTokenRepo domainUser.RefreshTokenRepository
	verifier         identity.Verifier
	config           *config.Config
}

func NewService(
	userRepo domainUser.Repository,
	refreshTokenRepo domainUser.RefreshTokenRepository,
	verifier identity.Verifier,
	cfg *config.Config,
) *Service {
	return &Service{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		verifier:         verifier,
		config:           cfg,
	}
}

// Login is the email/password exchange used by staff and drivers.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		logger.Warn("Login attempt for inactive user",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_inactive_user"),
		)
		return nil, appErrors.ErrUserInactive
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("event", "login_success"),
	)
	return resp, nil
}

// ExchangeIdentityToken signs a customer in with a provider ID token,
// creating the local customer account on first use.
func (s *Service) ExchangeIdentityToken(ctx context.Context, req *IdentityTokenRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	id, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		logger.Warn("Identity token rejected",
			zap.String("event", "identity_exchange_failed"),
			zap.Error(err),
		)
		return nil, err
	}

	user, err := s.userRepo.GetByExternalUID(ctx, id.SubjectID)
	switch {
	case errors.Is(err, domainUser.ErrUserNotFound):
		user, err = s.createCustomer(ctx, id)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if !user.IsActive {
		return nil, appErrors.ErrUserInactive
	}

	return s.issueSession(ctx, user)
}

func (s *Service) createCustomer(ctx context.Context, id *identity.Identity) (*domainUser.User, error) {
	email, err := utils.ValidateAndSanitizeEmail(id.Email)
	if err != nil {
		return nil, appErrors.Validation("Identity provider returned no usable email", err)
	}

	fullName := utils.SanitizeString(id.DisplayName)
	if fullName == "" {
		fullName = email
	}
	subject := id.SubjectID

	user := &domainUser.User{
		Email:       email,
		FullName:    fullName,
		Role:        authz.RoleCustomer,
		ExternalUID: &subject,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil, appErrors.Conflict("An account with this email already exists", err)
		}
		return nil, err
	}

	logger.Info("Customer account created from identity provider",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "customer_created"),
	)
	return user, nil
}

func (s *Service) issueSession(ctx context.Context, user *domainUser.User) (*AuthResponse, error) {
	tokenPair, err := s.storeTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("Failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return &AuthResponse{
		User:         ToUserResponse(user),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt,
	}, nil
}

func (s *Service) storeTokenPair(ctx context.Context, user *domainUser.User) (*utils.TokenPair, error) {
	tokenPair, err := utils.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.config.JWT.Secret,
		s.config.JWT.ExpiryHours,
		s.config.JWT.RefreshExpiryHours,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken := &domainUser.RefreshToken{
		UserID:    user.ID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Now().Add(time.Duration(s.config.JWT.RefreshExpiryHours) * time.Hour),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenPair, nil
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair is issued with the user's current role.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ValidateRefreshToken(refreshToken, s.config.JWT.Secret)
	if err != nil {
		logger.Warn("Token refresh attempt with invalid token",
			zap.String("event", "token_refresh_failed_invalid_token"),
			zap.Error(err),
		)
		return nil, appErrors.ErrInvalidToken
	}

	dbToken, err := s.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil || dbToken.UserID != claims.UserID {
		logger.Warn("Token refresh attempt with unknown or revoked token",
			zap.String("user_id", claims.UserID.String()),
			zap.String("event", "token_refresh_failed_token_not_found"),
		)
		return nil, appErrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.Revoke(ctx, dbToken.ID); err != nil {
		// Lost a race with another refresh of the same token.
		return nil, appErrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, appErrors.ErrUserInactive
	}

	tokenPair, err := s.storeTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Debug("Token refreshed",
		zap.String("user_id", user.ID.String()),
		zap.String("old_token_id", dbToken.ID.String()),
		zap.String("event", "token_refresh_success"),
	)
	return tokenPair, nil
}

func (s *Service) RevokeToken(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	dbToken, err := s.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return appErrors.ErrInvalidToken
	}

	if dbToken.UserID != userID {
		return appErrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.Revoke(ctx, dbToken.ID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("Refresh token revoked",
		zap.String("user_id", userID.String()),
		zap.String("token_id", dbToken.ID.String()),
		zap.String("event", "token_revoked"),
	)
	return nil
}

// CreateStaffUser creates admin, manager and driver accounts. Only admins
// may create other admins.
func (s *Service) CreateStaffUser(ctx context.Context, actor authz.Principal, req *CreateUserRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrWeakPassword)
	}

	role := authz.Role(req.Role)
	if role == authz.RoleAdmin && actor.Role != authz.RoleAdmin {
		return nil, appErrors.ErrInsufficientPermissions
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domainUser.User{
		Email:          utils.SanitizeEmail(req.Email),
		PasswordHashed: hashedPassword,
		FullName:       utils.SanitizeString(req.FullName),
		PhoneNumber:    req.PhoneNumber,
		Role:           role,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Staff account created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", req.Role),
		zap.String("created_by", actor.UserID.String()),
		zap.String("event", "user_created"),
	)
	return ToUserResponse(user), nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = utils.SanitizeString(*req.FullName)
	}
	if req.PhoneNumber != nil {
		phone := utils.SanitizePhone(*req.PhoneNumber)
		user.PhoneNumber = &phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ChangePassword also revokes every refresh token so other sessions must
// sign in again.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation("Invalid input", err)
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return appErrors.Validation(err.Error(), appErrors.ErrWeakPassword)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHashed, req.OldPassword) {
		logger.Warn("Password change attempt with invalid old password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		logger.Error("Failed to revoke sessions after password change", zap.String("user_id", userID.String()), zap.Error(err))
	}

	logger.Info("Password changed successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_change_success"),
	)
	return nil
}

func (s *Service) ListUsers(ctx context.Context, req *ListUsersRequest) (*utils.PagedData, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	filter := &domainUser.Filter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Role != nil {
		role := authz.Role(*req.Role)
		filter.Role = &role
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}

	page, pageSize := utils.PageOrDefault(req.Page, req.PageSize)
	return &utils.PagedData{Items: items, Meta: utils.NewPageMeta(page, pageSize, total)}, nil
}
