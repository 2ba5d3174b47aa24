package services

import (
	"context"
	"errors"
	"time"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/config"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/jwt"
	"salescrm/internal/pkg/logger"
	"salescrm/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrWeakPassword       = errors.New("password must be at least 8 characters with a letter and a digit")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	log              *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
		log:              log,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Login authenticates a user. Every rejection surfaces as
// ErrInvalidCredentials so callers cannot probe which accounts exist or are
// locked; the real cause is logged for audit. Failed and successful attempts
// are recorded under a row lock so concurrent logins never lose a counter
// update.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Str("email", input.Email).Msg("login rejected: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check account eligibility before touching the password
	if err := s.checkEligibility(user); err != nil {
		s.log.Warn().
			Str("email", user.Email).
			Str("reason", err.Error()).
			Msg("login rejected: account not eligible")
		return nil, ErrInvalidCredentials
	}

	// 3. Verify password; a miss counts toward the lockout
	if !password.Verify(input.Password, user.Password) {
		locked, err := s.recordFailure(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if locked {
			s.log.Warn().
				Str("email", user.Email).
				Int("attempts", models.MaxFailedLogins).
				Msg("account locked after repeated failed logins")
		}
		return nil, ErrInvalidCredentials
	}

	// 4. Record success: resets the counter and clears any expiring lock
	user, err = s.userRepo.UpdateLoginState(ctx, user.ID, func(u *models.User) error {
		u.RecordSuccessfulLogin(input.IP)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 5. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 6. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Msg("user logged in")

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// checkEligibility keeps the lock and status causes distinct for logging
func (s *AuthService) checkEligibility(user *models.User) error {
	if user.IsLocked() {
		return domain.ErrAccountLocked
	}
	if !user.IsActive() {
		return domain.ErrAccountInactive
	}
	return nil
}

// recordFailure counts a failed attempt under the row lock and reports
// whether this attempt engaged the lockout
func (s *AuthService) recordFailure(ctx context.Context, userID uint) (bool, error) {
	updated, err := s.userRepo.UpdateLoginState(ctx, userID, func(u *models.User) error {
		u.RecordFailedLogin()
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated.IsLocked(), nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 4. Check if token is revoked
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}

	// 5. Check if token is expired
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 6. Get user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 7. Check account eligibility
	if err := s.checkEligibility(user); err != nil {
		return nil, ErrInvalidToken
	}

	// 8. Revoke old refresh token (token rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 9. Generate new tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 10. Store new refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Msg("token refreshed")

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	s.log.Info().Msg("user logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	s.log.Info().Uint("user_id", userID).Msg("all sessions revoked")
	return nil
}

// ChangePassword verifies the current password and replaces it
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(current, user.Password) {
		return ErrInvalidCredentials
	}
	if !password.ValidatePassword(next) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(next)
	if err != nil {
		return err
	}

	now := time.Now()
	user.Password = hashed
	user.PasswordChangedAt = &now
	user.MustChangePassword = false

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Old sessions die with the old password
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	s.log.Info().Str("email", user.Email).Msg("password changed")
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		string(user.Role),
		user.AuthorityTokens(),
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)

	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
