package services

import (
	"context"
	"errors"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/core/domain"
	"salescrm/internal/pkg/logger"
	"salescrm/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrUserNotFoundSvc     = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidRole         = errors.New("invalid role")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrPermissionNotFound  = errors.New("permission not found")
)

// UserService handles user management business logic
type UserService struct {
	userRepo       repositories.UserRepository
	permissionRepo repositories.PermissionRepository
	log            *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	permissionRepo repositories.PermissionRepository,
	log *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		permissionRepo: permissionRepo,
		log:            log,
	}
}

// CreateUserInput represents create user input (admin only)
type CreateUserInput struct {
	FirstName  string `json:"first_name" validate:"required,max=50"`
	LastName   string `json:"last_name" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Phone      string `json:"phone" validate:"max=20"`
	JobTitle   string `json:"job_title" validate:"max=100"`
	Department string `json:"department" validate:"max=100"`
	Role       string `json:"role" validate:"required"`
}

// UpdateUserInput represents update user input (admin only)
type UpdateUserInput struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	JobTitle   *string `json:"job_title"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
	Status     *string `json:"status"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// CreateUser creates a new user account
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	role := domain.UserRole(input.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Password:   hashed,
		Phone:      input.Phone,
		JobTitle:   input.JobTitle,
		Department: input.Department,
		Role:       role,
		Status:     domain.UserActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Str("role", string(role)).Msg("user created")
	return user.ToResponse(), nil
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*ListUsersOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit

	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	userResponses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToResponse()
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      userResponses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUser updates a user by admin
func (s *UserService) UpdateUser(ctx context.Context, id uint, adminID uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}

	// Admins cannot demote themselves
	if id == adminID && input.Role != nil {
		return nil, ErrCannotChangeOwnRole
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.Role != nil {
		role := domain.UserRole(*input.Role)
		if !role.IsValid() {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}

	if input.Status != nil {
		user.Status = domain.UserStatus(*input.Status)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.JobTitle != nil {
		user.JobTitle = *input.JobTitle
	}
	if input.Department != nil {
		user.Department = *input.Department
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// DeleteUser deletes a user (soft delete)
func (s *UserService) DeleteUser(ctx context.Context, id uint, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFoundSvc
		}
		return err
	}

	return s.userRepo.Delete(ctx, id)
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFoundSvc
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ResetPassword sets a temporary password chosen by an admin. The user must
// change it on next login.
func (s *UserService) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFoundSvc
		}
		return err
	}

	if !password.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	user.MustChangePassword = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("email", user.Email).Msg("password reset by admin")
	return nil
}

// Unlock lifts an account lockout before it expires on its own
func (s *UserService) Unlock(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.UpdateLoginState(ctx, userID, func(u *models.User) error {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Msg("account unlocked by admin")
	return user.ToResponse(), nil
}

// GrantPermission grants a permission code to the user
func (s *UserService) GrantPermission(ctx context.Context, userID uint, code string) (*models.UserResponse, error) {
	permission, err := s.permissionRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}

	if err := s.userRepo.GrantPermission(ctx, userID, permission); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", userID).Str("permission", code).Msg("permission granted")
	return user.ToResponse(), nil
}

// RevokePermission removes a permission code from the user
func (s *UserService) RevokePermission(ctx context.Context, userID uint, code string) (*models.UserResponse, error) {
	permission, err := s.permissionRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}

	if err := s.userRepo.RevokePermission(ctx, userID, permission); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", userID).Str("permission", code).Msg("permission revoked")
	return user.ToResponse(), nil
}

// ListPermissions lists the permission catalogue
func (s *UserService) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	return s.permissionRepo.List(ctx)
}
