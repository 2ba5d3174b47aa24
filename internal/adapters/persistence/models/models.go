package models

import (
	"time"

	"salescrm/internal/core/domain"

	"gorm.io/gorm"
)

// Account lockout policy
const (
	MaxFailedLogins = 5
	LockoutDuration = 30 * time.Minute
)

// User represents users table
type User struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	FirstName           string            `gorm:"size:50;not null" json:"first_name"`
	LastName            string            `gorm:"size:50;not null" json:"last_name"`
	Email               string            `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password            string            `gorm:"size:255;not null" json:"-"`
	Phone               string            `gorm:"size:20" json:"phone"`
	Mobile              string            `gorm:"size:20" json:"mobile"`
	JobTitle            string            `gorm:"size:100" json:"job_title"`
	Department          string            `gorm:"size:100" json:"department"`
	Role                domain.UserRole   `gorm:"size:20;not null" json:"role"`
	Status              domain.UserStatus `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	ProfileImage        string            `gorm:"size:500" json:"profile_image"`
	LastLoginAt         *time.Time        `json:"last_login_at"`
	LastLoginIP         string            `gorm:"size:45" json:"last_login_ip"`
	FailedLoginAttempts int               `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time        `json:"-"`
	PasswordChangedAt   *time.Time        `json:"-"`
	MustChangePassword  bool              `gorm:"default:false" json:"must_change_password"`
	Permissions         []Permission      `gorm:"many2many:user_permissions" json:"permissions,omitempty"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName returns first and last name joined
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the account lockout is still in effect.
// The lock self-expires: once LockedUntil passes, this returns false
// without any explicit unlock.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// IsActive reports whether the account status allows use of the system.
// Lock state is checked separately so the two causes stay distinguishable.
func (u *User) IsActive() bool {
	return u.Status == domain.UserActive
}

// RecordFailedLogin counts one failed attempt and engages the lockout
// once the attempt limit is reached.
func (u *User) RecordFailedLogin() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLogins {
		until := time.Now().Add(LockoutDuration)
		u.LockedUntil = &until
	}
}

// RecordSuccessfulLogin resets the failure counter, clears any lock and
// stores the login timestamp and source IP. Success always wins over a
// concurrently expiring lock.
func (u *User) RecordSuccessfulLogin(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
}

// AuthorityTokens resolves the user's capability set: the role token plus
// every directly granted permission code.
func (u *User) AuthorityTokens() []string {
	tokens := make([]string, 0, len(u.Permissions)+1)
	tokens = append(tokens, "ROLE_"+string(u.Role))
	for _, p := range u.Permissions {
		tokens = append(tokens, p.Code)
	}
	return tokens
}

// UserResponse DTO
type UserResponse struct {
	ID                 uint              `json:"id"`
	FirstName          string            `json:"first_name"`
	LastName           string            `json:"last_name"`
	FullName           string            `json:"full_name"`
	Email              string            `json:"email"`
	Phone              string            `json:"phone,omitempty"`
	JobTitle           string            `json:"job_title,omitempty"`
	Department         string            `json:"department,omitempty"`
	Role               domain.UserRole   `json:"role"`
	Status             domain.UserStatus `json:"status"`
	LastLoginAt        *time.Time        `json:"last_login_at,omitempty"`
	MustChangePassword bool              `json:"must_change_password"`
	Authorities        []string          `json:"authorities"`
	CreatedAt          time.Time         `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		FullName:           u.FullName(),
		Email:              u.Email,
		Phone:              u.Phone,
		JobTitle:           u.JobTitle,
		Department:         u.Department,
		Role:               u.Role,
		Status:             u.Status,
		LastLoginAt:        u.LastLoginAt,
		MustChangePassword: u.MustChangePassword,
		Authorities:        u.AuthorityTokens(),
		CreatedAt:          u.CreatedAt,
	}
}

// Permission represents permissions table (immutable reference data)
type Permission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Code        string         `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Description string         `gorm:"size:500" json:"description"`
	Category    string         `gorm:"size:50" json:"category"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs auto migration for all CRM tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Permission{},
		&RefreshToken{},
		&Product{},
		&Customer{},
		&Contact{},
		&Lead{},
		&Opportunity{},
		&OpportunityProduct{},
		&Activity{},
	)
}
