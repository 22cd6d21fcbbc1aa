package model

import (
	"time"
)

type User struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	FirstName             string     `gorm:"size:100;not null" json:"first_name"`
	LastName              string     `gorm:"size:100;not null" json:"last_name"`
	Email                 string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash          string     `gorm:"size:255;not null" json:"-"`
	CompanyName           string     `gorm:"size:255" json:"company_name,omitempty"`
	IsVerified            bool       `gorm:"default:false" json:"is_verified"`
	VerificationCode      *string    `gorm:"size:100" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	LastLogin             *time.Time `json:"last_login,omitempty"`
	FailedLoginAttempts   int        `gorm:"default:0" json:"-"`
	AccountLockedUntil    *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
