package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Likes holds the ids of users who liked it.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Likes        Likes     `json:"-" gorm:"type:json"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Likes == nil {
		u.Likes = Likes{}
	}
	return nil
}

// UserPublic is the externally visible projection of a User.
type UserPublic struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Likes    int    `json:"likes"`
}

// UserAuth is returned on signup and login.
type UserAuth struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// ToPublic projects u to its public form.
func ToPublic(u *User) UserPublic {
	return UserPublic{
		ID:       u.ID.String(),
		Username: u.Username,
		Likes:    u.Likes.Len(),
	}
}
