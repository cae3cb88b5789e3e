package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a FindMyAI account. Admins manage the catalog and run jobs.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	PasswordHash string `gorm:"type:text" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

// Review is a user's rating of a tool. One review per user per tool.
type Review struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	ToolID string `gorm:"not null;uniqueIndex:idx_reviews_tool_user" json:"tool_id"`
	UserID string `gorm:"not null;uniqueIndex:idx_reviews_tool_user;index" json:"user_id"`
	Rating int    `gorm:"not null" json:"rating"`
	Title  string `json:"title,omitempty"`
	Body   string `gorm:"type:text" json:"body,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
