package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an email/password credential
type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserProfile is created once after sign-up and never updated
type UserProfile struct {
	UserID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"userId"`
	Username      string    `gorm:"size:255;not null" json:"username"`
	CreatedAt     time.Time `json:"createdAt"`
	SchemaVersion int       `gorm:"not null;default:1" json:"schemaVersion"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.SchemaVersion == 0 {
		p.SchemaVersion = CurrentSchemaVersion
	}
	return nil
}

// AllModels lists every table managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&SavedRecipe{},
		&RecipeGeneration{},
	}
}
