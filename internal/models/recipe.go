package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrentSchemaVersion is the shape version stamped on new documents
const CurrentSchemaVersion = 1

// JSONStringArray stores a string slice as a JSON document column
type JSONStringArray []string

// Value implements the driver.Valuer interface
func (a JSONStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONStringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// SavedRecipe is a generated recipe persisted by its owner
type SavedRecipe struct {
	ID            uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	OwnerID       uuid.UUID       `gorm:"type:varchar(36);not null;index:idx_saved_recipes_owner_created,priority:1" json:"ownerId"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_saved_recipes_owner_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Title         string          `gorm:"type:text;not null" json:"title"`
	Ingredients   JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	IsFavorite    bool            `gorm:"not null;default:false" json:"isFavorite"`
	Notes         string          `gorm:"type:text;not null;default:''" json:"notes"`
	SchemaVersion int             `gorm:"not null;default:1" json:"schemaVersion"`
}

// BeforeCreate assigns the id and pins the shape version
func (r *SavedRecipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.SchemaVersion == 0 {
		r.SchemaVersion = CurrentSchemaVersion
	}
	return nil
}

// Generation outcomes
const (
	GenerationSuccess = "SUCCESS"
	GenerationError   = "ERROR"
)

// RecipeGeneration records one upstream model call. Rows are never updated.
type RecipeGeneration struct {
	ID                 uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	OwnerID            *uuid.UUID      `gorm:"type:varchar(36);index" json:"ownerId,omitempty"`
	Ingredients        JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	DietaryPreferences JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietaryPreferences"`
	Provider           string          `gorm:"size:50;not null" json:"provider"`
	Model              string          `gorm:"size:100" json:"model"`
	Status             string          `gorm:"size:20;not null" json:"status"`
	ErrorKind          string          `gorm:"size:50" json:"errorKind,omitempty"`
	LatencyMs          int64           `gorm:"not null" json:"latencyMs"`
	OutputTokens       int             `json:"outputTokens"`
	CreatedAt          time.Time       `gorm:"index" json:"createdAt"`
}

func (g *RecipeGeneration) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
