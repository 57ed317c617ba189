package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Published   bool           `json:"published" gorm:"not null;default:false;index"`
	CoverImage  *string        `json:"cover_image"`
	AuthorID    uint           `json:"author_id" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// OwnedBy reports whether userID authored the quiz.
func (q *Quiz) OwnedBy(userID uint) bool {
	return q.AuthorID == userID
}
