package models

import (
	"time"

	"gorm.io/gorm"
)

type Answer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	QuestionID uint `gorm:"not null;index;uniqueIndex:idx_answers_one_correct,where:is_correct = true" json:"question_id"`

	// AuthorID is nil for guest answers, which carry GuestName instead.
	AuthorID  *uint  `gorm:"index" json:"author_id"`
	Author    *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	GuestName string `gorm:"size:50" json:"guest_name,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	// Rating is the cached signed sum of AnswerVote values.
	Rating    int  `gorm:"not null;default:0" json:"rating"`
	IsCorrect bool `gorm:"not null;default:false" json:"is_correct"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName is the name shown next to the answer.
func (a Answer) DisplayName() string {
	if a.Author != nil {
		return a.Author.Username
	}
	return a.GuestName
}

type CreateAnswerRequest struct {
	Body      string `json:"body"`
	GuestName string `json:"guest_name"`
}
