package models

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Slug     string `gorm:"size:200;index" json:"slug"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Body     string `gorm:"type:text;not null" json:"body"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	Tags     []Tag  `gorm:"many2many:question_tags;" json:"tags"`

	// Rating is the cached signed sum of QuestionVote values.
	Rating int `gorm:"not null;default:0;index" json:"rating"`

	AnswerCount int64 `gorm:"-" json:"answer_count"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type CreateQuestionRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}
