package models

import "time"

// QuestionVote tracks one user's vote on a question. Value is +1 or -1.
type QuestionVote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_question_votes_user_target" json:"user_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_question_votes_user_target;index" json:"question_id"`
	Value      int       `gorm:"not null" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AnswerVote tracks one user's vote on an answer. Value is +1 or -1.
type AnswerVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_answer_votes_user_target" json:"user_id"`
	AnswerID  uint      `gorm:"not null;uniqueIndex:idx_answer_votes_user_target;index" json:"answer_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Question{},
		&Answer{},
		&QuestionVote{},
		&AnswerVote{},
	}
}
