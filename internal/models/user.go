package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:100;not null" json:"email,omitempty"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"` // avatar ID or URL; uploads are handled elsewhere

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips private fields before a user is embedded in someone else's content.
func (u User) Public() User {
	u.Email = ""
	return u
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}

type UpdateProfileRequest struct {
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

// UserProfile is the public view of a user with activity counters.
type UserProfile struct {
	User          User  `json:"user"`
	QuestionCount int64 `json:"question_count"`
	AnswerCount   int64 `json:"answer_count"`
}
